package gsuite

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/docs/v1"
)

// DocumentText fetches a document and flattens every paragraph text run into
// one string, in document order.
func (c *Client) DocumentText(ctx context.Context, documentID string) (string, error) {
	if documentID == "" {
		return "", fmt.Errorf("gsuite: document id required")
	}

	doc, err := c.docs.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gsuite: fetch document %s: %w", documentID, err)
	}
	if doc.Body == nil {
		return "", nil
	}
	return FlattenBody(doc.Body), nil
}

// FlattenBody concatenates the text runs of every paragraph element.
// Non-paragraph structural elements (tables, section breaks) are skipped.
func FlattenBody(body *docs.Body) string {
	var b strings.Builder
	for _, element := range body.Content {
		if element.Paragraph == nil {
			continue
		}
		for _, pe := range element.Paragraph.Elements {
			if pe.TextRun != nil {
				b.WriteString(pe.TextRun.Content)
			}
		}
	}
	return b.String()
}
