package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// DocumentFetcher retrieves the flattened text of a document.
type DocumentFetcher interface {
	DocumentText(ctx context.Context, documentID string) (string, error)
}

// KnowledgeBase caches the grounding text used in every system prompt.
// A failed refresh keeps the previous snapshot so chat responses are never
// blocked on the document store. The snapshot is only refreshed explicitly
// (startup and the admin refresh endpoint); it can go stale in between.
type KnowledgeBase struct {
	fetcher    DocumentFetcher
	documentID string
	logger     *logging.Logger

	mu   sync.RWMutex
	text string
}

// NewKnowledgeBase creates a knowledge base bound to one document.
// A nil fetcher or empty document ID yields a permanently empty base.
func NewKnowledgeBase(fetcher DocumentFetcher, documentID string, logger *logging.Logger) *KnowledgeBase {
	if logger == nil {
		logger = logging.Default()
	}
	return &KnowledgeBase{
		fetcher:    fetcher,
		documentID: documentID,
		logger:     logger,
	}
}

// Refresh fetches the document and replaces the cached snapshot. On failure
// the previous snapshot stays in place and the error is returned for the
// caller to log; refreshing unchanged content is a no-op for readers.
func (kb *KnowledgeBase) Refresh(ctx context.Context) error {
	if kb.fetcher == nil || kb.documentID == "" {
		kb.logger.Warn("knowledge base disabled, document store not configured")
		return nil
	}

	text, err := kb.fetcher.DocumentText(ctx, kb.documentID)
	if err != nil {
		kb.logger.Warn("knowledge base refresh failed, keeping previous snapshot", "error", err)
		return fmt.Errorf("conversation: knowledge refresh: %w", err)
	}

	kb.mu.Lock()
	kb.text = text
	kb.mu.Unlock()

	kb.logger.Info("knowledge base loaded", "chars", len(text))
	return nil
}

// Text returns the cached snapshot, empty if never loaded.
func (kb *KnowledgeBase) Text() string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.text
}
