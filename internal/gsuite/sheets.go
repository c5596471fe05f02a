package gsuite

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/terravista/whatsapp-concierge/internal/appointments"
)

const customerLogRange = "A:F"

// AppendCustomerRow appends one customer record to the spreadsheet log:
// [timestamp, name, phone, email, interest, notes].
func (c *Client) AppendCustomerRow(ctx context.Context, rec appointments.CustomerRecord) error {
	if c.sheetID == "" {
		return fmt.Errorf("gsuite: sheet id not configured")
	}

	values := &sheets.ValueRange{
		Values: [][]interface{}{{
			time.Now().UTC().Format(time.RFC3339),
			rec.Name,
			rec.Phone,
			rec.Email,
			rec.Interest,
			rec.Notes,
		}},
	}

	_, err := c.sheets.Spreadsheets.Values.
		Append(c.sheetID, customerLogRange, values).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("gsuite: append customer row: %w", err)
	}

	c.logger.Info("customer record saved to sheet", "name", rec.Name)
	return nil
}
