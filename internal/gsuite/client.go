// Package gsuite wraps the Google Docs, Sheets, and Calendar APIs behind the
// narrow operations the bot needs, authenticated as a service identity.
package gsuite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// Config carries the service-identity credentials and resource identifiers.
// CredentialsJSON takes precedence over CredentialsFile.
type Config struct {
	CredentialsJSON string
	CredentialsFile string
	SheetID         string
	CalendarID      string
	Timezone        string
}

// Client bundles the three Google API services.
type Client struct {
	docs     *docs.Service
	sheets   *sheets.Service
	calendar *calendar.Service

	sheetID      string
	calendarID   string
	timezone     string
	accountEmail string
	logger       *logging.Logger
}

// New authenticates and builds all three API services. It fails when no
// credentials are configured; callers treat that as a disabled integration.
func New(ctx context.Context, cfg Config, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Default()
	}

	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	scopes := option.WithScopes(
		docs.DocumentsReadonlyScope,
		sheets.SpreadsheetsScope,
		calendar.CalendarScope,
	)

	docsSvc, err := docs.NewService(ctx, option.WithCredentialsJSON(creds), scopes)
	if err != nil {
		return nil, fmt.Errorf("gsuite: create docs service: %w", err)
	}
	sheetsSvc, err := sheets.NewService(ctx, option.WithCredentialsJSON(creds), scopes)
	if err != nil {
		return nil, fmt.Errorf("gsuite: create sheets service: %w", err)
	}
	calendarSvc, err := calendar.NewService(ctx, option.WithCredentialsJSON(creds), scopes)
	if err != nil {
		return nil, fmt.Errorf("gsuite: create calendar service: %w", err)
	}

	client := &Client{
		docs:         docsSvc,
		sheets:       sheetsSvc,
		calendar:     calendarSvc,
		sheetID:      cfg.SheetID,
		calendarID:   cfg.CalendarID,
		timezone:     cfg.Timezone,
		accountEmail: serviceAccountEmail(creds),
		logger:       logger,
	}
	logger.Info("google workspace integration configured", "service_account", client.accountEmail)
	return client, nil
}

// ServiceAccountEmail returns the authenticated identity, for diagnostics.
func (c *Client) ServiceAccountEmail() string {
	return c.accountEmail
}

func loadCredentials(cfg Config) ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("gsuite: read credentials file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("gsuite: no service account credentials configured")
}

func serviceAccountEmail(creds []byte) string {
	var parsed struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(creds, &parsed); err != nil {
		return ""
	}
	return parsed.ClientEmail
}
