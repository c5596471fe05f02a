// Command configcheck prints which integrations the current environment
// enables, without starting the server. Useful when wiring up a new deploy.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/terravista/whatsapp-concierge/internal/app/bootstrap"
	appconfig "github.com/terravista/whatsapp-concierge/internal/config"
	"github.com/terravista/whatsapp-concierge/internal/gsuite"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New("error", cfg.Env)

	fmt.Println("whatsapp-concierge configuration check")
	fmt.Println("--------------------------------------")

	fmt.Println("\n[1] Required settings")
	missing := cfg.MissingRequired()
	if len(missing) == 0 {
		fmt.Println("    ✅ Twilio and Anthropic credentials present")
	} else {
		for _, name := range missing {
			fmt.Printf("    ❌ %s not set\n", name)
		}
	}

	fmt.Println("\n[2] LLM fallback")
	if cfg.GeminiAPIKey != "" {
		fmt.Println("    ✅ GEMINI_API_KEY set, fallback enabled")
	} else {
		fmt.Println("    ⚠️  GEMINI_API_KEY not set, no fallback provider")
	}

	fmt.Println("\n[3] Google Workspace")
	if !cfg.GoogleEnabled() {
		fmt.Println("    ⚠️  No service account credentials; knowledge base, sheet log and calendar disabled")
	} else {
		for _, name := range cfg.MissingGoogle() {
			fmt.Printf("    ⚠️  %s not set\n", name)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		google, err := gsuite.New(ctx, gsuite.Config{
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			SheetID:         cfg.GoogleSheetID,
			CalendarID:      cfg.GoogleCalendarID,
			Timezone:        cfg.Timezone,
		}, logger)
		if err != nil {
			fmt.Printf("    ❌ Failed to authenticate: %v\n", err)
		} else {
			fmt.Printf("    ✅ Authenticated as %s\n", google.ServiceAccountEmail())
			if cfg.GoogleDocsID != "" {
				if text, err := google.DocumentText(ctx, cfg.GoogleDocsID); err != nil {
					fmt.Printf("    ❌ Knowledge document unreadable: %v\n", err)
					fmt.Println("       Share the document with the service account email above.")
				} else {
					fmt.Printf("    ✅ Knowledge document readable (%d chars)\n", len(text))
				}
			}
		}
	}

	fmt.Println("\n[4] Redis")
	if cfg.RedisAddr == "" {
		fmt.Println("    ⚠️  REDIS_ADDR not set, using in-memory stores")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if client := bootstrap.BuildRedisClient(ctx, cfg, logger, true); client != nil {
			fmt.Printf("    ✅ Redis reachable at %s\n", cfg.RedisAddr)
			client.Close()
		} else {
			fmt.Printf("    ❌ Redis unreachable at %s\n", cfg.RedisAddr)
		}
	}

	fmt.Printf("\nTimezone: %s, model: %s, port: %s\n", cfg.Timezone, cfg.AnthropicModel, cfg.Port)
}
