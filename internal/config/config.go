package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Twilio WhatsApp gateway (mandatory). PublicWebhookURL is the externally
	// visible webhook address; when set, inbound signatures are validated
	// against it.
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	PublicWebhookURL   string

	// LLM (mandatory key, optional fallback)
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string

	// Google Workspace integration (optional; features degrade when unset)
	GoogleDocsID             string
	GoogleSheetID            string
	GoogleCalendarID         string
	GoogleCredentialsJSON    string
	GoogleServiceAccountFile string

	// Appointment handling
	Timezone string

	// Optional Redis persistence for history and dashboard transcripts.
	// When unset the in-memory stores are used.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "3000"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		PublicWebhookURL:   getEnv("PUBLIC_WEBHOOK_URL", ""),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),

		GoogleDocsID:             getEnv("GOOGLE_DOCS_ID", ""),
		GoogleSheetID:            getEnv("GOOGLE_SHEET_ID", ""),
		GoogleCalendarID:         getEnv("GOOGLE_CALENDAR_ID", ""),
		GoogleCredentialsJSON:    getEnv("GOOGLE_CREDENTIALS", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		Timezone: getEnv("TIMEZONE", "America/Mexico_City"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
	}
}

// MissingRequired returns the names of mandatory environment variables that
// are unset. A non-empty result means the process cannot serve traffic.
func (c *Config) MissingRequired() []string {
	var missing []string
	if c.TwilioAccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if c.TwilioAuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if c.TwilioWhatsAppFrom == "" {
		missing = append(missing, "TWILIO_WHATSAPP_NUMBER")
	}
	if c.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	return missing
}

// MissingGoogle returns the names of unset Google integration variables.
// These only disable the knowledge base, sheet log, and calendar features.
func (c *Config) MissingGoogle() []string {
	var missing []string
	if c.GoogleCredentialsJSON == "" && c.GoogleServiceAccountFile == "" {
		missing = append(missing, "GOOGLE_CREDENTIALS or GOOGLE_SERVICE_ACCOUNT_FILE")
	}
	if c.GoogleDocsID == "" {
		missing = append(missing, "GOOGLE_DOCS_ID")
	}
	if c.GoogleSheetID == "" {
		missing = append(missing, "GOOGLE_SHEET_ID")
	}
	if c.GoogleCalendarID == "" {
		missing = append(missing, "GOOGLE_CALENDAR_ID")
	}
	return missing
}

// GoogleEnabled reports whether service-account credentials are configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleCredentialsJSON != "" || c.GoogleServiceAccountFile != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
