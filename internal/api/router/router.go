// Package router assembles the HTTP surface: the Twilio webhook, the REST
// API, the dashboard websocket, and operational endpoints.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/terravista/whatsapp-concierge/internal/dashboard"
	"github.com/terravista/whatsapp-concierge/internal/http/handlers"
	httpmiddleware "github.com/terravista/whatsapp-concierge/internal/http/middleware"
	"github.com/terravista/whatsapp-concierge/internal/messaging"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	Webhook      *messaging.WebhookHandler
	SendMessage  *handlers.SendMessageHandler
	Registration *handlers.RegistrationHandler
	Calendar     *handlers.CalendarHandler
	Knowledge    *handlers.KnowledgeHandler
	Health       *handlers.HealthHandler

	Dashboard       *dashboard.Handler
	DashboardAssets http.Handler
	Relay           *dashboard.Relay

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Handle)
	}
	if cfg.Webhook != nil {
		r.Post("/webhook/whatsapp", cfg.Webhook.HandleWhatsApp)
	}
	if cfg.Relay != nil {
		r.Get("/ws", cfg.Relay.ServeWS)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.DashboardAssets != nil {
		r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard/", http.StatusMovedPermanently)
		})
		r.Handle("/dashboard/*", http.StripPrefix("/dashboard/", cfg.DashboardAssets))
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.SendMessage != nil {
			api.Post("/send-message", cfg.SendMessage.Handle)
		}
		if cfg.Registration != nil {
			api.Post("/registro", cfg.Registration.Handle)
		}
		if cfg.Calendar != nil {
			api.Post("/agendar", cfg.Calendar.Handle)
		}
		if cfg.Knowledge != nil {
			api.Post("/knowledge/refresh", cfg.Knowledge.Refresh)
		}
		if cfg.Dashboard != nil {
			api.Get("/conversations", cfg.Dashboard.ListConversations)
		}
	})

	return r
}
