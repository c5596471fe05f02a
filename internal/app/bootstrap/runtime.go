// Package bootstrap wires configuration into a running application: stores,
// integrations, the conversation pipeline, and the HTTP handler set.
package bootstrap

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/terravista/whatsapp-concierge/internal/api/router"
	"github.com/terravista/whatsapp-concierge/internal/appointments"
	appconfig "github.com/terravista/whatsapp-concierge/internal/config"
	"github.com/terravista/whatsapp-concierge/internal/conversation"
	"github.com/terravista/whatsapp-concierge/internal/dashboard"
	"github.com/terravista/whatsapp-concierge/internal/gsuite"
	"github.com/terravista/whatsapp-concierge/internal/http/handlers"
	"github.com/terravista/whatsapp-concierge/internal/messaging"
	"github.com/terravista/whatsapp-concierge/internal/observability/metrics"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// Runtime holds every wired component for the process lifetime.
type Runtime struct {
	Config *appconfig.Config
	Logger *logging.Logger

	Redis      *redis.Client
	Google     *gsuite.Client
	Knowledge  *conversation.KnowledgeBase
	Dispatcher *conversation.Dispatcher
	Service    *conversation.Service
	Relay      *dashboard.Relay

	llmFallback bool
	registry    *prometheus.Registry

	webhook      *messaging.WebhookHandler
	sendMessage  *handlers.SendMessageHandler
	registration *handlers.RegistrationHandler
	calendar     *handlers.CalendarHandler
	knowledgeAPI *handlers.KnowledgeHandler
	dashboardAPI *dashboard.Handler
}

// New wires the application from config. Optional integrations (Google,
// Redis, Gemini fallback) degrade to nil rather than failing startup; only a
// broken mandatory piece returns an error.
func New(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	rt.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	messagingMetrics := metrics.NewMessagingMetrics(rt.registry)
	conversationMetrics := metrics.NewConversationMetrics(rt.registry)

	rt.Redis = BuildRedisClient(ctx, cfg, logger, true)

	var historyStore conversation.HistoryStore
	var transcriptStore dashboard.Store
	if rt.Redis != nil {
		historyStore = conversation.NewRedisHistoryStore(rt.Redis, nil)
		transcriptStore = dashboard.NewRedisStore(rt.Redis)
		logger.Info("using redis-backed conversation stores", "addr", cfg.RedisAddr)
	} else {
		historyStore = conversation.NewMemoryHistoryStore()
		transcriptStore = dashboard.NewMemoryStore()
		logger.Info("using in-memory conversation stores")
	}
	rt.Relay = dashboard.NewRelay(transcriptStore, logger)

	var sheets appointments.SheetWriter
	var calendarWriter appointments.CalendarWriter
	var fetcher conversation.DocumentFetcher
	if cfg.GoogleEnabled() {
		google, err := gsuite.New(ctx, gsuite.Config{
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			SheetID:         cfg.GoogleSheetID,
			CalendarID:      cfg.GoogleCalendarID,
			Timezone:        cfg.Timezone,
		}, logger)
		if err != nil {
			logger.Warn("google workspace integration disabled", "error", err)
		} else {
			rt.Google = google
			fetcher = google
			if cfg.GoogleSheetID != "" {
				sheets = google
			}
			calendarWriter = google
		}
	}

	rt.Knowledge = conversation.NewKnowledgeBase(fetcher, cfg.GoogleDocsID, logger)

	scheduler, err := appointments.NewScheduler(sheets, calendarWriter, cfg.Timezone, logger)
	if err != nil {
		return nil, err
	}

	llm, usesFallback, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.llmFallback = usesFallback

	responder := conversation.NewResponder(llm, rt.Knowledge, scheduler, cfg.AnthropicModel, logger)
	rt.Dispatcher = conversation.NewDispatcher(logger)

	sender := messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, logger)
	paced := messaging.NewPacedSender(sender, logger)

	rt.Service = conversation.NewService(historyStore, responder, paced, rt.Relay, rt.Dispatcher, conversationMetrics, logger)

	rt.webhook = messaging.NewWebhookHandler(messaging.WebhookConfig{
		AuthToken:  cfg.TwilioAuthToken,
		WebhookURL: cfg.PublicWebhookURL,
	}, rt.Service, messagingMetrics, logger)
	rt.sendMessage = handlers.NewSendMessageHandler(sender, rt.Relay, messagingMetrics, logger)
	rt.registration = handlers.NewRegistrationHandler(sheets, logger)
	rt.calendar = handlers.NewCalendarHandler(calendarWriter, logger)
	rt.knowledgeAPI = handlers.NewKnowledgeHandler(rt.Knowledge, logger)
	rt.dashboardAPI = dashboard.NewHandler(transcriptStore, logger)

	return rt, nil
}

// Handler assembles the full HTTP surface.
func (rt *Runtime) Handler() http.Handler {
	return router.New(&router.Config{
		Logger:             rt.Logger,
		Webhook:            rt.webhook,
		SendMessage:        rt.sendMessage,
		Registration:       rt.registration,
		Calendar:           rt.calendar,
		Knowledge:          rt.knowledgeAPI,
		Health:             handlers.NewHealthHandler(rt.Google != nil, rt.Redis != nil, rt.llmFallback),
		Dashboard:          rt.dashboardAPI,
		DashboardAssets:    dashboard.Assets(),
		Relay:              rt.Relay,
		MetricsHandler:     promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: rt.Config.CORSAllowedOrigins,
	})
}

// Close releases long-lived resources in dependency order.
func (rt *Runtime) Close() {
	if rt.Dispatcher != nil {
		rt.Dispatcher.Close()
	}
	if rt.Redis != nil {
		rt.Redis.Close()
	}
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, falling back to in-memory stores", "error", err)
		return nil
	}
	return client
}

func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, bool, error) {
	primary := conversation.NewAnthropicClient(cfg.AnthropicAPIKey)
	if cfg.GeminiAPIKey == "" {
		return primary, false, nil
	}

	gemini, err := conversation.NewGeminiClient(ctx, cfg.GeminiAPIKey, "")
	if err != nil {
		logger.Warn("gemini fallback unavailable", "error", err)
		return primary, false, nil
	}
	logger.Info("gemini fallback enabled")
	return conversation.NewFallbackLLMClient(primary, gemini, logger), true, nil
}
