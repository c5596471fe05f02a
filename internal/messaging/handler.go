package messaging

import (
	"net/http"
	"strings"

	"github.com/terravista/whatsapp-concierge/internal/conversation"
	"github.com/terravista/whatsapp-concierge/internal/observability/metrics"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// WebhookConfig controls signature validation for inbound webhooks.
// Validation is skipped when AuthToken or WebhookURL is empty.
type WebhookConfig struct {
	AuthToken  string
	WebhookURL string
}

// WebhookHandler receives Twilio WhatsApp webhooks and hands the message to
// the conversation pipeline. It always acks fast; replies go out async.
type WebhookHandler struct {
	cfg     WebhookConfig
	service *conversation.Service
	metrics *metrics.MessagingMetrics
	logger  *logging.Logger
}

// NewWebhookHandler creates the webhook handler. Metrics may be nil.
func NewWebhookHandler(cfg WebhookConfig, service *conversation.Service, m *metrics.MessagingMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		cfg:     cfg,
		service: service,
		metrics: m,
		logger:  logger,
	}
}

// HandleWhatsApp processes POST /webhook/whatsapp.
func (h *WebhookHandler) HandleWhatsApp(w http.ResponseWriter, r *http.Request) {
	if h.cfg.AuthToken != "" && h.cfg.WebhookURL != "" {
		if !ValidateTwilioSignature(r, h.cfg.AuthToken, h.cfg.WebhookURL) {
			h.metrics.ObserveInbound("rejected")
			h.logger.Warn("webhook signature validation failed", "remote", r.RemoteAddr)
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
	}

	req, err := ParseWhatsAppWebhook(r)
	if err != nil {
		h.metrics.ObserveInbound("malformed")
		h.logger.Warn("failed to parse webhook", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	phone := NormalizeWhatsApp(req.From)
	body := strings.TrimSpace(req.Body)

	if phone == "" || body == "" {
		// Status callbacks and media-only messages get an empty ack.
		h.metrics.ObserveInbound("ignored")
		writeTwiML(w)
		return
	}

	h.logger.Info("whatsapp message received", "from", phone, "sid", req.MessageSid)

	if err := h.service.HandleInbound(r.Context(), conversation.InboundMessage{
		MessageSID: req.MessageSid,
		Phone:      phone,
		Body:       body,
	}); err != nil {
		// The customer's queue is saturated. Still ack so Twilio stops retrying.
		h.metrics.ObserveInbound("dropped")
		h.logger.Error("failed to enqueue inbound message", "error", err, "phone", phone)
		writeTwiML(w)
		return
	}

	h.metrics.ObserveInbound("accepted")
	writeTwiML(w)
}

func writeTwiML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(emptyTwiML))
}
