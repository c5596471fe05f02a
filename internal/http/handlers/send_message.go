package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/terravista/whatsapp-concierge/internal/conversation"
	"github.com/terravista/whatsapp-concierge/internal/messaging"
	"github.com/terravista/whatsapp-concierge/internal/observability/metrics"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// SendMessageHandler lets an operator push a manual WhatsApp message from the
// dashboard. Manual sends bypass the typing-delay pacing.
type SendMessageHandler struct {
	sender    messaging.Sender
	dashboard conversation.DashboardNotifier
	metrics   *metrics.MessagingMetrics
	logger    *logging.Logger
}

// NewSendMessageHandler creates the handler. Dashboard and metrics may be nil.
func NewSendMessageHandler(sender messaging.Sender, dashboard conversation.DashboardNotifier, m *metrics.MessagingMetrics, logger *logging.Logger) *SendMessageHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SendMessageHandler{
		sender:    sender,
		dashboard: dashboard,
		metrics:   m,
		logger:    logger,
	}
}

// SendMessageRequest is the request body for manual sends.
type SendMessageRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Handle processes POST /api/send-message.
func (h *SendMessageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	req.To = strings.TrimSpace(req.To)
	req.Message = strings.TrimSpace(req.Message)
	if req.To == "" {
		jsonError(w, "to is required", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		jsonError(w, "message is required", http.StatusBadRequest)
		return
	}

	phone := messaging.NormalizeWhatsApp(req.To)
	if _, err := h.sender.Send(r.Context(), phone, req.Message); err != nil {
		h.metrics.ObserveOutbound("failed")
		h.logger.Error("manual send failed", "error", err, "to", phone)
		jsonError(w, "failed to send message", http.StatusBadGateway)
		return
	}
	h.metrics.ObserveOutbound("sent")

	if h.dashboard != nil {
		h.dashboard.RecordOutbound(r.Context(), uuid.NewString(), phone, req.Message)
	}

	h.logger.Info("manual message sent", "to", phone)
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}
