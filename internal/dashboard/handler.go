package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// Handler serves the dashboard's REST views over the transcript store.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates the dashboard REST handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// ConversationSummary is one phone's transcript with convenience fields.
type ConversationSummary struct {
	Phone        string    `json:"phone"`
	Messages     []Message `json:"messages"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
	MessageCount int       `json:"messageCount"`
}

// ListConversations handles GET /api/conversations.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, []ConversationSummary{})
		return
	}

	phones, err := h.store.Phones(r.Context())
	if err != nil {
		h.logger.Error("failed to list conversation phones", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	summaries := make([]ConversationSummary, 0, len(phones))
	for _, phone := range phones {
		messages, err := h.store.List(r.Context(), phone, 0)
		if err != nil {
			h.logger.Warn("failed to list transcript", "error", err, "phone", phone)
			continue
		}
		summary := ConversationSummary{
			Phone:        phone,
			Messages:     messages,
			MessageCount: len(messages),
		}
		if len(messages) > 0 {
			last := messages[len(messages)-1]
			summary.LastMessage = &last
		}
		summaries = append(summaries, summary)
	}

	writeJSON(w, http.StatusOK, summaries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
