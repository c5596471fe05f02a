package handlers

import (
	"net/http"

	"github.com/terravista/whatsapp-concierge/internal/conversation"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// KnowledgeHandler exposes the admin refresh of the prompt knowledge base.
type KnowledgeHandler struct {
	knowledge *conversation.KnowledgeBase
	logger    *logging.Logger
}

// NewKnowledgeHandler creates the handler.
func NewKnowledgeHandler(knowledge *conversation.KnowledgeBase, logger *logging.Logger) *KnowledgeHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &KnowledgeHandler{knowledge: knowledge, logger: logger}
}

// Refresh processes POST /api/knowledge/refresh. A failed fetch leaves the
// previous snapshot serving and reports the failure to the caller.
func (h *KnowledgeHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.knowledge == nil {
		jsonError(w, "knowledge base not configured", http.StatusServiceUnavailable)
		return
	}

	if err := h.knowledge.Refresh(r.Context()); err != nil {
		h.logger.Error("knowledge refresh failed", "error", err)
		jsonError(w, "refresh failed, previous snapshot kept", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Base de conocimiento actualizada"})
}
