package handlers

import (
	"net/http"
)

// HealthStatus describes which integrations the running instance has enabled.
type HealthStatus struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	GoogleSuite bool   `json:"google"`
	RedisBacked bool   `json:"redis"`
	LLMFallback bool   `json:"llmFallback"`
}

// HealthHandler reports liveness and integration status.
type HealthHandler struct {
	status HealthStatus
}

// NewHealthHandler creates the handler with the resolved integration flags.
func NewHealthHandler(googleEnabled, redisBacked, llmFallback bool) *HealthHandler {
	return &HealthHandler{status: HealthStatus{
		Status:      "ok",
		Service:     "whatsapp-concierge",
		GoogleSuite: googleEnabled,
		RedisBacked: redisBacked,
		LLMFallback: llmFallback,
	}}
}

// Handle processes GET /health.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status)
}
