package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/terravista/whatsapp-concierge/internal/appointments"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// RegistrationHandler records interested customers in the spreadsheet log.
type RegistrationHandler struct {
	sheets appointments.SheetWriter
	logger *logging.Logger
}

// NewRegistrationHandler creates the handler. A nil sheet writer reports the
// integration as unavailable.
func NewRegistrationHandler(sheets appointments.SheetWriter, logger *logging.Logger) *RegistrationHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &RegistrationHandler{sheets: sheets, logger: logger}
}

// RegistrationRequest is the request body for customer registration.
type RegistrationRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Interest string `json:"interest,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Handle processes POST /api/registro.
func (h *RegistrationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.Phone == "" {
		jsonError(w, "phone is required", http.StatusBadRequest)
		return
	}

	if h.sheets == nil {
		jsonError(w, "spreadsheet integration not configured", http.StatusServiceUnavailable)
		return
	}

	err := h.sheets.AppendCustomerRow(r.Context(), appointments.CustomerRecord{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    strings.TrimSpace(req.Email),
		Interest: strings.TrimSpace(req.Interest),
		Notes:    strings.TrimSpace(req.Notes),
	})
	if err != nil {
		h.logger.Error("failed to save customer record", "error", err)
		jsonError(w, "failed to save registration", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Registro guardado"})
}
