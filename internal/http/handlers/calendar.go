package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/terravista/whatsapp-concierge/internal/appointments"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// CalendarHandler creates calendar events directly, without going through the
// conversation flow.
type CalendarHandler struct {
	calendar appointments.CalendarWriter
	logger   *logging.Logger
}

// NewCalendarHandler creates the handler. A nil calendar writer reports the
// integration as unavailable.
func NewCalendarHandler(calendar appointments.CalendarWriter, logger *logging.Logger) *CalendarHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CalendarHandler{calendar: calendar, logger: logger}
}

// CreateEventRequest is the request body for direct bookings.
type CreateEventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	StartTime   string   `json:"startTime"` // RFC 3339
	EndTime     string   `json:"endTime"`   // RFC 3339
	Attendees   []string `json:"attendees,omitempty"`
}

// CreateEventResponse carries the event link back to the caller.
type CreateEventResponse struct {
	Success bool   `json:"success"`
	Event   string `json:"event,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handle processes POST /api/agendar.
func (h *CalendarHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		jsonError(w, "startTime must be RFC 3339", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		jsonError(w, "endTime must be RFC 3339", http.StatusBadRequest)
		return
	}
	if !end.After(start) {
		jsonError(w, "endTime must be after startTime", http.StatusBadRequest)
		return
	}

	if h.calendar == nil {
		jsonError(w, "calendar integration not configured", http.StatusServiceUnavailable)
		return
	}

	link, err := h.calendar.CreateEvent(r.Context(), appointments.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Start:       start,
		End:         end,
		Attendees:   req.Attendees,
	})
	if err != nil {
		h.logger.Error("failed to create calendar event", "error", err)
		jsonError(w, "failed to create event", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, CreateEventResponse{
		Success: true,
		Event:   link,
		Message: "Evento creado",
	})
}
