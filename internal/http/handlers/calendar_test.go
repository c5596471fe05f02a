package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terravista/whatsapp-concierge/internal/appointments"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

type fakeCalendar struct {
	events []appointments.Event
}

func (f *fakeCalendar) CreateEvent(_ context.Context, ev appointments.Event) (string, error) {
	f.events = append(f.events, ev)
	return "https://calendar.google.com/event?eid=abc", nil
}

func TestCreateEvent(t *testing.T) {
	cal := &fakeCalendar{}
	h := NewCalendarHandler(cal, logging.Default())

	body := `{
		"title": "Visita: Lote 12",
		"location": "Fracc. Los Pinos",
		"startTime": "2026-09-05T11:00:00-06:00",
		"endTime": "2026-09-05T12:00:00-06:00",
		"attendees": ["cliente@example.com"]
	}`
	r := httptest.NewRequest("POST", "/api/agendar", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Handle(w, r)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "https://calendar.google.com/event?eid=abc")

	require.Len(t, cal.events, 1)
	ev := cal.events[0]
	assert.Equal(t, "Visita: Lote 12", ev.Title)
	assert.Equal(t, []string{"cliente@example.com"}, ev.Attendees)
	assert.Equal(t, time.Hour, ev.End.Sub(ev.Start))
}

func TestCreateEventValidation(t *testing.T) {
	h := NewCalendarHandler(&fakeCalendar{}, logging.Default())

	for _, body := range []string{
		`{"title":"","startTime":"2026-09-05T11:00:00Z","endTime":"2026-09-05T12:00:00Z"}`,
		`{"title":"Visita","startTime":"mañana","endTime":"2026-09-05T12:00:00Z"}`,
		`{"title":"Visita","startTime":"2026-09-05T12:00:00Z","endTime":"2026-09-05T11:00:00Z"}`,
	} {
		r := httptest.NewRequest("POST", "/api/agendar", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.Handle(w, r)
		assert.Equal(t, 400, w.Code, "body: %s", body)
	}
}

func TestCreateEventWithoutIntegration(t *testing.T) {
	h := NewCalendarHandler(nil, logging.Default())

	body := `{"title":"Visita","startTime":"2026-09-05T11:00:00Z","endTime":"2026-09-05T12:00:00Z"}`
	r := httptest.NewRequest("POST", "/api/agendar", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Handle(w, r)

	assert.Equal(t, 503, w.Code)
}
