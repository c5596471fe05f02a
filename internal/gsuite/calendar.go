package gsuite

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/terravista/whatsapp-concierge/internal/appointments"
)

// CreateEvent inserts a calendar event with the bot's standard reminder
// overrides (email 24h before, popup 30min before) and returns its HTML link.
func (c *Client) CreateEvent(ctx context.Context, ev appointments.Event) (string, error) {
	calendarID := c.calendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	attendees := make([]*calendar.EventAttendee, 0, len(ev.Attendees))
	for _, email := range ev.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	event := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		Attendees: attendees,
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := c.calendar.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gsuite: insert calendar event: %w", err)
	}

	c.logger.Info("calendar event created", "event_id", created.Id, "status", created.Status)
	return created.HtmlLink, nil
}
