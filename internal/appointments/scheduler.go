package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

var schedulerTracer = otel.Tracer("concierge.internal.appointments.scheduler")

// Request is a structured appointment request, usually produced by the
// model's action call. Fields arrive unvalidated.
type Request struct {
	CustomerName string
	Email        string
	Phone        string
	Date         string // YYYY-MM-DD
	Time         string // HH:MM, 24h
	Property     string
	Location     string
	Notes        string
}

// Details echoes the normalized appointment back to the model and the API.
type Details struct {
	Date         string `json:"fecha"`
	Time         string `json:"hora"`
	Property     string `json:"propiedad"`
	Location     string `json:"ubicacion"`
	CalendarLink string `json:"calendar_link,omitempty"`
}

// Result is the outcome of a scheduling attempt. Success=true always carries
// a non-empty message; EventLink is set only when the calendar write succeeded.
type Result struct {
	Success     bool     `json:"success"`
	Message     string   `json:"mensaje"`
	EventLink   string   `json:"link,omitempty"`
	Appointment *Details `json:"evento,omitempty"`
}

// CustomerRecord is one row in the customer log.
type CustomerRecord struct {
	Name     string
	Phone    string
	Email    string
	Interest string
	Notes    string
}

// Event is a calendar event to create.
type Event struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// SheetWriter appends customer records to the spreadsheet log.
type SheetWriter interface {
	AppendCustomerRow(ctx context.Context, rec CustomerRecord) error
}

// CalendarWriter creates calendar events and returns the event link.
type CalendarWriter interface {
	CreateEvent(ctx context.Context, ev Event) (string, error)
}

// RequestFromAction builds a Request from the model's action arguments.
// Missing fields stay empty; validation happens in Schedule so the customer
// gets a readable reason instead of a dropped action.
func RequestFromAction(input map[string]any, customerPhone string) Request {
	req := Request{
		CustomerName: stringArg(input, "nombre_cliente"),
		Email:        stringArg(input, "email"),
		Phone:        stringArg(input, "telefono"),
		Date:         stringArg(input, "fecha"),
		Time:         stringArg(input, "hora"),
		Property:     stringArg(input, "propiedad"),
		Location:     stringArg(input, "ubicacion"),
		Notes:        stringArg(input, "notas"),
	}
	if req.Phone == "" {
		req.Phone = customerPhone
	}
	return req
}

func stringArg(input map[string]any, key string) string {
	if input == nil {
		return ""
	}
	if v, ok := input[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Scheduler validates appointment requests and performs the spreadsheet and
// calendar writes. It never returns an error to its caller: every failure
// path becomes a Result with Success=false.
type Scheduler struct {
	sheets   SheetWriter
	calendar CalendarWriter
	location *time.Location
	logger   *logging.Logger
}

// NewScheduler creates a scheduler operating in the given IANA timezone.
// Either writer may be nil when the integration is not configured.
func NewScheduler(sheets SheetWriter, calendar CalendarWriter, timezone string, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("appointments: invalid timezone %q: %w", timezone, err)
	}
	return &Scheduler{
		sheets:   sheets,
		calendar: calendar,
		location: loc,
		logger:   logger,
	}, nil
}

// Schedule runs one scheduling attempt. Appointments last one hour; the sheet
// write and the calendar write are each best-effort, and the attempt succeeds
// when at least one of them does.
func (s *Scheduler) Schedule(ctx context.Context, req Request) Result {
	ctx, span := schedulerTracer.Start(ctx, "appointments.schedule")
	defer span.End()
	span.SetAttributes(
		attribute.String("appointment.date", req.Date),
		attribute.String("appointment.time", req.Time),
	)

	start, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(req.Date)+" "+strings.TrimSpace(req.Time), s.location)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("rejected appointment with invalid date/time", "date", req.Date, "time", req.Time)
		return Result{
			Success: false,
			Message: fmt.Sprintf("Fecha u hora inválida. Por favor verifica: %s %s", req.Date, req.Time),
		}
	}
	end := start.Add(time.Hour)

	sheetSaved := s.writeSheet(ctx, req)
	eventLink, eventCreated := s.writeCalendar(ctx, req, start, end)

	if !sheetSaved && !eventCreated {
		return Result{
			Success: false,
			Message: "No se pudo guardar la cita. Verifica la configuración de Google.",
		}
	}

	location := req.Location
	if location == "" {
		location = req.Property
	}
	details := &Details{
		Date:         req.Date,
		Time:         req.Time,
		Property:     req.Property,
		Location:     location,
		CalendarLink: eventLink,
	}

	if eventCreated {
		return Result{
			Success:     true,
			Message:     fmt.Sprintf("Cita confirmada para %s a las %s. ✅ Evento creado en el calendario.", req.Date, req.Time),
			EventLink:   eventLink,
			Appointment: details,
		}
	}
	return Result{
		Success:     true,
		Message:     fmt.Sprintf("Cita registrada para %s a las %s. (Evento de calendario pendiente)", req.Date, req.Time),
		Appointment: details,
	}
}

func (s *Scheduler) writeSheet(ctx context.Context, req Request) bool {
	if s.sheets == nil {
		return false
	}
	notes := fmt.Sprintf("Cita agendada: %s %s.", req.Date, req.Time)
	if req.Notes != "" {
		notes += " " + req.Notes
	}
	err := s.sheets.AppendCustomerRow(ctx, CustomerRecord{
		Name:     req.CustomerName,
		Phone:    req.Phone,
		Email:    req.Email,
		Interest: req.Property,
		Notes:    notes,
	})
	if err != nil {
		s.logger.Warn("sheet write failed, continuing", "error", err)
		return false
	}
	return true
}

func (s *Scheduler) writeCalendar(ctx context.Context, req Request, start, end time.Time) (string, bool) {
	if s.calendar == nil {
		return "", false
	}

	notes := req.Notes
	if notes == "" {
		notes = "Sin notas adicionales"
	}
	// The service identity cannot send invitations without domain-wide
	// delegation, so contact details go in the description instead of an
	// attendee list.
	description := fmt.Sprintf("Cliente: %s\nTeléfono: %s\nEmail: %s\n\nNotas: %s",
		req.CustomerName, req.Phone, req.Email, notes)

	location := req.Location
	if location == "" {
		location = req.Property
	}

	link, err := s.calendar.CreateEvent(ctx, Event{
		Title:       "Visita: " + req.Property,
		Description: description,
		Location:    location,
		Start:       start,
		End:         end,
	})
	if err != nil {
		s.logger.Warn("calendar write failed, continuing", "error", err)
		return "", false
	}
	return link, true
}
