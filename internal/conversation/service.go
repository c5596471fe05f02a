package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/terravista/whatsapp-concierge/internal/observability/metrics"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// ReplyMessenger delivers outbound WhatsApp messages to a customer.
type ReplyMessenger interface {
	SendReply(ctx context.Context, to, body string) error
}

// DashboardNotifier mirrors conversation traffic to the live dashboard.
// Mirroring is best-effort and must never abort the reply path.
type DashboardNotifier interface {
	RecordInbound(ctx context.Context, id, phone, body string)
	RecordOutbound(ctx context.Context, id, phone, body string)
}

// InboundMessage is one normalized webhook message.
type InboundMessage struct {
	MessageSID string
	Phone      string
	Body       string
}

// Service runs the inbound pipeline: history → responder → reply → dashboard.
type Service struct {
	store      HistoryStore
	responder  *Responder
	messenger  ReplyMessenger
	dashboard  DashboardNotifier
	dispatcher *Dispatcher
	metrics    *metrics.ConversationMetrics
	logger     *logging.Logger
}

// NewService wires the pipeline. Dashboard and metrics may be nil.
func NewService(store HistoryStore, responder *Responder, messenger ReplyMessenger, dashboard DashboardNotifier, dispatcher *Dispatcher, m *metrics.ConversationMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("conversation: history store cannot be nil")
	}
	if responder == nil {
		panic("conversation: responder cannot be nil")
	}
	if messenger == nil {
		panic("conversation: messenger cannot be nil")
	}
	if dispatcher == nil {
		panic("conversation: dispatcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:      store,
		responder:  responder,
		messenger:  messenger,
		dashboard:  dashboard,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// HandleInbound mirrors the message to the dashboard and queues it for
// processing on the customer's serial queue. The caller acks the webhook
// immediately; the reply happens asynchronously.
func (s *Service) HandleInbound(ctx context.Context, msg InboundMessage) error {
	if s.dashboard != nil {
		s.dashboard.RecordInbound(ctx, msg.MessageSID, msg.Phone, msg.Body)
	}
	return s.dispatcher.Enqueue(msg.Phone, func(jobCtx context.Context) {
		s.process(jobCtx, msg)
	})
}

func (s *Service) process(ctx context.Context, msg InboundMessage) {
	started := time.Now()

	history, err := s.store.Load(ctx, msg.Phone)
	if err != nil {
		// Respond from an empty history rather than dropping the customer.
		s.logger.Warn("failed to load history", "error", err, "phone", msg.Phone)
		history = nil
	}

	reply := s.responder.Respond(ctx, msg.Phone, history, msg.Body)
	s.metrics.ObserveReply(reply.Appointment != nil, time.Since(started).Seconds())
	if reply.Appointment != nil {
		s.metrics.ObserveAppointment(reply.Appointment.Success)
	}

	if err := s.store.AppendExchange(ctx, msg.Phone,
		ChatMessage{Role: ChatRoleUser, Content: msg.Body},
		ChatMessage{Role: ChatRoleAssistant, Content: reply.Text},
	); err != nil {
		s.logger.Error("failed to append history", "error", err, "phone", msg.Phone)
	}

	if err := s.messenger.SendReply(ctx, msg.Phone, reply.Text); err != nil {
		s.logger.Error("failed to send reply", "error", err, "phone", msg.Phone)
		return
	}

	if s.dashboard != nil {
		s.dashboard.RecordOutbound(ctx, uuid.NewString(), msg.Phone, reply.Text)
	}
}
