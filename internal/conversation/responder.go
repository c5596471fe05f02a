package conversation

import (
	"context"
	"encoding/json"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/terravista/whatsapp-concierge/internal/appointments"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

var responderTracer = otel.Tracer("concierge.internal.conversation.responder")

// FallbackReply is sent when the LLM cannot be reached. The customer always
// gets some reply; upstream errors never cross this boundary.
const FallbackReply = "Disculpa, estoy experimentando dificultades técnicas. Por favor, intenta de nuevo en unos momentos."

// AppointmentScheduler turns a structured action call into a result.
// Implementations never return an error; every failure is a Result with
// Success=false and a human-readable reason.
type AppointmentScheduler interface {
	Schedule(ctx context.Context, req appointments.Request) appointments.Result
}

// Reply is the outcome of one responder invocation.
type Reply struct {
	Text        string
	Appointment *appointments.Result
}

// Responder builds the prompt, calls the LLM, and runs the schedule action
// round-trip when the model requests it.
type Responder struct {
	llm       LLMClient
	knowledge *KnowledgeBase
	scheduler AppointmentScheduler
	model     string
	logger    *logging.Logger
}

// NewResponder creates a responder. A nil scheduler disables scheduling; the
// model can still converse, and action calls produce a polite failure result.
func NewResponder(llm LLMClient, knowledge *KnowledgeBase, scheduler AppointmentScheduler, model string, logger *logging.Logger) *Responder {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Responder{
		llm:       llm,
		knowledge: knowledge,
		scheduler: scheduler,
		model:     model,
		logger:    logger,
	}
}

// Respond produces the assistant reply for one inbound message.
func (r *Responder) Respond(ctx context.Context, phone string, history []ChatMessage, message string) Reply {
	ctx, span := responderTracer.Start(ctx, "conversation.respond")
	defer span.End()
	span.SetAttributes(attribute.Int("conversation.history_len", len(history)))

	req := LLMRequest{
		Model:       r.model,
		System:      []string{BuildSystemPrompt(r.knowledgeText())},
		Messages:    append(append([]ChatMessage{}, history...), ChatMessage{Role: ChatRoleUser, Content: message}),
		Tools:       []ToolDefinition{ScheduleTool()},
		MaxTokens:   2048,
		Temperature: -1,
	}

	resp, err := r.llm.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		r.logger.Error("llm completion failed", "error", err, "phone", phone)
		return Reply{Text: FallbackReply}
	}

	if resp.ToolUse != nil && resp.ToolUse.Name == ScheduleToolName {
		return r.handleScheduleAction(ctx, phone, req, resp)
	}

	if strings.TrimSpace(resp.Text) == "" {
		return Reply{Text: FallbackReply}
	}
	return Reply{Text: resp.Text}
}

func (r *Responder) handleScheduleAction(ctx context.Context, phone string, req LLMRequest, resp LLMResponse) Reply {
	apptReq := appointments.RequestFromAction(resp.ToolUse.Input, phone)
	r.logger.Info("model requested appointment",
		"phone", phone,
		"date", apptReq.Date,
		"time", apptReq.Time,
		"property", apptReq.Property,
	)

	var result appointments.Result
	if r.scheduler != nil {
		result = r.scheduler.Schedule(ctx, apptReq)
	} else {
		result = appointments.Result{
			Success: false,
			Message: "El agendamiento automático no está disponible por el momento.",
		}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		resultJSON = []byte(`{"success":false,"mensaje":"error interno"}`)
	}

	followUp := req
	followUp.MaxTokens = 1024
	followUp.ToolExchanges = []ToolExchange{{
		Use:        *resp.ToolUse,
		ResultJSON: string(resultJSON),
	}}

	final, err := r.llm.Complete(ctx, followUp)
	text := ""
	if err != nil {
		// The appointment already happened; fall back to the scheduler's own
		// wording rather than apologizing and losing the confirmation.
		r.logger.Error("llm follow-up failed after tool call", "error", err, "phone", phone)
		text = result.Message
	} else {
		text = final.Text
	}
	if strings.TrimSpace(text) == "" {
		text = result.Message
	}

	// The confirmation link must reach the customer verbatim even when the
	// model leaves it out of its phrasing.
	if result.EventLink != "" && !strings.Contains(text, result.EventLink) {
		text = text + "\n\n📅 " + result.EventLink
	}

	return Reply{Text: text, Appointment: &result}
}

func (r *Responder) knowledgeText() string {
	if r.knowledge == nil {
		return ""
	}
	return r.knowledge.Text()
}
