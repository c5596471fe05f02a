package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terravista/whatsapp-concierge/internal/appointments"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// scriptedLLM returns canned responses in order and records requests.
type scriptedLLM struct {
	responses []LLMResponse
	errs      []error
	requests  []LLMRequest
}

func (s *scriptedLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	i := len(s.requests)
	s.requests = append(s.requests, req)
	if i < len(s.errs) && s.errs[i] != nil {
		return LLMResponse{}, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return LLMResponse{}, errors.New("scriptedLLM: no response scripted")
}

type recordingScheduler struct {
	requests []appointments.Request
	result   appointments.Result
}

func (r *recordingScheduler) Schedule(_ context.Context, req appointments.Request) appointments.Result {
	r.requests = append(r.requests, req)
	return r.result
}

func TestRespondPlainReply(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{{Text: "¡Hola! ¿En qué puedo ayudarte?"}}}
	scheduler := &recordingScheduler{}
	r := NewResponder(llm, nil, scheduler, "test-model", logging.Default())

	reply := r.Respond(context.Background(), "+521", nil, "Hola")

	assert.Equal(t, "¡Hola! ¿En qué puedo ayudarte?", reply.Text)
	assert.Nil(t, reply.Appointment)
	assert.Empty(t, scheduler.requests)

	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, ScheduleToolName, req.Tools[0].Name)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "Hola", req.Messages[0].Content)
}

func TestRespondIncludesHistory(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{{Text: "Claro."}}}
	r := NewResponder(llm, nil, nil, "test-model", logging.Default())

	history := []ChatMessage{
		{Role: ChatRoleUser, Content: "Hola"},
		{Role: ChatRoleAssistant, Content: "¡Hola!"},
	}
	r.Respond(context.Background(), "+521", history, "¿Tienen lotes?")

	require.Len(t, llm.requests, 1)
	msgs := llm.requests[0].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "Hola", msgs[0].Content)
	assert.Equal(t, "¿Tienen lotes?", msgs[2].Content)
}

func TestRespondSchedulesOnToolUse(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{
		{
			StopReason: StopReasonToolUse,
			ToolUse: &ToolUse{
				ID:   "toolu_1",
				Name: ScheduleToolName,
				Input: map[string]any{
					"nombre_cliente": "Juan",
					"fecha":          "2026-09-05",
					"hora":           "11:00",
					"propiedad":      "Lote 12",
				},
			},
		},
		{Text: "¡Listo Juan! Tu visita al Lote 12 quedó confirmada."},
	}}
	scheduler := &recordingScheduler{result: appointments.Result{
		Success: true,
		Message: "Cita confirmada para 2026-09-05 a las 11:00.",
	}}
	r := NewResponder(llm, nil, scheduler, "test-model", logging.Default())

	reply := r.Respond(context.Background(), "+5215512345678", nil, "Quiero agendar el sábado a las 11")

	// Exactly one scheduling attempt, with the customer's phone filled in.
	require.Len(t, scheduler.requests, 1)
	assert.Equal(t, "Juan", scheduler.requests[0].CustomerName)
	assert.Equal(t, "+5215512345678", scheduler.requests[0].Phone)

	assert.Equal(t, "¡Listo Juan! Tu visita al Lote 12 quedó confirmada.", reply.Text)
	require.NotNil(t, reply.Appointment)
	assert.True(t, reply.Appointment.Success)

	// The follow-up request replays the tool round.
	require.Len(t, llm.requests, 2)
	followUp := llm.requests[1]
	require.Len(t, followUp.ToolExchanges, 1)
	assert.Equal(t, "toolu_1", followUp.ToolExchanges[0].Use.ID)
	assert.Contains(t, followUp.ToolExchanges[0].ResultJSON, `"success":true`)
}

func TestRespondAppendsEventLink(t *testing.T) {
	const link = "https://calendar.google.com/event?eid=abc"
	llm := &scriptedLLM{responses: []LLMResponse{
		{StopReason: StopReasonToolUse, ToolUse: &ToolUse{ID: "t1", Name: ScheduleToolName, Input: map[string]any{}}},
		{Text: "Tu cita quedó confirmada."},
	}}
	scheduler := &recordingScheduler{result: appointments.Result{
		Success:   true,
		Message:   "Cita confirmada.",
		EventLink: link,
	}}
	r := NewResponder(llm, nil, scheduler, "test-model", logging.Default())

	reply := r.Respond(context.Background(), "+521", nil, "agenda")
	assert.Equal(t, "Tu cita quedó confirmada.\n\n📅 "+link, reply.Text)
}

func TestRespondKeepsConfirmationWhenFollowUpFails(t *testing.T) {
	llm := &scriptedLLM{
		responses: []LLMResponse{
			{StopReason: StopReasonToolUse, ToolUse: &ToolUse{ID: "t1", Name: ScheduleToolName, Input: map[string]any{}}},
			{},
		},
		errs: []error{nil, errors.New("rate limited")},
	}
	scheduler := &recordingScheduler{result: appointments.Result{
		Success: true,
		Message: "Cita confirmada para 2026-09-05 a las 11:00.",
	}}
	r := NewResponder(llm, nil, scheduler, "test-model", logging.Default())

	reply := r.Respond(context.Background(), "+521", nil, "agenda")

	// The appointment went through; the customer must still hear about it.
	assert.Equal(t, "Cita confirmada para 2026-09-05 a las 11:00.", reply.Text)
	require.NotNil(t, reply.Appointment)
	assert.True(t, reply.Appointment.Success)
}

func TestRespondFallbackOnLLMFailure(t *testing.T) {
	llm := &scriptedLLM{errs: []error{errors.New("upstream down")}}
	r := NewResponder(llm, nil, nil, "test-model", logging.Default())

	reply := r.Respond(context.Background(), "+521", nil, "Hola")
	assert.Equal(t, FallbackReply, reply.Text)
	assert.Nil(t, reply.Appointment)
}

func TestRespondToolUseWithoutScheduler(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{
		{StopReason: StopReasonToolUse, ToolUse: &ToolUse{ID: "t1", Name: ScheduleToolName, Input: map[string]any{}}},
		{Text: "Por el momento no puedo agendar, pero con gusto te comparto la información."},
	}}
	r := NewResponder(llm, nil, nil, "test-model", logging.Default())

	reply := r.Respond(context.Background(), "+521", nil, "agenda")
	require.NotNil(t, reply.Appointment)
	assert.False(t, reply.Appointment.Success)
}
