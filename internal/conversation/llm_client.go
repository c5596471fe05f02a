package conversation

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// StopReasonToolUse marks a response that requests a tool invocation instead
// of (or in addition to) free text.
const StopReasonToolUse = "tool_use"

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// ToolDefinition declares a callable action the model may request.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolUse is a structured action call emitted by the model.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]any
}

// ToolExchange is a completed tool round: the model's request plus the
// serialized result the host produced for it. Exchanges are replayed after
// Messages on follow-up requests so the model can phrase the final reply.
type ToolExchange struct {
	Use        ToolUse
	ResultJSON string
}

type LLMRequest struct {
	Model         string
	System        []string
	Messages      []ChatMessage
	Tools         []ToolDefinition
	ToolExchanges []ToolExchange
	MaxTokens     int32
	Temperature   float32
	TopP          float32
}

type LLMResponse struct {
	Text       string
	ToolUse    *ToolUse
	Usage      TokenUsage
	StopReason string
}

type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
