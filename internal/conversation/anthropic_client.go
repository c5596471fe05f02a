package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var anthropicTracer = otel.Tracer("concierge.internal.conversation.anthropic")

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
)

// AnthropicClient calls the Anthropic Messages API over REST, including
// declared tools and tool-result follow-ups.
type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
	endpoint   string
}

// NewAnthropicClient builds a client with sane defaults.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		endpoint: anthropicEndpoint,
	}
}

var _ LLMClient = (*AnthropicClient)(nil)

type anthropicContentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int32              `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
	Temperature *float32           `json:"temperature,omitempty"`
	TopP        *float32           `json:"top_p,omitempty"`
}

type anthropicResponse struct {
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int32 `json:"input_tokens"`
		OutputTokens int32 `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a completion request, retrying transient failures.
func (c *AnthropicClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if c.apiKey == "" {
		return LLMResponse{}, errors.New("conversation: anthropic api key missing")
	}
	if strings.TrimSpace(req.Model) == "" {
		return LLMResponse{}, errors.New("conversation: anthropic model is required")
	}

	ctx, span := anthropicTracer.Start(ctx, "conversation.anthropic.complete")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", req.Model))

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: encode anthropic request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			lastErr = err
			break
		}
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", anthropicVersion)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return decodeAnthropicResponse(respBody)
			}
			lastErr = fmt.Errorf("anthropic request failed: %s", formatAnthropicError(resp.StatusCode, respBody))
			// Don't retry non-rate-limit 4xx errors.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != 429 {
				break
			}
		}

		if attempt < 3 {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			time.Sleep(sleep)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
	}
	return LLMResponse{}, lastErr
}

func (c *AnthropicClient) buildRequest(req LLMRequest) anthropicRequest {
	out := anthropicRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = 2048
	}
	if req.Temperature >= 0 {
		temp := req.Temperature
		out.Temperature = &temp
	}
	if req.TopP != 0 {
		topP := req.TopP
		out.TopP = &topP
	}

	var system []string
	for _, block := range req.System {
		if strings.TrimSpace(block) != "" {
			system = append(system, block)
		}
	}

	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Role == ChatRoleSystem {
			system = append(system, content)
			continue
		}
		out.Messages = append(out.Messages, anthropicMessage{
			Role:    msg.Role,
			Content: []anthropicContentBlock{{Type: "text", Text: content}},
		})
	}
	out.System = strings.Join(system, "\n\n")

	// Replay completed tool rounds so the model can produce the final reply.
	for _, exchange := range req.ToolExchanges {
		out.Messages = append(out.Messages,
			anthropicMessage{
				Role: ChatRoleAssistant,
				Content: []anthropicContentBlock{{
					Type:  "tool_use",
					ID:    exchange.Use.ID,
					Name:  exchange.Use.Name,
					Input: exchange.Use.Input,
				}},
			},
			anthropicMessage{
				Role: ChatRoleUser,
				Content: []anthropicContentBlock{{
					Type:      "tool_result",
					ToolUseID: exchange.Use.ID,
					Content:   exchange.ResultJSON,
				}},
			},
		)
	}

	for _, tool := range req.Tools {
		out.Tools = append(out.Tools, anthropicTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
	}
	return out
}

func decodeAnthropicResponse(body []byte) (LLMResponse, error) {
	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: decode anthropic response: %w", err)
	}
	if parsed.Error != nil {
		return LLMResponse{}, fmt.Errorf("conversation: anthropic error %s: %s", parsed.Error.Type, parsed.Error.Message)
	}

	resp := LLMResponse{
		StopReason: parsed.StopReason,
		Usage: TokenUsage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
			TotalTokens:  parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			if resp.ToolUse == nil {
				resp.ToolUse = &ToolUse{
					ID:    block.ID,
					Name:  block.Name,
					Input: block.Input,
				}
			}
		}
	}
	resp.Text = strings.TrimSpace(text.String())

	if resp.Text == "" && resp.ToolUse == nil {
		return LLMResponse{}, errors.New("conversation: anthropic response contained no usable content")
	}
	return resp, nil
}

func formatAnthropicError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return fmt.Sprintf("status %d %s: %s", status, parsed.Error.Type, parsed.Error.Message)
	}
	if len(trimmed) > 512 {
		trimmed = trimmed[:512]
	}
	return fmt.Sprintf("status %d: %s", status, trimmed)
}
