package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/terravista/whatsapp-concierge/internal/conversation"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// Sender dispatches one raw message and returns the provider message SID.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// Pacing thresholds tuned to read like a person typing, not a firehose.
const (
	multiPartThreshold = 200
	paragraphGap       = 800 * time.Millisecond

	paragraphPerChar = time.Second / 20
	paragraphMin     = 1500 * time.Millisecond
	paragraphMax     = 4 * time.Second

	messagePerChar = time.Second / 15
	messageMin     = 2 * time.Second
	messageMax     = 5 * time.Second
)

// PacedSender delivers replies with human-like typing delays. Long replies
// with multiple paragraphs are split and sent as separate messages.
type PacedSender struct {
	sender Sender
	sleep  func(ctx context.Context, d time.Duration) error
	logger *logging.Logger
}

var _ conversation.ReplyMessenger = (*PacedSender)(nil)

// NewPacedSender wraps a raw sender with typing-delay pacing.
func NewPacedSender(sender Sender, logger *logging.Logger) *PacedSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &PacedSender{
		sender: sender,
		sleep:  sleepCtx,
		logger: logger,
	}
}

// SendReply paces the reply out to the customer. Each chunk waits its typing
// delay before being sent; a failed chunk aborts the remainder.
func (p *PacedSender) SendReply(ctx context.Context, to, body string) error {
	chunks := splitReply(body)
	for i, chunk := range chunks {
		if i > 0 {
			if err := p.sleep(ctx, paragraphGap); err != nil {
				return err
			}
		}
		if err := p.sleep(ctx, typingDelay(chunk, len(chunks) > 1)); err != nil {
			return err
		}
		if _, err := p.sender.Send(ctx, to, chunk); err != nil {
			return err
		}
	}
	return nil
}

// splitReply breaks a long multi-paragraph reply into per-paragraph messages.
// Short or single-paragraph replies go out whole.
func splitReply(body string) []string {
	if len(body) <= multiPartThreshold || !strings.Contains(body, "\n\n") {
		return []string{body}
	}
	parts := strings.Split(body, "\n\n")
	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			chunks = append(chunks, part)
		}
	}
	if len(chunks) == 0 {
		return []string{body}
	}
	return chunks
}

// typingDelay estimates how long a person would take to type the chunk.
func typingDelay(chunk string, multiPart bool) time.Duration {
	if multiPart {
		return clampDuration(time.Duration(len(chunk))*paragraphPerChar, paragraphMin, paragraphMax)
	}
	return clampDuration(time.Duration(len(chunk))*messagePerChar, messageMin, messageMax)
}

func clampDuration(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
