package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pageza/vitalchat/backend/internal/metrics"
)

// DefaultCompletionTimeout bounds one assistant completion.
const DefaultCompletionTimeout = 20 * time.Second

const (
	// TimeoutReply is stored as the reply when the model does not answer in time.
	TimeoutReply = "The request took too long and was canceled. Please try again."
	// ApologyReply is stored when both the chat call and the fallback came back empty.
	ApologyReply = "Sorry, I couldn’t generate a response."
)

// SystemPrompt is the fixed assistant persona.
const SystemPrompt = `You are a professional physical health and fitness assistant.
Your role is to give safe, medically cautious, and personalized guidance related to:
- Physical exercise
- Weight management
- Calorie tracking
- Healthy diet planning
- Hydration and nutrition tips
- Sleep and recovery advice
- Progress tracking

Rules:
- Should only answer queries related to health and monitoring them.
- If needed ask users for details to calculate diet but don't give inappropriate data.
- Never give unsafe or extreme recommendations.
- No one line gap after each paragraph.
- Responses should include points.
- If asked for medical diagnosis, politely advise seeing a doctor.
- Responses should contain at least 20 words.
- If giving diet/exercise plans, ensure they are beginner-friendly unless user specifies otherwise.`

// CompletionGateway turns a chat context and a new message into a reply.
// Timeouts and empty completions become fixed replies; only outright
// generator failures are returned as errors.
type CompletionGateway struct {
	generator TextGenerator
	timeout   time.Duration
	metrics   *metrics.Metrics
}

func NewCompletionGateway(generator TextGenerator, timeout time.Duration, m *metrics.Metrics) *CompletionGateway {
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	return &CompletionGateway{generator: generator, timeout: timeout, metrics: m}
}

// Complete asks the model for a reply. The fallback call shares the deadline
// of the first call.
func (g *CompletionGateway) Complete(ctx context.Context, cc *ChatContext, message string) (string, error) {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.generator.Chat(callCtx, SystemPrompt, cc.History, message)
	if err != nil {
		return g.failed(ctx, callCtx, err, start)
	}
	if strings.TrimSpace(text) != "" {
		g.metrics.ObserveCompletion(metrics.OutcomeOK, time.Since(start))
		return text, nil
	}

	slog.WarnContext(ctx, "empty completion, trying fallback prompt")
	text, err = g.generator.Generate(callCtx, SystemPrompt, FlatPrompt(cc, message))
	if err != nil {
		return g.failed(ctx, callCtx, err, start)
	}
	if strings.TrimSpace(text) == "" {
		g.metrics.ObserveCompletion(metrics.OutcomeApology, time.Since(start))
		return ApologyReply, nil
	}

	g.metrics.ObserveCompletion(metrics.OutcomeFallback, time.Since(start))
	return text, nil
}

func (g *CompletionGateway) failed(ctx, callCtx context.Context, err error, start time.Time) (string, error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		slog.WarnContext(ctx, "completion timed out", "timeout", g.timeout)
		g.metrics.ObserveCompletion(metrics.OutcomeTimeout, time.Since(start))
		return TimeoutReply, nil
	}

	slog.ErrorContext(ctx, "completion failed", "error", err)
	g.metrics.ObserveCompletion(metrics.OutcomeError, time.Since(start))
	return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
}

// FlatPrompt renders the profile, the prior turns and the new message as a
// single prompt for the fallback call.
func FlatPrompt(cc *ChatContext, message string) string {
	var b strings.Builder
	b.WriteString(cc.ProfileText)
	b.WriteString("\n\n")
	for i, m := range cc.History {
		if i == 0 && m.Role == RoleUser && m.Text == cc.ProfileText {
			continue
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	b.WriteString(RoleUser)
	b.WriteString(": ")
	b.WriteString(message)
	return b.String()
}
