package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const defaultTemperature = 0.7

// OpenAITextGenerator talks to any OpenAI-compatible chat completions API.
// By default it points at Gemini's compatibility endpoint.
type OpenAITextGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

var _ TextGenerator = (*OpenAITextGenerator)(nil)

func NewOpenAITextGenerator(apiKey, baseURL, model string) *OpenAITextGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	slog.Info("initializing text generator", "model", model, "base_url", cfg.BaseURL)
	return &OpenAITextGenerator{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: defaultTemperature,
	}
}

func (g *OpenAITextGenerator) Chat(ctx context.Context, systemPrompt string, history []Message, message string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
	return g.complete(ctx, msgs)
}

func (g *OpenAITextGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return g.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

// complete returns an empty string, not an error, when the API answers
// without choices.
func (g *OpenAITextGenerator) complete(ctx context.Context, msgs []openai.ChatCompletionMessage) (string, error) {
	slog.DebugContext(ctx, "requesting completion", "model", g.model, "messages", len(msgs))
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.WarnContext(ctx, "completion returned no choices")
		return "", nil
	}
	slog.DebugContext(ctx, "received completion", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
