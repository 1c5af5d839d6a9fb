package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/vitalchat/backend/internal/service"
)

func newCompletionServer(t *testing.T, reply *openai.ChatCompletionResponse, status int, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAITextGeneratorChat(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := newCompletionServer(t, &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "Drink water."}}},
	}, http.StatusOK, &seen)

	gen := service.NewOpenAITextGenerator("test-key", srv.URL+"/", "gemini-2.5-flash")
	history := []service.Message{
		{Role: service.RoleUser, Text: "profile"},
		{Role: service.RoleUser, Text: "hi"},
		{Role: service.RoleModel, Text: "hello"},
	}

	reply, err := gen.Chat(context.Background(), "system", history, "tips?")
	require.NoError(t, err)
	assert.Equal(t, "Drink water.", reply)

	assert.Equal(t, "gemini-2.5-flash", seen.Model)
	assert.InDelta(t, 0.7, seen.Temperature, 0.001)
	require.Len(t, seen.Messages, 5)
	assert.Equal(t, openai.ChatMessageRoleSystem, seen.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, seen.Messages[3].Role)
	assert.Equal(t, "tips?", seen.Messages[4].Content)
}

func TestOpenAITextGeneratorNoChoices(t *testing.T) {
	srv := newCompletionServer(t, &openai.ChatCompletionResponse{}, http.StatusOK, nil)
	gen := service.NewOpenAITextGenerator("test-key", srv.URL, "m")

	reply, err := gen.Generate(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestOpenAITextGeneratorError(t *testing.T) {
	srv := newCompletionServer(t, nil, http.StatusInternalServerError, nil)
	gen := service.NewOpenAITextGenerator("test-key", srv.URL, "m")

	_, err := gen.Generate(context.Background(), "system", "prompt")
	assert.Error(t, err)
}
