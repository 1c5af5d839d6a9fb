package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/vitalchat/backend/internal/service"
)

// MockTextGenerator is a mock implementation of service.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Chat(ctx context.Context, systemPrompt string, history []service.Message, message string) (string, error) {
	args := m.Called(ctx, systemPrompt, history, message)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, prompt)
	return args.String(0), args.Error(1)
}

// MockCompleter is a mock implementation of service.Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, cc *service.ChatContext, message string) (string, error) {
	args := m.Called(ctx, cc, message)
	return args.String(0), args.Error(1)
}
