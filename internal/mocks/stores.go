package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/vitalchat/backend/internal/models"
)

// MockAccountStore is a mock implementation of repository.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountStore) FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.Account, error) {
	args := m.Called(ctx, googleID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountStore) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockConversationStore is a mock implementation of repository.ConversationStore
type MockConversationStore struct {
	mock.Mock
}

func (m *MockConversationStore) Append(ctx context.Context, turn *models.ConversationTurn) error {
	args := m.Called(ctx, turn)
	return args.Error(0)
}

func (m *MockConversationStore) ListBySession(ctx context.Context, accountID uint, sessionID string) ([]models.ConversationTurn, error) {
	args := m.Called(ctx, accountID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConversationTurn), args.Error(1)
}

func (m *MockConversationStore) ListRecent(ctx context.Context, accountID uint, limit int64) ([]models.ConversationTurn, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConversationTurn), args.Error(1)
}

func (m *MockConversationStore) ListSessions(ctx context.Context, accountID uint) ([]models.SessionSummary, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionSummary), args.Error(1)
}

// MockSessionStore is a mock implementation of service.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Save(ctx context.Context, s *models.Session, ttl time.Duration) error {
	args := m.Called(ctx, s, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
