package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/vitalchat/backend/internal/metrics"
	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/repository"
)

const (
	historyLimit  = 20
	snippetLength = 60
)

// Completer produces the assistant reply for a message.
type Completer interface {
	Complete(ctx context.Context, cc *ChatContext, message string) (string, error)
}

// ChatService runs one conversation turn end to end and serves the
// conversation read views.
type ChatService struct {
	assembler     *ContextAssembler
	completer     Completer
	conversations repository.ConversationStore
	metrics       *metrics.Metrics
	now           func() time.Time
}

var _ IChatService = (*ChatService)(nil)

func NewChatService(assembler *ContextAssembler, completer Completer, conversations repository.ConversationStore, m *metrics.Metrics) *ChatService {
	return &ChatService{
		assembler:     assembler,
		completer:     completer,
		conversations: conversations,
		metrics:       m,
		now:           time.Now,
	}
}

func (s *ChatService) NewSession() string {
	return uuid.NewString()
}

// Send stores exactly one turn when a reply was obtained and none otherwise.
func (s *ChatService) Send(ctx context.Context, accountID uint, sessionID, message string) (*models.ConversationTurn, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if strings.TrimSpace(sessionID) == "" {
		sessionID = s.NewSession()
	}

	cc, err := s.assembler.Assemble(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}

	reply, err := s.completer.Complete(ctx, cc, message)
	if err != nil {
		return nil, err
	}

	turn := &models.ConversationTurn{
		AccountID: accountID,
		SessionID: sessionID,
		Message:   message,
		Reply:     reply,
		Timestamp: s.now().UTC(),
	}
	if err := s.conversations.Append(ctx, turn); err != nil {
		return nil, fmt.Errorf("failed to store chat turn: %w", err)
	}

	s.metrics.ChatTurn()
	slog.DebugContext(ctx, "chat turn stored", "account_id", accountID, "session_id", sessionID)
	return turn, nil
}

// History returns the most recent turns across all sessions, newest first.
func (s *ChatService) History(ctx context.Context, accountID uint) ([]models.ConversationTurn, error) {
	turns, err := s.conversations.ListRecent(ctx, accountID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	return turns, nil
}

// Sessions lists conversation sessions, most recently active first.
func (s *ChatService) Sessions(ctx context.Context, accountID uint) ([]models.SessionSummary, error) {
	summaries, err := s.conversations.ListSessions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat sessions: %w", err)
	}
	for i := range summaries {
		summaries[i].Snippet = Snippet(summaries[i].LastMessage)
	}
	return summaries, nil
}

// SessionTurns returns one session's turns, oldest first.
func (s *ChatService) SessionTurns(ctx context.Context, accountID uint, sessionID string) ([]models.ConversationTurn, error) {
	turns, err := s.conversations.ListBySession(ctx, accountID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session messages: %w", err)
	}
	return turns, nil
}

// Snippet shortens a message for the session list.
func Snippet(message string) string {
	runes := []rune(message)
	if len(runes) <= snippetLength {
		return message
	}
	return strings.TrimSpace(string(runes[:snippetLength])) + "..."
}
