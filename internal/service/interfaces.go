package service

import (
	"context"

	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/types"
)

// IIdentityService verifies local and federated credentials.
type IIdentityService interface {
	Register(ctx context.Context, username, email, password string) (*models.AccountHandle, error)
	VerifyLocal(ctx context.Context, username, password string) (*models.AccountHandle, error)
	VerifyOrLinkFederated(ctx context.Context, externalID, email, displayName string) (*models.AccountHandle, error)
}

// ISessionManager owns the server-side session lifecycle.
type ISessionManager interface {
	Regenerate(ctx context.Context, previousID string, handle *models.AccountHandle) (*models.Session, error)
	Load(ctx context.Context, id string) (*models.Session, error)
	Touch(ctx context.Context, s *models.Session) (*models.Session, error)
	Destroy(ctx context.Context, id string) error
	EncodeCookie(s *models.Session) (string, error)
	DecodeCookie(value string) (string, error)
}

// IChatService runs conversation turns and reads them back.
type IChatService interface {
	NewSession() string
	Send(ctx context.Context, accountID uint, sessionID, message string) (*models.ConversationTurn, error)
	History(ctx context.Context, accountID uint) ([]models.ConversationTurn, error)
	Sessions(ctx context.Context, accountID uint) ([]models.SessionSummary, error)
	SessionTurns(ctx context.Context, accountID uint, sessionID string) ([]models.ConversationTurn, error)
}

// IProfileService saves and reads health profiles.
type IProfileService interface {
	Save(ctx context.Context, accountID uint, req *types.UpdateHealthProfileRequest) (*models.HealthProfile, error)
	Get(ctx context.Context, accountID uint) (*models.HealthProfile, error)
	Exists(ctx context.Context, accountID uint) (bool, error)
}

// IGoogleProvider performs the Google authorization-code flow.
type IGoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleUser, error)
}

// TextGenerator is an OpenAI-compatible chat model.
type TextGenerator interface {
	// Chat continues history with message under the given system prompt.
	Chat(ctx context.Context, systemPrompt string, history []Message, message string) (string, error)
	// Generate answers a single flat prompt.
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}
