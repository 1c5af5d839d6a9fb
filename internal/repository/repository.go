// Package repository holds the storage contracts of the chat backend and their
// implementations: accounts live in a relational database via gorm, health
// profiles and conversation turns live in MongoDB.
package repository

import (
	"context"
	"errors"

	"github.com/pageza/vitalchat/backend/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique key.
	ErrDuplicate = errors.New("duplicate key")
)

// AccountStore is the credential store.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	// FindByGoogleIDOrEmail matches on the federated id, or on the email when
	// email is not empty.
	FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
}

// ProfileStore keeps one health profile per account.
type ProfileStore interface {
	Get(ctx context.Context, accountID uint) (*models.HealthProfile, error)
	// Upsert applies update atomically, creating the profile when missing.
	Upsert(ctx context.Context, accountID uint, update *models.HealthProfileUpdate) (*models.HealthProfile, error)
}

// ConversationStore is an append-only log of conversation turns.
type ConversationStore interface {
	Append(ctx context.Context, turn *models.ConversationTurn) error
	// ListBySession returns the turns of one session, oldest first.
	ListBySession(ctx context.Context, accountID uint, sessionID string) ([]models.ConversationTurn, error)
	// ListRecent returns up to limit turns across sessions, newest first.
	ListRecent(ctx context.Context, accountID uint, limit int64) ([]models.ConversationTurn, error)
	// ListSessions returns one summary per session, most recently active first.
	ListSessions(ctx context.Context, accountID uint) ([]models.SessionSummary, error)
}

// Pinger is implemented by stores that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
