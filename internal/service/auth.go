package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/vitalchat/backend/internal/metrics"
	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/repository"
)

const (
	bcryptCost        = 12
	maxDerivedNameLen = 20
)

// IdentityService verifies local passwords and links Google identities to
// accounts in the credential store.
type IdentityService struct {
	accounts repository.AccountStore
	metrics  *metrics.Metrics
}

var _ IIdentityService = (*IdentityService)(nil)

func NewIdentityService(accounts repository.AccountStore, m *metrics.Metrics) *IdentityService {
	return &IdentityService{accounts: accounts, metrics: m}
}

// Register creates a local account. The email is optional.
func (s *IdentityService) Register(ctx context.Context, username, email, password string) (*models.AccountHandle, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	account := &models.Account{Username: &username, PasswordHash: &hashStr}
	if email != "" {
		account.Email = &email
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.InfoContext(ctx, "account registered", "account_id", account.ID)
	return account.Handle(), nil
}

// VerifyLocal checks a username and password. Unknown usernames, accounts
// without a password and wrong passwords all yield ErrInvalidCredentials.
func (s *IdentityService) VerifyLocal(ctx context.Context, username, password string) (*models.AccountHandle, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.AuthAttempt("local", false)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !account.HasPassword() {
		s.metrics.AuthAttempt("local", false)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password)); err != nil {
		s.metrics.AuthAttempt("local", false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.AuthAttempt("local", true)
	return account.Handle(), nil
}

// VerifyOrLinkFederated returns the account matching the Google id or email,
// creating one on first sight. It performs one read and at most one write.
func (s *IdentityService) VerifyOrLinkFederated(ctx context.Context, externalID, email, displayName string) (*models.AccountHandle, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: missing federated id", ErrValidation)
	}

	account, err := s.accounts.FindByGoogleIDOrEmail(ctx, externalID, email)
	if err == nil {
		s.metrics.AuthAttempt("google", true)
		return account.Handle(), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up federated account: %w", err)
	}

	username := DeriveUsername(displayName, externalID)
	account = &models.Account{Username: &username, GoogleID: &externalID}
	if email != "" {
		account.Email = &email
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		s.metrics.AuthAttempt("google", false)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create federated account: %w", err)
	}

	s.metrics.AuthAttempt("google", true)
	slog.InfoContext(ctx, "federated account created", "account_id", account.ID)
	return account.Handle(), nil
}

// DeriveUsername strips whitespace from the display name, lowercases it and
// keeps the first 20 characters, falling back to user_<externalID>.
func DeriveUsername(displayName, externalID string) string {
	var b strings.Builder
	for _, r := range displayName {
		if !unicode.IsSpace(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	name := []rune(b.String())
	if len(name) > maxDerivedNameLen {
		name = name[:maxDerivedNameLen]
	}
	if len(name) == 0 {
		return "user_" + externalID
	}
	return string(name)
}
