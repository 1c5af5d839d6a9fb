package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/vitalchat/backend/internal/models"
)

// GormAccountStore implements AccountStore on top of gorm.
type GormAccountStore struct {
	db *gorm.DB
}

var _ AccountStore = (*GormAccountStore)(nil)

// NewGormAccountStore creates a new GormAccountStore instance
func NewGormAccountStore(db *gorm.DB) *GormAccountStore {
	return &GormAccountStore{db: db}
}

func (s *GormAccountStore) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormAccountStore) FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.Account, error) {
	query := s.db.WithContext(ctx).Where("google_id = ?", googleID)
	if email != "" {
		query = query.Or("email = ?", email)
	}

	var account models.Account
	if err := query.Order("id").First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormAccountStore) Create(ctx context.Context, account *models.Account) error {
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Ping checks that the underlying connection pool is reachable.
func (s *GormAccountStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicate(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// isDuplicate recognises unique violations from postgres and sqlite, with or
// without gorm's error translation enabled.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
