package testhelpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/repository"
)

// MemoryAccountStore is an in-memory repository.AccountStore with the same
// uniqueness rules as the SQL schema.
type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts []models.Account
	nextID   uint

	// CreateErr, when set, is returned by Create instead of storing.
	CreateErr error
}

var _ repository.AccountStore = (*MemoryAccountStore)(nil)

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{nextID: 1}
}

func (s *MemoryAccountStore) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username != nil && *a.Username == username {
			found := a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemoryAccountStore) FindByGoogleIDOrEmail(_ context.Context, googleID, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.GoogleID != nil && *a.GoogleID == googleID {
			found := a
			return &found, nil
		}
		if email != "" && a.Email != nil && *a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemoryAccountStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, a := range s.accounts {
		if sameValue(a.Username, account.Username) || sameValue(a.Email, account.Email) || sameValue(a.GoogleID, account.GoogleID) {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	account.ID = s.nextID
	account.CreatedAt, account.UpdatedAt = now, now
	s.nextID++
	s.accounts = append(s.accounts, *account)
	return nil
}

// Count returns the number of stored accounts.
func (s *MemoryAccountStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

func sameValue(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

// MemoryProfileStore is an in-memory repository.ProfileStore.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[uint]models.HealthProfile

	// GetErr, when set, is returned by Get.
	GetErr error
}

var _ repository.ProfileStore = (*MemoryProfileStore)(nil)

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: map[uint]models.HealthProfile{}}
}

func (s *MemoryProfileStore) Get(_ context.Context, accountID uint) (*models.HealthProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	p, ok := s.profiles[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryProfileStore) Upsert(_ context.Context, accountID uint, update *models.HealthProfileUpdate) (*models.HealthProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p, ok := s.profiles[accountID]
	if !ok {
		p = models.HealthProfile{AccountID: accountID, Allergies: []string{}, CreatedAt: now}
	}
	if update.Age != nil {
		p.Age = update.Age
	}
	if update.Gender != nil {
		p.Gender = update.Gender
	}
	if update.HeightCm != nil {
		p.HeightCm = update.HeightCm
	}
	if update.WeightKg != nil {
		p.WeightKg = update.WeightKg
	}
	if update.DietaryPreferences != nil {
		p.DietaryPreferences = *update.DietaryPreferences
	}
	if update.Goals != nil {
		p.Goals = *update.Goals
	}
	if update.SetAllergies {
		p.Allergies = append([]string{}, update.Allergies...)
	}
	p.UpdatedAt = now
	s.profiles[accountID] = p
	return &p, nil
}

// Put stores p as-is.
func (s *MemoryProfileStore) Put(p models.HealthProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.AccountID] = p
}

// MemoryConversationStore is an in-memory repository.ConversationStore.
type MemoryConversationStore struct {
	mu    sync.Mutex
	turns []models.ConversationTurn

	// AppendErr, when set, is returned by Append instead of storing.
	AppendErr error
}

var _ repository.ConversationStore = (*MemoryConversationStore)(nil)

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{}
}

func (s *MemoryConversationStore) Append(_ context.Context, turn *models.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.turns = append(s.turns, *turn)
	return nil
}

func (s *MemoryConversationStore) ListBySession(_ context.Context, accountID uint, sessionID string) ([]models.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ConversationTurn{}
	for _, t := range s.turns {
		if t.AccountID == accountID && t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryConversationStore) ListRecent(_ context.Context, accountID uint, limit int64) ([]models.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ConversationTurn{}
	for _, t := range s.turns {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryConversationStore) ListSessions(ctx context.Context, accountID uint) ([]models.SessionSummary, error) {
	recent, _ := s.ListRecent(ctx, accountID, 0)
	seen := map[string]bool{}
	out := []models.SessionSummary{}
	for _, t := range recent {
		if seen[t.SessionID] {
			continue
		}
		seen[t.SessionID] = true
		out = append(out, models.SessionSummary{
			SessionID:     t.SessionID,
			LastTimestamp: t.Timestamp,
			LastMessage:   t.Message,
		})
	}
	return out, nil
}

// All returns a copy of every stored turn in insertion order.
func (s *MemoryConversationStore) All() []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ConversationTurn(nil), s.turns...)
}
