package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/repository"
	"github.com/pageza/vitalchat/backend/internal/types"
)

// ProfileService validates and stores health profiles.
type ProfileService struct {
	profiles repository.ProfileStore
}

var _ IProfileService = (*ProfileService)(nil)

func NewProfileService(profiles repository.ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Save applies the fields present in req. Fields left out of the request
// keep their stored value.
func (s *ProfileService) Save(ctx context.Context, accountID uint, req *types.UpdateHealthProfileRequest) (*models.HealthProfile, error) {
	update, err := buildProfileUpdate(req)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Upsert(ctx, accountID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update health profile: %w", err)
	}
	if profile.Allergies == nil {
		profile.Allergies = []string{}
	}
	return profile, nil
}

// Get returns nil without error when the account has no profile.
func (s *ProfileService) Get(ctx context.Context, accountID uint) (*models.HealthProfile, error) {
	profile, err := s.profiles.Get(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get health profile: %w", err)
	}
	if profile.Allergies == nil {
		profile.Allergies = []string{}
	}
	return profile, nil
}

func (s *ProfileService) Exists(ctx context.Context, accountID uint) (bool, error) {
	profile, err := s.Get(ctx, accountID)
	if err != nil {
		return false, err
	}
	return profile != nil, nil
}

func buildProfileUpdate(req *types.UpdateHealthProfileRequest) (*models.HealthProfileUpdate, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty profile", ErrValidation)
	}

	update := &models.HealthProfileUpdate{
		Age:      req.Age,
		HeightCm: req.Height,
		WeightKg: req.Weight,
	}
	if req.Age != nil && *req.Age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", ErrValidation)
	}
	if req.Height != nil && *req.Height < 0 {
		return nil, fmt.Errorf("%w: height must not be negative", ErrValidation)
	}
	if req.Weight != nil && *req.Weight < 0 {
		return nil, fmt.Errorf("%w: weight must not be negative", ErrValidation)
	}

	if req.Gender != nil {
		gender := strings.TrimSpace(*req.Gender)
		if !models.ValidGender(gender) {
			return nil, fmt.Errorf("%w: gender must be one of Male, Female, Other", ErrValidation)
		}
		update.Gender = &gender
	}
	if req.DietaryPreferences != nil {
		prefs := strings.TrimSpace(*req.DietaryPreferences)
		update.DietaryPreferences = &prefs
	}
	if req.Goals != nil {
		goals := strings.TrimSpace(*req.Goals)
		update.Goals = &goals
	}
	if req.Allergies != nil {
		update.Allergies = NormalizeAllergies(*req.Allergies)
		update.SetAllergies = true
	}
	return update, nil
}

// NormalizeAllergies trims entries and drops blanks, keeping order.
func NormalizeAllergies(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
