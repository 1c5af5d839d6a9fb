package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/pageza/vitalchat/backend/config"
	"github.com/pageza/vitalchat/backend/internal/database"
	"github.com/pageza/vitalchat/backend/internal/logging"
	"github.com/pageza/vitalchat/backend/internal/repository"
	"github.com/pageza/vitalchat/backend/internal/service"
	"github.com/pageza/vitalchat/backend/internal/types"
)

type seedUser struct {
	username string
	email    string
	profile  *types.UpdateHealthProfileRequest
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func list(v ...string) *types.StringList {
	l := types.StringList(v)
	return &l
}

// Accounts with and without a health profile, so both post-login paths can
// be tried by hand.
var seedUsers = []seedUser{
	{
		username: "johndoe",
		email:    "john.doe@example.com",
		profile: &types.UpdateHealthProfileRequest{
			Age:                intPtr(34),
			Gender:             strPtr("Male"),
			Height:             floatPtr(180),
			Weight:             floatPtr(82.5),
			DietaryPreferences: strPtr("high protein"),
			Allergies:          list("peanuts"),
			Goals:              strPtr("lose 5 kg before summer"),
		},
	},
	{
		username: "janesmith",
		email:    "jane.smith@example.com",
		profile: &types.UpdateHealthProfileRequest{
			Age:       intPtr(29),
			Gender:    strPtr("Female"),
			Allergies: list("gluten", "shellfish"),
			Goals:     strPtr("run a half marathon"),
		},
	},
	{
		username: "newcomer",
		email:    "newcomer@example.com",
	},
}

func main() {
	logger := logging.Setup(os.Stdout, "info", false)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if config.IsProduction() {
		logger.Error("refusing to seed test users in production")
		os.Exit(1)
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "testpassword123"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewGorm(cfg)
	if err != nil {
		logger.Error("failed to connect to credential store", "error", err)
		os.Exit(1)
	}
	mongoClient, mongoDB, err := database.NewMongo(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to profile store", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(context.Background())

	identity := service.NewIdentityService(repository.NewGormAccountStore(db), nil)
	profiles := service.NewProfileService(repository.NewMongoProfileStore(mongoDB))

	logger.Info("creating test users", "count", len(seedUsers))
	for _, u := range seedUsers {
		handle, err := identity.Register(ctx, u.username, u.email, password)
		if errors.Is(err, service.ErrConflict) {
			logger.Info("user already exists, skipping", "username", u.username)
			continue
		}
		if err != nil {
			logger.Error("failed to create user", "username", u.username, "error", err)
			os.Exit(1)
		}

		if u.profile != nil {
			if _, err := profiles.Save(ctx, handle.ID, u.profile); err != nil {
				logger.Error("failed to save health profile", "username", u.username, "error", err)
				os.Exit(1)
			}
		}
		logger.Info("created user", "username", u.username, "user_id", handle.ID, "with_profile", u.profile != nil)
	}
}
