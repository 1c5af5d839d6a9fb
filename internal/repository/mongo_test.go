package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/repository"
	"github.com/pageza/vitalchat/backend/internal/testhelpers"
)

func TestMongoStores(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	db := testhelpers.SetupMongo(t)
	ctx := context.Background()

	t.Run("profiles", func(t *testing.T) {
		store := repository.NewMongoProfileStore(db)
		require.NoError(t, store.EnsureIndexes(ctx))

		_, err := store.Get(ctx, 1)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		age := 30
		gender := models.GenderFemale
		created, err := store.Upsert(ctx, 1, &models.HealthProfileUpdate{Age: &age, Gender: &gender})
		require.NoError(t, err)
		assert.Equal(t, uint(1), created.AccountID)
		assert.Equal(t, 30, *created.Age)
		assert.Empty(t, created.Allergies)
		assert.False(t, created.CreatedAt.IsZero())

		goals := "run a marathon"
		updated, err := store.Upsert(ctx, 1, &models.HealthProfileUpdate{
			Goals:        &goals,
			Allergies:    []string{"peanuts", "shellfish"},
			SetAllergies: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 30, *updated.Age, "fields absent from the update are kept")
		assert.Equal(t, "run a marathon", updated.Goals)
		assert.Equal(t, []string{"peanuts", "shellfish"}, updated.Allergies)
		assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

		got, err := store.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.GenderFemale, *got.Gender)
		assert.NoError(t, store.Ping(ctx))
	})

	t.Run("conversations", func(t *testing.T) {
		store := repository.NewMongoConversationStore(db)
		require.NoError(t, store.EnsureIndexes(ctx))

		base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		turns := []models.ConversationTurn{
			{AccountID: 7, SessionID: "s1", Message: "first", Reply: "r1", Timestamp: base},
			{AccountID: 7, SessionID: "s2", Message: "second", Reply: "r2", Timestamp: base.Add(time.Minute)},
			{AccountID: 7, SessionID: "s1", Message: "third", Reply: "r3", Timestamp: base.Add(2 * time.Minute)},
			{AccountID: 8, SessionID: "s1", Message: "other user", Reply: "r", Timestamp: base.Add(3 * time.Minute)},
		}
		for i := range turns {
			require.NoError(t, store.Append(ctx, &turns[i]))
		}

		session, err := store.ListBySession(ctx, 7, "s1")
		require.NoError(t, err)
		require.Len(t, session, 2)
		assert.Equal(t, "first", session[0].Message)
		assert.Equal(t, "third", session[1].Message)

		recent, err := store.ListRecent(ctx, 7, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "third", recent[0].Message)
		assert.Equal(t, "second", recent[1].Message)

		sessions, err := store.ListSessions(ctx, 7)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, "s1", sessions[0].SessionID)
		assert.Equal(t, "third", sessions[0].LastMessage)
		assert.Equal(t, "s2", sessions[1].SessionID)

		none, err := store.ListSessions(ctx, 99)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
