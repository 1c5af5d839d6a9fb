package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/service"
	"github.com/pageza/vitalchat/backend/internal/testhelpers"
)

func seedTurns(t *testing.T, store *testhelpers.MemoryConversationStore, accountID uint, sessionID string, n int) {
	t.Helper()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, store.Append(context.Background(), &models.ConversationTurn{
			AccountID: accountID,
			SessionID: sessionID,
			Message:   fmt.Sprintf("message %d", i),
			Reply:     fmt.Sprintf("reply %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestAssembleKeepsLastTurns(t *testing.T) {
	profiles := testhelpers.NewMemoryProfileStore()
	conversations := testhelpers.NewMemoryConversationStore()
	seedTurns(t, conversations, 1, "s1", 30)
	seedTurns(t, conversations, 1, "other", 3)

	cc, err := service.NewContextAssembler(profiles, conversations).Assemble(context.Background(), 1, "s1")
	require.NoError(t, err)

	assert.Equal(t, service.NoProfileText, cc.ProfileText)
	require.Len(t, cc.History, 1+2*service.MaxContextTurns)
	assert.Equal(t, service.Message{Role: service.RoleUser, Text: service.NoProfileText}, cc.History[0])
	assert.Equal(t, service.Message{Role: service.RoleUser, Text: "message 6"}, cc.History[1])
	assert.Equal(t, service.Message{Role: service.RoleModel, Text: "reply 6"}, cc.History[2])
	assert.Equal(t, "reply 29", cc.History[len(cc.History)-1].Text)
}

func TestAssembleSkipsEmptyTexts(t *testing.T) {
	conversations := testhelpers.NewMemoryConversationStore()
	require.NoError(t, conversations.Append(context.Background(), &models.ConversationTurn{
		AccountID: 1, SessionID: "s", Message: "hi", Reply: "", Timestamp: time.Now(),
	}))

	cc, err := service.NewContextAssembler(testhelpers.NewMemoryProfileStore(), conversations).
		Assemble(context.Background(), 1, "s")
	require.NoError(t, err)
	assert.Len(t, cc.History, 2)
}

func TestAssembleProfileError(t *testing.T) {
	profiles := testhelpers.NewMemoryProfileStore()
	profiles.GetErr = errors.New("mongo unavailable")

	_, err := service.NewContextAssembler(profiles, testhelpers.NewMemoryConversationStore()).
		Assemble(context.Background(), 1, "s")
	assert.Error(t, err)
}

func TestRenderProfile(t *testing.T) {
	age := 34
	gender := models.GenderMale
	height := 180.5
	weight := 82.0

	full := service.RenderProfile(&models.HealthProfile{
		Age:                &age,
		Gender:             &gender,
		HeightCm:           &height,
		WeightKg:           &weight,
		DietaryPreferences: "vegetarian",
		Allergies:          []string{"nuts", "gluten"},
		Goals:              "lose 5 kg",
	})
	assert.Equal(t, `User Health Profile:
- Age: 34
- Gender: Male
- Height: 180.5 cm
- Weight: 82 kg
- Dietary Preferences: vegetarian
- Allergies: nuts, gluten
- Goals: lose 5 kg

Use this profile for personalization.`, full)

	empty := service.RenderProfile(&models.HealthProfile{})
	assert.Contains(t, empty, "- Age: N/A")
	assert.Contains(t, empty, "- Gender: N/A")
	assert.Contains(t, empty, "- Height: N/A cm")
	assert.Contains(t, empty, "- Allergies: None")
	assert.Contains(t, empty, "- Goals: None")
}

func TestAssembleUsesProfile(t *testing.T) {
	profiles := testhelpers.NewMemoryProfileStore()
	age := 40
	profiles.Put(models.HealthProfile{AccountID: 2, Age: &age})

	cc, err := service.NewContextAssembler(profiles, testhelpers.NewMemoryConversationStore()).
		Assemble(context.Background(), 2, "s")
	require.NoError(t, err)
	assert.Contains(t, cc.ProfileText, "- Age: 40")
	assert.Equal(t, cc.ProfileText, cc.History[0].Text)
}
