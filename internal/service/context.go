package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/repository"
)

// MaxContextTurns is how many stored turns of a session are replayed to the model.
const MaxContextTurns = 24

// Message roles in a chat history.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// NoProfileText is used in place of a profile the user has not saved yet.
const NoProfileText = "No saved health profile. If useful, ask for age, gender, height, weight, allergies, dietary preferences, and goals."

// Message is one entry of a chat history.
type Message struct {
	Role string
	Text string
}

// ChatContext is everything the model sees before the new message.
type ChatContext struct {
	ProfileText string
	// History starts with the profile text as a user entry.
	History []Message
}

// ContextAssembler builds the model context from the profile and the
// current session's stored turns.
type ContextAssembler struct {
	profiles      repository.ProfileStore
	conversations repository.ConversationStore
}

func NewContextAssembler(profiles repository.ProfileStore, conversations repository.ConversationStore) *ContextAssembler {
	return &ContextAssembler{profiles: profiles, conversations: conversations}
}

func (a *ContextAssembler) Assemble(ctx context.Context, accountID uint, sessionID string) (*ChatContext, error) {
	profileText := NoProfileText
	profile, err := a.profiles.Get(ctx, accountID)
	switch {
	case err == nil:
		profileText = RenderProfile(profile)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	turns, err := a.conversations.ListBySession(ctx, accountID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session turns: %w", err)
	}
	if len(turns) > MaxContextTurns {
		turns = turns[len(turns)-MaxContextTurns:]
	}

	history := make([]Message, 0, 1+2*len(turns))
	history = append(history, Message{Role: RoleUser, Text: profileText})
	for _, t := range turns {
		if t.Message != "" {
			history = append(history, Message{Role: RoleUser, Text: t.Message})
		}
		if t.Reply != "" {
			history = append(history, Message{Role: RoleModel, Text: t.Reply})
		}
	}

	return &ChatContext{ProfileText: profileText, History: history}, nil
}

// RenderProfile formats a profile for the model.
func RenderProfile(p *models.HealthProfile) string {
	lines := []string{
		"User Health Profile:",
		"- Age: " + orNA(intString(p.Age)),
		"- Gender: " + orNA(deref(p.Gender)),
		"- Height: " + orNA(floatString(p.HeightCm)) + " cm",
		"- Weight: " + orNA(floatString(p.WeightKg)) + " kg",
		"- Dietary Preferences: " + orNone(p.DietaryPreferences),
		"- Allergies: " + orNone(strings.Join(p.Allergies, ", ")),
		"- Goals: " + orNone(p.Goals),
		"",
		"Use this profile for personalization.",
	}
	return strings.Join(lines, "\n")
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
