package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SignupRequest represents the request body for local signup
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for local login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChatRequest represents one user message sent to the assistant
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// UpdateHealthProfileRequest represents the request body for saving a health
// profile. Absent fields leave the stored value untouched.
type UpdateHealthProfileRequest struct {
	Age                *int        `json:"age"`
	Gender             *string     `json:"gender"`
	Height             *float64    `json:"height"`
	Weight             *float64    `json:"weight"`
	DietaryPreferences *string     `json:"dietaryPreferences"`
	Allergies          *StringList `json:"allergies"`
	Goals              *string     `json:"goals"`
}

// StringList decodes either a JSON string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("allergies must be a string or a list of strings")
	}
	*l = list
	return nil
}
