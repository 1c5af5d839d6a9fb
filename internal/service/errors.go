package service

import "errors"

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned for any failed local login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrConflict is returned when a username, email or federated id is taken.
	ErrConflict = errors.New("account already exists")
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRegenerate is returned when a session could not be rotated.
	ErrSessionRegenerate = errors.New("failed to regenerate session")
	// ErrCompletionFailed is returned when the text generator fails outright.
	ErrCompletionFailed = errors.New("failed to get a response from the assistant")
)
