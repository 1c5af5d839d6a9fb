package models

import (
	"time"
)

// Session binds a browser cookie to an authenticated account. It is treated
// as a value: regeneration and sliding expiry produce new values.
type Session struct {
	ID        string    `json:"id"`
	AccountID uint      `json:"accountId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Handle returns the account bound to the session.
func (s *Session) Handle() *AccountHandle {
	return &AccountHandle{ID: s.AccountID, Username: s.Username}
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
