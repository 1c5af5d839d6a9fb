package models

import (
	"time"
)

// Account is a durable login identity. Username, Email and GoogleID are
// nullable so that the unique indexes only apply to values that are present.
type Account struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     *string   `gorm:"size:50;uniqueIndex" json:"username,omitempty"`
	Email        *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	GoogleID     *string   `gorm:"column:google_id;size:64;uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// HasPassword reports whether local login is possible for the account.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// Handle returns the minimal identity kept in a session.
func (a *Account) Handle() *AccountHandle {
	h := &AccountHandle{ID: a.ID}
	if a.Username != nil {
		h.Username = *a.Username
	}
	return h
}

// AccountHandle is the identity bound to an authenticated session.
type AccountHandle struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
