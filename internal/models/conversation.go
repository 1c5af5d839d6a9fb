package models

import (
	"time"
)

// ConversationTurn is one stored user message and assistant reply. Turns are
// written once and never updated.
type ConversationTurn struct {
	AccountID uint      `bson:"userId" json:"userId"`
	SessionID string    `bson:"sessionId" json:"sessionId"`
	Message   string    `bson:"message" json:"message"`
	Reply     string    `bson:"reply" json:"reply"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// SessionSummary describes one conversation session in the session list.
type SessionSummary struct {
	SessionID     string    `bson:"_id" json:"sessionId"`
	LastTimestamp time.Time `bson:"lastTimestamp" json:"lastTimestamp"`
	LastMessage   string    `bson:"lastMessage" json:"-"`
	Snippet       string    `bson:"-" json:"snippet"`
}
