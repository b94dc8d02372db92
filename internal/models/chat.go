package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat session status enums.
const (
	SessionStatusWaiting = "waiting"
	SessionStatusActive  = "active"
	SessionStatusClosed  = "closed"
)

type ChatSession struct {
	ID        uuid.UUID  `json:"session_id"`
	UserID    uuid.UUID  `json:"user_id"`
	HelperID  *uuid.UUID `json:"helper_id,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// WaitingSession is a session joined with its user for the helper queue.
type WaitingSession struct {
	SessionID    uuid.UUID `json:"session_id"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Status       string    `json:"status"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
