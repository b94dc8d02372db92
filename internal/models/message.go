package models

import (
	"time"

	"github.com/google/uuid"
)

// Message type enums.
const (
	MessageTypeText     = "text"
	MessageTypeLocation = "location"
)

// Message is append-only: never updated or deleted.
type Message struct {
	ID          uuid.UUID  `json:"message_id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	ReceiverID  *uuid.UUID `json:"receiver_id,omitempty"`
	ServiceID   *uuid.UUID `json:"service_id,omitempty"`
	SessionID   *uuid.UUID `json:"session_id,omitempty"`
	Body        string     `json:"body"`
	MessageType string     `json:"message_type"`
	IsEmergency bool       `json:"is_emergency"`
	CreatedAt   time.Time  `json:"created_at"`
}
