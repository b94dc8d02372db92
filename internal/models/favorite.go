package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is a user-service pairing; presence means favorited.
// Add and remove are idempotent.
type Favorite struct {
	UserID    uuid.UUID `json:"user_id"`
	ServiceID uuid.UUID `json:"service_id"`
	CreatedAt time.Time `json:"created_at"`
}
