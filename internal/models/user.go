package models

import (
	"time"

	"github.com/google/uuid"
)

// Role enums.
const (
	RoleUser   = "user"
	RoleHelper = "helper"
	RoleAdmin  = "admin"
)

// Coin economy constants. Every placed call debits its cost from the
// caller's balance in the same transaction that writes the call record.
const (
	DefaultStartingBalance = 100
	CallCost               = 20
	EmergencyCallCost      = 50
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNumber  string    `json:"phone_number"`
	Role         string    `json:"role"`
	CoinBalance  int       `json:"coin_balance"`
	LoveCount    int       `json:"love_count"`
	CopyCount    int       `json:"copy_count"`
	LocationLat  *float64  `json:"location_lat,omitempty"`
	LocationLng  *float64  `json:"location_lng,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
