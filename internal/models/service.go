package models

import (
	"time"

	"github.com/google/uuid"
)

// Service category enums.
const (
	CategoryPolice   = "police"
	CategoryFire     = "fire"
	CategoryHealth   = "health"
	CategoryGovt     = "govt"
	CategoryElectric = "electric"
)

// ValidCategories is the set of accepted service categories.
var ValidCategories = map[string]bool{
	CategoryPolice:   true,
	CategoryFire:     true,
	CategoryHealth:   true,
	CategoryGovt:     true,
	CategoryElectric: true,
}

// Service is a directory entry for an emergency contact number.
// Deactivation is soft (is_active flag) so call records keep a valid
// service reference.
type Service struct {
	ID            uuid.UUID  `json:"service_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	PhoneNumber   string     `json:"phone_number"`
	Category      string     `json:"category"`
	PriorityLevel int        `json:"priority_level"`
	IsActive      bool       `json:"is_active"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
