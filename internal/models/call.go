package models

import (
	"time"

	"github.com/google/uuid"
)

// Call type and status enums.
const (
	CallTypeDirect    = "direct"
	CallTypeEmergency = "emergency"

	CallStatusCompleted = "completed"
	CallStatusInitiated = "initiated"
)

// CallRecord is immutable once written. It is created only by the call
// ledger, in the same transaction as the balance debit, and removed only
// by the per-user reset operation.
type CallRecord struct {
	ID              uuid.UUID `json:"call_id"`
	UserID          uuid.UUID `json:"user_id"`
	ServiceID       uuid.UUID `json:"service_id"`
	CallType        string    `json:"call_type"`
	CallStatus      string    `json:"call_status"`
	Cost            int       `json:"cost"`
	CallerLat       *float64  `json:"caller_lat,omitempty"`
	CallerLng       *float64  `json:"caller_lng,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// HistoryEntry is a call record joined with its service for the history view.
type HistoryEntry struct {
	CallID          uuid.UUID `json:"call_id"`
	CallType        string    `json:"call_type"`
	CallStatus      string    `json:"call_status"`
	Cost            int       `json:"cost"`
	CallTime        time.Time `json:"call_time"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	ServiceName     string    `json:"service_name"`
	PhoneNumber     string    `json:"phone_number"`
	Category        string    `json:"category"`
}
