package models

import (
	"time"

	"github.com/google/uuid"
)

// Auth event types published to Kafka.
const (
	EventUserRegistered = "user_registered"
	EventEmailVerified  = "email_verified"
	EventPasswordReset  = "password_reset"
)

// AuthEvent is the message published for account lifecycle changes.
type AuthEvent struct {
	EventID   uuid.UUID `json:"event_id"`          // Unique event id
	Type      string    `json:"type"`              // One of the Event* constants
	UserID    uuid.UUID `json:"user_id,omitempty"` // Affected user, if known
	Email     string    `json:"email,omitempty"`   // Affected email, if known
	Timestamp time.Time `json:"timestamp"`         // Event creation time
}
