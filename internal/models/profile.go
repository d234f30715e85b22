package models

import "github.com/google/uuid"

// Profile is the public projection of a user record: only the fields
// safe to return to the authenticated owner.
type Profile struct {
	UserID   uuid.UUID `json:"id" db:"user_id"`
	Username string    `json:"username" db:"username"`
	Email    string    `json:"email" db:"email"`
}
