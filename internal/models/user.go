package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database.
type UserDB struct {
	UserID                  uuid.UUID  `json:"user_id" db:"user_id"`                                     // Primary key
	Username                string     `json:"username" db:"username"`                                   // Unique username
	Email                   string     `json:"email" db:"email"`                                         // Unique email
	PasswordHash            string     `json:"-" db:"password_hash"`                                     // bcrypt hash, never serialized
	IsVerified              bool       `json:"is_verified" db:"is_verified"`                             // Email ownership confirmed
	VerificationToken       *string    `json:"-" db:"verification_token"`                                // Opaque email verification token, no expiry
	VerificationAttempts    int        `json:"verification_attempts" db:"verification_attempts"`         // Resend throttle counter
	LastVerificationAttempt *time.Time `json:"last_verification_attempt" db:"last_verification_attempt"` // Throttle window anchor
	PasswordResetToken      *string    `json:"-" db:"password_reset_token"`                              // Opaque reset token, single-use
	PasswordResetExpires    *time.Time `json:"-" db:"password_reset_expires"`                            // Reset token deadline
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`                               // Creation timestamp
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`                               // Last update timestamp
}
