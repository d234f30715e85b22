package services

import "errors"

// Domain errors produced by the auth state machines. Handlers map these
// 1:1 to HTTP status codes; anything else is an infrastructure failure
// surfaced as an opaque 500.
var (
	ErrMissingFields          = errors.New("username, email and password are required")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrUsernameAlreadyTaken   = errors.New("username is already taken")
	ErrUserDoesNotExist       = errors.New("user does not exist")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrUserNotVerified        = errors.New("account verification required")
	ErrUserAlreadyVerified    = errors.New("account already verified")
	ErrResendLimitReached     = errors.New("verification email resend limit reached")
	ErrInvalidOrExpiredToken  = errors.New("token is invalid or has expired")
	ErrSendEmail              = errors.New("failed to send email")
)
