package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/models"
	"github.com/avdeev2017/gw-auth-service/internal/repositories"
)

// DefaultMinPasswordLength applies when no explicit policy is configured.
const DefaultMinPasswordLength = 8

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsernameOrEmail(ctx context.Context, username *string, email *string) (*models.UserDB, error)
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// UserWriter defines the insert operation for new users.
type UserWriter interface {
	Save(ctx context.Context, username, email, passwordHash, verificationToken string) (uuid.UUID, error)
}

// TokenGenerator produces opaque single-use tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

// JWTGenerator defines an interface for generating session tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, error)
}

// MailSender delivers account emails.
type MailSender interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}

// AuthService handles registration and login.
type AuthService struct {
	reader         UserReader
	writer         UserWriter
	tokens         TokenGenerator
	jwt            JWTGenerator
	mail           MailSender
	kafkaWriter    KafkaWriter
	minPasswordLen int
}

// AuthOpt configures an AuthService.
type AuthOpt func(*AuthService)

// WithMinPasswordLength overrides the minimum accepted password length.
func WithMinPasswordLength(n int) AuthOpt {
	return func(svc *AuthService) {
		svc.minPasswordLen = n
	}
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	reader UserReader,
	writer UserWriter,
	tokens TokenGenerator,
	jwt JWTGenerator,
	mail MailSender,
	kafkaWriter KafkaWriter,
	opts ...AuthOpt,
) *AuthService {
	svc := &AuthService{
		reader:         reader,
		writer:         writer,
		tokens:         tokens,
		jwt:            jwt,
		mail:           mail,
		kafkaWriter:    kafkaWriter,
		minPasswordLen: DefaultMinPasswordLength,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register creates a new unverified user and sends the verification email.
// The insert is not rolled back when the email cannot be delivered: the
// returned id is valid and the error wraps ErrSendEmail so the caller can
// report the partial outcome.
func (svc *AuthService) Register(ctx context.Context, username, email, password string) (uuid.UUID, error) {
	if username == "" || email == "" || password == "" {
		return uuid.Nil, ErrMissingFields
	}
	if len(password) < svc.minPasswordLen {
		return uuid.Nil, ErrPasswordTooShort
	}

	existing, err := svc.reader.GetByUsernameOrEmail(ctx, &username, &email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return uuid.Nil, err
	}
	if existing != nil {
		// Email collision wins when both fields collide.
		if existing.Email == email {
			logger.Log.Infow("email already registered", "email", email)
			return uuid.Nil, ErrEmailAlreadyRegistered
		}
		logger.Log.Infow("username already taken", "username", username)
		return uuid.Nil, ErrUsernameAlreadyTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return uuid.Nil, err
	}

	verificationToken, err := svc.tokens.Generate()
	if err != nil {
		logger.Log.Errorw("failed to generate verification token", "err", err)
		return uuid.Nil, err
	}

	userID, err := svc.writer.Save(ctx, username, email, string(hashedPassword), verificationToken)
	if err != nil {
		// A concurrent registration can slip past the availability check;
		// the unique index is the final arbiter.
		switch {
		case errors.Is(err, repositories.ErrEmailTaken):
			logger.Log.Infow("email already registered", "email", email)
			return uuid.Nil, ErrEmailAlreadyRegistered
		case errors.Is(err, repositories.ErrUsernameTaken):
			logger.Log.Infow("username already taken", "username", username)
			return uuid.Nil, ErrUsernameAlreadyTaken
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return uuid.Nil, err
	}

	publishAuthEvent(ctx, svc.kafkaWriter, models.EventUserRegistered, userID, email)

	if err := svc.mail.SendVerificationEmail(ctx, email, verificationToken); err != nil {
		logger.Log.Errorw("failed to send verification email", "email", email, "err", err)
		return userID, fmt.Errorf("%w: %v", ErrSendEmail, err)
	}

	return userID, nil
}

// Login authenticates a user and returns a session token. Unverified
// users cannot obtain a session even with correct credentials.
func (svc *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Infow("user does not exist", "email", email)
		return "", ErrUserDoesNotExist
	}

	if !user.IsVerified {
		logger.Log.Infow("login attempt on unverified account", "email", email)
		return "", ErrUserNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Infow("invalid credentials", "email", email)
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.UserID)
	if err != nil {
		logger.Log.Errorw("failed to generate session token", "err", err)
		return "", err
	}

	return token, nil
}
