package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/models"
)

// ResetWriter defines the mutations of the password reset state machine.
type ResetWriter interface {
	// SetPasswordResetToken stores a fresh token with a one hour deadline.
	SetPasswordResetToken(ctx context.Context, userID uuid.UUID, resetToken string) error
	// ConsumePasswordResetToken atomically replaces the password hash and
	// clears the token; false means the token is unknown or expired.
	ConsumePasswordResetToken(ctx context.Context, resetToken, passwordHash string) (uuid.UUID, bool, error)
}

// PasswordResetService governs issuance and one-time consumption of
// password reset tokens.
type PasswordResetService struct {
	reader         UserReader
	writer         ResetWriter
	tokens         TokenGenerator
	mail           MailSender
	kafkaWriter    KafkaWriter
	minPasswordLen int
}

// ResetOpt configures a PasswordResetService.
type ResetOpt func(*PasswordResetService)

// WithResetMinPasswordLength overrides the minimum accepted password length.
func WithResetMinPasswordLength(n int) ResetOpt {
	return func(svc *PasswordResetService) {
		svc.minPasswordLen = n
	}
}

// NewPasswordResetService creates a new PasswordResetService instance.
func NewPasswordResetService(
	reader UserReader,
	writer ResetWriter,
	tokens TokenGenerator,
	mail MailSender,
	kafkaWriter KafkaWriter,
	opts ...ResetOpt,
) *PasswordResetService {
	svc := &PasswordResetService{
		reader:         reader,
		writer:         writer,
		tokens:         tokens,
		mail:           mail,
		kafkaWriter:    kafkaWriter,
		minPasswordLen: DefaultMinPasswordLength,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RequestPasswordReset issues a reset token and emails the reset link.
// An unknown email is NOT an error: the handler answers with the same
// generic message either way so account existence never leaks. Storage
// and mail failures still propagate.
func (svc *PasswordResetService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return err
	}
	if user == nil {
		logger.Log.Infow("password reset requested for unknown email")
		return nil
	}

	resetToken, err := svc.tokens.Generate()
	if err != nil {
		logger.Log.Errorw("failed to generate reset token", "err", err)
		return err
	}

	if err := svc.writer.SetPasswordResetToken(ctx, user.UserID, resetToken); err != nil {
		logger.Log.Errorw("failed to store reset token", "err", err)
		return err
	}

	if err := svc.mail.SendPasswordResetEmail(ctx, email, resetToken); err != nil {
		logger.Log.Errorw("failed to send reset email", "email", email, "err", err)
		return fmt.Errorf("%w: %v", ErrSendEmail, err)
	}

	return nil
}

// ConfirmPasswordReset consumes a reset token and installs the new
// password. Unknown and expired tokens are rejected identically.
func (svc *PasswordResetService) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return ErrInvalidOrExpiredToken
	}
	if len(newPassword) < svc.minPasswordLen {
		return ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	userID, ok, err := svc.writer.ConsumePasswordResetToken(ctx, resetToken, string(hashedPassword))
	if err != nil {
		logger.Log.Errorw("failed to consume reset token", "err", err)
		return err
	}
	if !ok {
		logger.Log.Infow("reset token invalid or expired")
		return ErrInvalidOrExpiredToken
	}

	publishAuthEvent(ctx, svc.kafkaWriter, models.EventPasswordReset, userID, "")

	return nil
}
