package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/models"
)

// VerificationWriter defines the mutations of the verification state machine.
type VerificationWriter interface {
	// VerifyEmail consumes a verification token and reports the verified
	// user's id and email; false means no match.
	VerifyEmail(ctx context.Context, verificationToken string) (uuid.UUID, string, bool, error)
	// RegisterVerificationAttempt atomically applies the resend throttle
	// and returns the stored token; false means the cap was reached.
	RegisterVerificationAttempt(ctx context.Context, userID uuid.UUID) (string, bool, error)
}

// VerificationService governs the path from unverified to verified and
// the resend-attempt throttle.
type VerificationService struct {
	reader      UserReader
	writer      VerificationWriter
	mail        MailSender
	kafkaWriter KafkaWriter
}

// NewVerificationService creates a new VerificationService instance.
func NewVerificationService(
	reader UserReader,
	writer VerificationWriter,
	mail MailSender,
	kafkaWriter KafkaWriter,
) *VerificationService {
	return &VerificationService{
		reader:      reader,
		writer:      writer,
		mail:        mail,
		kafkaWriter: kafkaWriter,
	}
}

// VerifyEmail marks the account holding the token as verified.
// Verification tokens carry no expiry: they stay valid until consumed or
// rotated. Re-verifying with a still-stored token is a no-op success.
func (svc *VerificationService) VerifyEmail(ctx context.Context, verificationToken string) error {
	if verificationToken == "" {
		return ErrInvalidOrExpiredToken
	}

	userID, email, ok, err := svc.writer.VerifyEmail(ctx, verificationToken)
	if err != nil {
		logger.Log.Errorw("failed to verify email", "err", err)
		return err
	}
	if !ok {
		logger.Log.Infow("verification token did not match any user")
		return ErrInvalidOrExpiredToken
	}

	publishAuthEvent(ctx, svc.kafkaWriter, models.EventEmailVerified, userID, email)

	return nil
}

// ResendVerification re-sends the verification email for an unverified
// account, capped at 3 attempts per rolling hour. The existing token is
// reused, not rotated, so earlier emails stay valid.
func (svc *VerificationService) ResendVerification(ctx context.Context, email string) error {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return err
	}
	if user == nil {
		logger.Log.Infow("resend requested for unknown email", "email", email)
		return ErrUserDoesNotExist
	}
	if user.IsVerified {
		logger.Log.Infow("resend requested for verified account", "email", email)
		return ErrUserAlreadyVerified
	}

	verificationToken, allowed, err := svc.writer.RegisterVerificationAttempt(ctx, user.UserID)
	if err != nil {
		logger.Log.Errorw("failed to register verification attempt", "err", err)
		return err
	}
	if !allowed {
		logger.Log.Infow("verification resend limit reached", "email", email)
		return ErrResendLimitReached
	}
	if verificationToken == "" {
		// Every unverified account gets a token at creation; an empty one
		// here means the row was tampered with outside the service.
		return errors.New("unverified user has no verification token")
	}

	if err := svc.mail.SendVerificationEmail(ctx, email, verificationToken); err != nil {
		logger.Log.Errorw("failed to resend verification email", "email", email, "err", err)
		return fmt.Errorf("%w: %v", ErrSendEmail, err)
	}

	return nil
}
