package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/models"
)

// UserReadRepository provides read-only access to user records.
type UserReadRepository struct {
	db *sqlx.DB
}

// NewUserReadRepository creates a new UserReadRepository instance.
func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

const userColumns = `
	user_id, username, email, password_hash, is_verified,
	verification_token, verification_attempts, last_verification_attempt,
	password_reset_token, password_reset_expires, created_at, updated_at
`

// GetByUsernameOrEmail returns the first user matching either value.
// A nil result with a nil error means no user was found.
func (r *UserReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.UserDB, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1::VARCHAR IS NOT NULL AND username = $1)
		   OR ($2::VARCHAR IS NOT NULL AND email = $2)
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username, email)

	logQuery(query, []any{username, email}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail returns the user with the given email, or nil if absent.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, email)

	logQuery(query, []any{email}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetProfileByID returns the public profile fields for a user id, or nil
// if the user no longer exists.
func (r *UserReadRepository) GetProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const query = `
		SELECT user_id, username, email
		FROM users
		WHERE user_id = $1
	`

	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, query, userID)

	logQuery(query, []any{userID}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// Unique-index violations on insert, surfaced so the caller can report
// which field collided when a concurrent registration slips past the
// availability check.
var (
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// UserWriteRepository performs user mutations. Every cross-request
// coordination point (verification consumption, resend throttle, reset
// token consumption) is a single conditional UPDATE so the database stays
// the only consistency boundary across service instances.
type UserWriteRepository struct {
	db *sqlx.DB
}

// NewUserWriteRepository creates a new UserWriteRepository instance.
func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save inserts a new unverified user and returns the generated id.
// Uniqueness of username and email is enforced by the table constraints;
// a violated constraint maps to ErrEmailTaken or ErrUsernameTaken.
func (r *UserWriteRepository) Save(ctx context.Context, username, email, passwordHash, verificationToken string) (uuid.UUID, error) {
	const query = `
		INSERT INTO users (username, email, password_hash, verification_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING user_id
	`
	args := []any{username, email, passwordHash, verificationToken}

	var userID uuid.UUID
	err := r.db.GetContext(ctx, &userID, query, args...)

	logQuery(query, args, err)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return uuid.Nil, ErrEmailTaken
		case "users_username_key":
			return uuid.Nil, ErrUsernameTaken
		}
	}
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

// VerifyEmail flips is_verified for the user holding the given token and
// returns that user's id and email. Returns false when no row matches. A
// repeated call with a still-stored token is a no-op success; once the
// token is rotated away it no longer matches.
func (r *UserWriteRepository) VerifyEmail(ctx context.Context, verificationToken string) (uuid.UUID, string, bool, error) {
	const query = `
		UPDATE users
		SET is_verified = TRUE, updated_at = NOW()
		WHERE verification_token = $1
		RETURNING user_id, email
	`

	var row struct {
		UserID uuid.UUID `db:"user_id"`
		Email  string    `db:"email"`
	}
	err := r.db.GetContext(ctx, &row, query, verificationToken)

	logQuery(query, []any{verificationToken}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, "", false, nil
	}
	if err != nil {
		return uuid.Nil, "", false, err
	}
	return row.UserID, row.Email, true, nil
}

// RegisterVerificationAttempt applies the resend throttle as one atomic
// conditional update: the counter restarts at 1 once the hour window has
// elapsed, increments while under the cap of 3, and the update matches no
// row when the cap is reached inside the window. Returns the stored
// verification token to resend, or ("", false, nil) when rate limited.
func (r *UserWriteRepository) RegisterVerificationAttempt(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	const query = `
		UPDATE users
		SET verification_attempts = CASE
				WHEN last_verification_attempt IS NULL
				  OR last_verification_attempt < NOW() - INTERVAL '1 hour' THEN 1
				ELSE verification_attempts + 1
			END,
			last_verification_attempt = NOW(),
			updated_at = NOW()
		WHERE user_id = $1
		  AND is_verified = FALSE
		  AND (last_verification_attempt IS NULL
			OR last_verification_attempt < NOW() - INTERVAL '1 hour'
			OR verification_attempts < 3)
		RETURNING verification_token
	`

	var verificationToken sql.NullString
	err := r.db.GetContext(ctx, &verificationToken, query, userID)

	logQuery(query, []any{userID}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return verificationToken.String, true, nil
}

// SetPasswordResetToken stores a fresh reset token with a one hour
// deadline, replacing any previous one.
func (r *UserWriteRepository) SetPasswordResetToken(ctx context.Context, userID uuid.UUID, resetToken string) error {
	const query = `
		UPDATE users
		SET password_reset_token = $1,
			password_reset_expires = NOW() + INTERVAL '1 hour',
			updated_at = NOW()
		WHERE user_id = $2
	`
	args := []any{resetToken, userID}

	_, err := r.db.ExecContext(ctx, query, args...)

	logQuery(query, args, err)

	return err
}

// ConsumePasswordResetToken replaces the password hash and clears the
// reset token in one statement, so a token is consumed at most once even
// under concurrent confirms. Returns uuid.Nil and false when the token is
// unknown or expired (indistinguishable on purpose).
func (r *UserWriteRepository) ConsumePasswordResetToken(ctx context.Context, resetToken, passwordHash string) (uuid.UUID, bool, error) {
	const query = `
		UPDATE users
		SET password_hash = $1,
			password_reset_token = NULL,
			password_reset_expires = NULL,
			updated_at = NOW()
		WHERE password_reset_token = $2
		  AND password_reset_expires > NOW()
		RETURNING user_id
	`
	args := []any{passwordHash, resetToken}

	var userID uuid.UUID
	err := r.db.GetContext(ctx, &userID, query, args...)

	logQuery(query, args, err)

	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return userID, true, nil
}

// logQuery logs a statement on a single line with its args and outcome.
func logQuery(query string, args []any, err error) {
	logger.Log.Debugw("query",
		"sql", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)
}
