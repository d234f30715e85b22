package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupUserPostgresContainer(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "5432")

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	assert.NoError(t, err)

	schema := `
	CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

	CREATE TABLE IF NOT EXISTS users (
		user_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		verification_token VARCHAR(64),
		verification_attempts INTEGER NOT NULL DEFAULT 0,
		last_verification_attempt TIMESTAMP,
		password_reset_token VARCHAR(64),
		password_reset_expires TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`
	_, err = db.Exec(schema)
	assert.NoError(t, err)

	teardown := func() {
		db.Close()
		container.Terminate(context.Background())
	}

	return db, teardown
}

func TestUserWriteRepository_Save(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	repo := NewUserWriteRepository(db)
	ctx := context.Background()

	userID, err := repo.Save(ctx, "alice", "alice@example.com", "hashed-password", "verif-token")
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, userID)

	var user struct {
		Username          string `db:"username"`
		Email             string `db:"email"`
		PasswordHash      string `db:"password_hash"`
		IsVerified        bool   `db:"is_verified"`
		VerificationToken string `db:"verification_token"`
	}
	err = db.Get(&user, "SELECT username, email, password_hash, is_verified, verification_token FROM users WHERE user_id=$1", userID)
	assert.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "hashed-password", user.PasswordHash)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "verif-token", user.VerificationToken)

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := repo.Save(ctx, "alice2", "alice@example.com", "hash", "token2")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := repo.Save(ctx, "alice", "alice2@example.com", "hash", "token3")
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestUserReadRepository_GetByUsernameOrEmail(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	writeRepo.Save(ctx, "charlie", "charlie@example.com", "hash1", "token1")
	writeRepo.Save(ctx, "dave", "dave@example.com", "hash2", "token2")

	t.Run("ByUsername", func(t *testing.T) {
		username := "charlie"
		user, err := readRepo.GetByUsernameOrEmail(ctx, &username, nil)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "charlie", user.Username)
	})

	t.Run("ByEmail", func(t *testing.T) {
		email := "dave@example.com"
		user, err := readRepo.GetByUsernameOrEmail(ctx, nil, &email)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "dave", user.Username)
	})

	t.Run("ByUsernameAndEmail", func(t *testing.T) {
		username := "charlie"
		email := "charlie@example.com"
		user, err := readRepo.GetByUsernameOrEmail(ctx, &username, &email)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "charlie", user.Username)
	})

	t.Run("NotFound", func(t *testing.T) {
		username := "nonexistent"
		user, err := readRepo.GetByUsernameOrEmail(ctx, &username, nil)
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestUserReadRepository_GetByEmail(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	writeRepo.Save(ctx, "erin", "erin@example.com", "hash", "token")

	user, err := readRepo.GetByEmail(ctx, "erin@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "erin", user.Username)
	assert.NotNil(t, user.VerificationToken)
	assert.Equal(t, "token", *user.VerificationToken)

	missing, err := readRepo.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserReadRepository_GetProfileByID(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	userID, err := writeRepo.Save(ctx, "frank", "frank@example.com", "hash", "token")
	assert.NoError(t, err)

	profile, err := readRepo.GetProfileByID(ctx, userID)
	assert.NoError(t, err)
	assert.NotNil(t, profile)
	assert.Equal(t, userID, profile.UserID)
	assert.Equal(t, "frank", profile.Username)
	assert.Equal(t, "frank@example.com", profile.Email)

	missing, err := readRepo.GetProfileByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserWriteRepository_VerifyEmail(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	ctx := context.Background()

	userID, err := writeRepo.Save(ctx, "grace", "grace@example.com", "hash", "grace-token")
	assert.NoError(t, err)

	gotID, gotEmail, ok, err := writeRepo.VerifyEmail(ctx, "grace-token")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "grace@example.com", gotEmail)

	var isVerified bool
	err = db.Get(&isVerified, "SELECT is_verified FROM users WHERE user_id=$1", userID)
	assert.NoError(t, err)
	assert.True(t, isVerified)

	gotID, gotEmail, ok, err = writeRepo.VerifyEmail(ctx, "unknown-token")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, gotID)
	assert.Empty(t, gotEmail)
}

func TestUserWriteRepository_RegisterVerificationAttempt(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	ctx := context.Background()

	userID, err := writeRepo.Save(ctx, "heidi", "heidi@example.com", "hash", "heidi-token")
	assert.NoError(t, err)

	t.Run("AllowsThreeAttemptsInWindow", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			token, ok, err := writeRepo.RegisterVerificationAttempt(ctx, userID)
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "heidi-token", token)
		}
	})

	t.Run("FourthAttemptRateLimited", func(t *testing.T) {
		token, ok, err := writeRepo.RegisterVerificationAttempt(ctx, userID)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, token)
	})

	t.Run("WindowExpiryResetsCounter", func(t *testing.T) {
		_, err := db.Exec("UPDATE users SET last_verification_attempt = NOW() - INTERVAL '2 hours' WHERE user_id=$1", userID)
		assert.NoError(t, err)

		token, ok, err := writeRepo.RegisterVerificationAttempt(ctx, userID)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "heidi-token", token)

		var attempts int
		err = db.Get(&attempts, "SELECT verification_attempts FROM users WHERE user_id=$1", userID)
		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("VerifiedUserNotMatched", func(t *testing.T) {
		_, _, ok, err := writeRepo.VerifyEmail(ctx, "heidi-token")
		assert.NoError(t, err)
		assert.True(t, ok)

		token, allowed, err := writeRepo.RegisterVerificationAttempt(ctx, userID)
		assert.NoError(t, err)
		assert.False(t, allowed)
		assert.Empty(t, token)
	})
}

func TestUserWriteRepository_PasswordReset(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	ctx := context.Background()

	userID, err := writeRepo.Save(ctx, "ivan", "ivan@example.com", "old-hash", "ivan-token")
	assert.NoError(t, err)

	err = writeRepo.SetPasswordResetToken(ctx, userID, "reset-token")
	assert.NoError(t, err)

	t.Run("ConsumeSucceedsOnce", func(t *testing.T) {
		gotID, ok, err := writeRepo.ConsumePasswordResetToken(ctx, "reset-token", "new-hash")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, userID, gotID)

		var hash string
		err = db.Get(&hash, "SELECT password_hash FROM users WHERE user_id=$1", userID)
		assert.NoError(t, err)
		assert.Equal(t, "new-hash", hash)
	})

	t.Run("SecondConsumeFails", func(t *testing.T) {
		gotID, ok, err := writeRepo.ConsumePasswordResetToken(ctx, "reset-token", "another-hash")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, gotID)
	})

	t.Run("ExpiredTokenNotMatched", func(t *testing.T) {
		err := writeRepo.SetPasswordResetToken(ctx, userID, "stale-token")
		assert.NoError(t, err)

		_, err = db.Exec("UPDATE users SET password_reset_expires = NOW() - INTERVAL '1 minute' WHERE user_id=$1", userID)
		assert.NoError(t, err)

		gotID, ok, err := writeRepo.ConsumePasswordResetToken(ctx, "stale-token", "new-hash")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, gotID)
	})
}
