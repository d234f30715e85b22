package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

// Fast sqlmock coverage for paths that do not need a real database:
// driver errors and the no-row outcomes of the conditional updates.

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestUserReadRepository_GetByEmail_DBError(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewUserReadRepository(sqlxDB)

	mock.ExpectQuery("FROM users").
		WithArgs("john@example.com").
		WillReturnError(errors.New("connection reset"))

	user, err := repo.GetByEmail(context.Background(), "john@example.com")
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Save_DBError(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewUserWriteRepository(sqlxDB)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(errors.New("unique violation"))

	userID, err := repo.Save(context.Background(), "john", "john@example.com", "hash", "token")
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_VerifyEmail_NoRows(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewUserWriteRepository(sqlxDB)

	mock.ExpectQuery("UPDATE users").
		WithArgs("unknown-token").
		WillReturnError(sql.ErrNoRows)

	userID, email, ok, err := repo.VerifyEmail(context.Background(), "unknown-token")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, userID)
	assert.Empty(t, email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_VerifyEmail_ReturnsVerifiedUser(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewUserWriteRepository(sqlxDB)

	wantID := uuid.New()
	rows := sqlmock.NewRows([]string{"user_id", "email"}).
		AddRow(wantID.String(), "grace@example.com")

	mock.ExpectQuery("UPDATE users").
		WithArgs("grace-token").
		WillReturnRows(rows)

	userID, email, ok, err := repo.VerifyEmail(context.Background(), "grace-token")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, wantID, userID)
	assert.Equal(t, "grace@example.com", email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Save_UniqueViolation(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewUserWriteRepository(sqlxDB)

	tests := []struct {
		name       string
		constraint string
		wantErr    error
	}{
		{"Email", "users_email_key", ErrEmailTaken},
		{"Username", "users_username_key", ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectQuery("INSERT INTO users").
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			userID, err := repo.Save(context.Background(), "john", "john@example.com", "hash", "token")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, uuid.Nil, userID)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_RegisterVerificationAttempt_RateLimited(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewUserWriteRepository(sqlxDB)

	userID := uuid.New()

	mock.ExpectQuery("UPDATE users").
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)

	token, ok, err := repo.RegisterVerificationAttempt(context.Background(), userID)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_ConsumePasswordResetToken_NoMatch(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewUserWriteRepository(sqlxDB)

	mock.ExpectQuery("UPDATE users").
		WithArgs("new-hash", "stale-token").
		WillReturnError(sql.ErrNoRows)

	userID, ok, err := repo.ConsumePasswordResetToken(context.Background(), "stale-token", "new-hash")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
