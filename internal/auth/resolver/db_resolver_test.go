package resolver

import (
	"context"
	"errors"
	"testing"

	"steam-auth-service/internal/auth"
	"steam-auth-service/internal/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var existingUser = uuid.MustParse("7d3c1c8e-2b8c-4bb4-9d0b-3f0e0c8d6b11")

func steamIdentity() *auth.Identity {
	return &auth.Identity{
		Provider:       "steam",
		ProviderUserID: "76561197960287930",
		DisplayName:    "Alice",
		AvatarURL:      "https://avatars.example/a_full.jpg",
		ProfileURL:     "https://steamcommunity.com/id/alice/",
	}
}

func newTestResolver(t *testing.T) (*DBResolver, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewDBResolver(&db.DB{DB: sqlDB}), mock
}

func TestResolveKnownIdentityRefreshesProfile(t *testing.T) {
	r, mock := newTestResolver(t)
	id := steamIdentity()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id\s+FROM identities`).
		WithArgs("steam", "76561197960287930").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(existingUser.String()))
	mock.ExpectExec(`UPDATE users`).
		WithArgs(existingUser, "Alice", "https://avatars.example/a_full.jpg").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	userID, err := r.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, existingUser.String(), userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveCreatesUserWithoutEmail(t *testing.T) {
	r, mock := newTestResolver(t)
	id := steamIdentity()
	created := uuid.MustParse("0b8a2f3e-5c1d-4e6f-8a9b-1c2d3e4f5a6b")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id\s+FROM identities`).
		WithArgs("steam", "76561197960287930").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Alice", "https://avatars.example/a_full.jpg", nil, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(created.String()))
	mock.ExpectExec(`INSERT INTO identities`).
		WithArgs(created, "steam", "76561197960287930", "https://steamcommunity.com/id/alice/").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	userID, err := r.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, created.String(), userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveLinksVerifiedEmail(t *testing.T) {
	r, mock := newTestResolver(t)
	id := &auth.Identity{
		Provider:       "google",
		ProviderUserID: "1234",
		Email:          "alice@example.com",
		EmailVerified:  true,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id\s+FROM identities`).
		WithArgs("google", "1234").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectQuery(`SELECT id\s+FROM users`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingUser.String()))
	mock.ExpectExec(`INSERT INTO identities`).
		WithArgs(existingUser, "google", "1234", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	userID, err := r.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, existingUser.String(), userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveRollsBackOnError(t *testing.T) {
	r, mock := newTestResolver(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id\s+FROM identities`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := r.Resolve(context.Background(), steamIdentity())
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveRejectsIncompleteIdentity(t *testing.T) {
	r, mock := newTestResolver(t)

	_, err := r.Resolve(context.Background(), nil)
	assert.Error(t, err)

	_, err = r.Resolve(context.Background(), &auth.Identity{Provider: "steam"})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
