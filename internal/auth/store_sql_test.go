package auth

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/models"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "username", "email", "first_name", "last_name", "password_hash", "token_version", "created_at"}

func newSQLStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(db), mock
}

func TestSQLStore_CreateUser(t *testing.T) {
	s, mock := newSQLStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (username, email, first_name, last_name, password_hash)")).
		WithArgs("john", "john@mail.com", "John", "Doe", "phc").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "john", "john@mail.com", "John", "Doe", "phc", 1, now))

	u, err := s.CreateUser(context.Background(), models.User{Username: "john", Email: "john@mail.com", FirstName: "John", LastName: "Doe", PasswordHash: "phc"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, 1, u.TokenVersion)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CreateUser_Duplicate(t *testing.T) {
	s, mock := newSQLStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := s.CreateUser(context.Background(), models.User{Username: "john", PasswordHash: "phc"})
	assert.ErrorIs(t, err, dbx.ErrConflict)
}

func TestSQLStore_FindByUsername_NotFound(t *testing.T) {
	s, mock := newSQLStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := s.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, dbx.ErrNotFound)
}

func TestSQLStore_BumpTokenVersion(t *testing.T) {
	s, mock := newSQLStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET token_version = token_version + 1 WHERE id = $1 RETURNING token_version")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"token_version"}).AddRow(5))

	tv, err := s.BumpTokenVersion(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 5, tv)
	require.NoError(t, mock.ExpectationsWereMet())
}
