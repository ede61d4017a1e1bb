package notes

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"github.com/5w1tchy/book-explorer-api/internal/validate"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cols = []string{"id", "user_id", "book_id", "note", "created_at", "updated_at"}
	ts   = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestList_MissingBook(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := s.List(context.Background(), 5, 1)
	assert.ErrorIs(t, err, dbx.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_FiltersByCaller(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE book_id = $1 AND user_id = $2")).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 1, 5, "second", ts, ts.Add(time.Hour)).
			AddRow(1, 1, 5, "first", ts, ts))

	got, err := s.List(context.Background(), 5, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Note)
	assert.Equal(t, int64(1), got[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_EmptyIsNotNil(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_notes")).
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := s.List(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCreate_OwnerAndBookFromArguments(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_notes (user_id, book_id, note)")).
		WithArgs(int64(1), int64(5), "great read").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(10, 1, 5, "great read", ts, ts))

	n, err := s.Create(context.Background(), 1, 5, "great read")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.UserID)
	assert.Equal(t, int64(5), n.BookID)
}

func TestCreate_MissingBook(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_notes")).
		WithArgs(int64(1), int64(404), "x").
		WillReturnRows(sqlmock.NewRows(cols))

	_, err := s.Create(context.Background(), 1, 404, "x")
	assert.ErrorIs(t, err, dbx.ErrNotFound)
}

func TestCreate_BlankNote(t *testing.T) {
	s, mock := newStore(t)
	_, err := s.Create(context.Background(), 1, 5, "  \n")
	var verrs validate.Errors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has("note"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_OtherOwnerIsNotFound(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_notes WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(10), int64(2)).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err := s.Get(context.Background(), 10, 2)
	assert.ErrorIs(t, err, dbx.ErrNotFound)
}

func TestUpdate_RefreshesTimestamp(t *testing.T) {
	s, mock := newStore(t)
	later := ts.Add(24 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("SET note = $3, updated_at = now()")).
		WithArgs(int64(10), int64(1), "edited").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(10, 1, 5, "edited", ts, later))

	n, err := s.Update(context.Background(), 10, 1, "edited")
	require.NoError(t, err)
	assert.Equal(t, later, n.UpdatedAt)
	assert.True(t, n.UpdatedAt.After(n.CreatedAt))
}

func TestDelete(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_notes WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_notes")).
		WithArgs(int64(10), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), 10, 1))
	assert.ErrorIs(t, s.Delete(context.Background(), 10, 2), dbx.ErrNotFound)
}
