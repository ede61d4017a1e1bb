package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPGError(t *testing.T) {
	assert.NoError(t, MapPGError(nil))
	assert.ErrorIs(t, MapPGError(sql.ErrNoRows), ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	err := MapPGError(dup)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "users_username_key")

	other := errors.New("boom")
	assert.Equal(t, other, MapPGError(other))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	want := errors.New("nope")
	got := WithinTx(context.Background(), db, func(*sql.Tx) error { return want })
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = WithinTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE books SET title = 'x'")
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRowsAffectedOrNotFound(t *testing.T) {
	assert.ErrorIs(t, RowsAffectedOrNotFound(sqlmock.NewResult(0, 0)), ErrNotFound)
	assert.NoError(t, RowsAffectedOrNotFound(sqlmock.NewResult(0, 1)))
}
