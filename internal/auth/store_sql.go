package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/5w1tchy/book-explorer-api/internal/models"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
)

type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db} }

const userColumns = "id, username, email, first_name, last_name, password_hash, token_version, created_at"

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt)
	if err != nil {
		return models.User{}, dbx.MapPGError(err)
	}
	return u, nil
}

// CreateUser inserts u and fills ID, TokenVersion and CreatedAt.
// A taken username is dbx.ErrConflict.
func (s *SQLStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	row := s.DB.QueryRowContext(ctx, `
INSERT INTO users (username, email, first_name, last_name, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+userColumns,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash)
	out, err := scanUser(row)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return out, nil
}

func (s *SQLStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *SQLStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *SQLStore) TokenVersion(ctx context.Context, id int64) (int, error) {
	var tv int
	err := s.DB.QueryRowContext(ctx, `SELECT token_version FROM users WHERE id = $1`, id).Scan(&tv)
	return tv, dbx.MapPGError(err)
}

func (s *SQLStore) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	return dbx.RowsAffectedOrNotFound(res)
}

// BumpTokenVersion invalidates every outstanding token of the user.
func (s *SQLStore) BumpTokenVersion(ctx context.Context, id int64) (int, error) {
	var tv int
	err := s.DB.QueryRowContext(ctx,
		`UPDATE users SET token_version = token_version + 1 WHERE id = $1 RETURNING token_version`, id).Scan(&tv)
	return tv, dbx.MapPGError(err)
}
