// Package notes stores per-user notes on books. Every query carries the
// caller's user id; a note owned by someone else behaves as if it does not
// exist.
package notes

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/5w1tchy/book-explorer-api/internal/models"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"github.com/5w1tchy/book-explorer-api/internal/validate"
)

const columns = "id, user_id, book_id, note, created_at, updated_at"

type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

// List returns the caller's notes on bookID, newest update first.
// A missing book is dbx.ErrNotFound rather than an empty list.
func (s *Store) List(ctx context.Context, bookID, userID int64) ([]models.UserNote, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, dbx.ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT `+columns+`
FROM user_notes
WHERE book_id = $1 AND user_id = $2
ORDER BY updated_at DESC, id DESC`, bookID, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := []models.UserNote{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Create inserts a note owned by userID on bookID. The insert selects from
// books so a missing book yields no row and maps to dbx.ErrNotFound.
func (s *Store) Create(ctx context.Context, userID, bookID int64, text string) (models.UserNote, error) {
	text, err := cleanNote(text)
	if err != nil {
		return models.UserNote{}, err
	}
	row := s.db.QueryRowContext(ctx, `
INSERT INTO user_notes (user_id, book_id, note)
SELECT $1, b.id, $3 FROM books b WHERE b.id = $2
RETURNING `+columns, userID, bookID, text)
	n, err := scanNote(row)
	if err != nil {
		return models.UserNote{}, dbx.MapPGError(err)
	}
	return n, nil
}

func (s *Store) Get(ctx context.Context, id, userID int64) (models.UserNote, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM user_notes WHERE id = $1 AND user_id = $2`, id, userID)
	n, err := scanNote(row)
	if err != nil {
		return models.UserNote{}, dbx.MapPGError(err)
	}
	return n, nil
}

// Update replaces the note text and refreshes updated_at.
func (s *Store) Update(ctx context.Context, id, userID int64, text string) (models.UserNote, error) {
	text, err := cleanNote(text)
	if err != nil {
		return models.UserNote{}, err
	}
	row := s.db.QueryRowContext(ctx, `
UPDATE user_notes
SET note = $3, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING `+columns, id, userID, text)
	n, err := scanNote(row)
	if err != nil {
		return models.UserNote{}, dbx.MapPGError(err)
	}
	return n, nil
}

func (s *Store) Delete(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return dbx.RowsAffectedOrNotFound(res)
}

func cleanNote(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", validate.Errors{"note": {"This field may not be blank."}}
	}
	return text, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(sc scanner) (models.UserNote, error) {
	var n models.UserNote
	err := sc.Scan(&n.ID, &n.UserID, &n.BookID, &n.Note, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}
