// Package books is the SQL store for the book catalogue.
package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/models"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"github.com/5w1tchy/book-explorer-api/internal/validate"
)

// ErrInvalidPage is returned by List when the requested page does not exist.
var ErrInvalidPage = errors.New("invalid page")

const (
	listColumns   = "id, title, author, book_type, genre, cover_image, published_year, created_at"
	detailColumns = "id, title, author, description, book_type, genre, cover_image, published_year, created_at"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store { return &Store{db: db, now: time.Now} }

// WithClock overrides the clock used for the published year bound.
func (s *Store) WithClock(now func() time.Time) *Store {
	c := *s
	c.now = now
	return &c
}

// Page is one page of a listing plus the total match count.
type Page struct {
	Books []models.Book
	Count int
}

// TotalPages is never below 1 so that an empty catalogue still has page 1.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

func (s *Store) List(ctx context.Context, p ListParams) (Page, error) {
	p = p.normalized()
	countSQL, pageSQL, args := buildListQuery(p)

	var out Page
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&out.Count); err != nil {
		return Page{}, fmt.Errorf("count books: %w", err)
	}
	if p.Page > TotalPages(out.Count, p.PageSize) {
		return Page{}, ErrInvalidPage
	}

	offset := (p.Page - 1) * p.PageSize
	rows, err := s.db.QueryContext(ctx, pageSQL, append(args, p.PageSize, offset)...)
	if err != nil {
		return Page{}, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out.Books = make([]models.Book, 0, p.PageSize)
	for rows.Next() {
		b, err := scanBook(rows, false)
		if err != nil {
			return Page{}, err
		}
		out.Books = append(out.Books, b)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (models.Book, error) {
	return getBook(ctx, s.db, id, "")
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}

// Create validates b, inserts it and fills in ID and CreatedAt.
func (s *Store) Create(ctx context.Context, b *models.Book) error {
	if err := validate.Book(b, s.now()); err != nil {
		return err
	}
	err := s.db.QueryRowContext(ctx, `
INSERT INTO books (title, author, description, book_type, genre, published_year)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`,
		b.Title, b.Author, b.Description, nullEnum(b.BookType), nullEnum(b.Genre), nullInt(b.PublishedYear),
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", dbx.MapPGError(err))
	}
	return nil
}

// Update locks the row, lets fn mutate it, validates the result and writes it
// back, all in one transaction. Cover and created_at are not writable here.
func (s *Store) Update(ctx context.Context, id int64, fn func(*models.Book) error) (models.Book, error) {
	var out models.Book
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		b, err := getBook(ctx, tx, id, " FOR UPDATE")
		if err != nil {
			return err
		}
		if err := fn(&b); err != nil {
			return err
		}
		if err := validate.Book(&b, s.now()); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
UPDATE books
SET title = $2, author = $3, description = $4, book_type = $5, genre = $6, published_year = $7
WHERE id = $1`,
			id, b.Title, b.Author, b.Description, nullEnum(b.BookType), nullEnum(b.Genre), nullInt(b.PublishedYear),
		)
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		out = b
		return nil
	})
	return out, err
}

// Delete removes the book (notes cascade) and returns its old cover key.
func (s *Store) Delete(ctx context.Context, id int64) (*string, error) {
	var cover sql.NullString
	err := s.db.QueryRowContext(ctx, `DELETE FROM books WHERE id = $1 RETURNING cover_image`, id).Scan(&cover)
	if err != nil {
		return nil, dbx.MapPGError(err)
	}
	return strPtr(cover), nil
}

// SetCover stores a new cover object key and returns the previous one.
func (s *Store) SetCover(ctx context.Context, id int64, key string) (*string, error) {
	var prev sql.NullString
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT cover_image FROM books WHERE id = $1 FOR UPDATE`, id).Scan(&prev); err != nil {
			return dbx.MapPGError(err)
		}
		_, err := tx.ExecContext(ctx, `UPDATE books SET cover_image = $2 WHERE id = $1`, id, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return strPtr(prev), nil
}

func getBook(ctx context.Context, q dbx.DBTX, id int64, suffix string) (models.Book, error) {
	row := q.QueryRowContext(ctx, "SELECT "+detailColumns+" FROM books WHERE id = $1"+suffix, id)
	b, err := scanBook(row, true)
	if err != nil {
		return models.Book{}, dbx.MapPGError(err)
	}
	return b, nil
}
