package books

import (
	"database/sql"

	"github.com/5w1tchy/book-explorer-api/internal/models"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(sc scanner, withDescription bool) (models.Book, error) {
	var (
		b                      models.Book
		bookType, genre, cover sql.NullString
		year                   sql.NullInt32
	)
	dest := []any{&b.ID, &b.Title, &b.Author}
	if withDescription {
		dest = append(dest, &b.Description)
	}
	dest = append(dest, &bookType, &genre, &cover, &year, &b.CreatedAt)
	if err := sc.Scan(dest...); err != nil {
		return models.Book{}, err
	}
	if bookType.Valid {
		bt := models.BookType(bookType.String)
		b.BookType = &bt
	}
	if genre.Valid {
		g := models.Genre(genre.String)
		b.Genre = &g
	}
	b.CoverImage = strPtr(cover)
	if year.Valid {
		y := int(year.Int32)
		b.PublishedYear = &y
	}
	return b, nil
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullEnum[T ~string](v *T) any {
	if v == nil || *v == "" {
		return nil
	}
	return string(*v)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}
