package models

import "time"

// Book is a catalogue entry. Nullable columns are pointers.
type Book struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title" validate:"max=255"`
	Author        string    `json:"author" validate:"max=255"`
	Description   string    `json:"description"`
	BookType      *BookType `json:"book_type" validate:"omitempty,book_type"`
	Genre         *Genre    `json:"genre" validate:"omitempty,genre"`
	CoverImage    *string   `json:"cover_image"`
	PublishedYear *int      `json:"published_year"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserNote is a private note a user keeps on a book.
type UserNote struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	BookID    int64     `json:"book"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}
