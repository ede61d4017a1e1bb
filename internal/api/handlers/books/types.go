package books

import (
	"context"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
	"github.com/5w1tchy/book-explorer-api/internal/models"
	"github.com/5w1tchy/book-explorer-api/internal/validate"
	"go.uber.org/zap"
)

type listItem struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	BookType      *models.BookType `json:"book_type"`
	Genre         *models.Genre    `json:"genre"`
	CoverImage    *string          `json:"cover_image"`
	PublishedYear *int             `json:"published_year"`
	CreatedAt     time.Time        `json:"created_at"`
}

type detail struct {
	listItem
	Description string `json:"description"`
}

type listResponse struct {
	Count       int        `json:"count"`
	Next        *string    `json:"next"`
	Previous    *string    `json:"previous"`
	PageSize    int        `json:"page_size"`
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	Results     []listItem `json:"results"`
}

type choicesResponse struct {
	Genres    []models.Choice `json:"genres"`
	BookTypes []models.Choice `json:"book_types"`
}

// bookInput is the writable subset of a book. Every field is Optional so
// PATCH can tell "leave alone" from "set to null".
type bookInput struct {
	Title         httpx.Optional[string] `json:"title"`
	Author        httpx.Optional[string] `json:"author"`
	Description   httpx.Optional[string] `json:"description"`
	BookType      httpx.Optional[string] `json:"book_type"`
	Genre         httpx.Optional[string] `json:"genre"`
	PublishedYear httpx.Optional[int]    `json:"published_year"`
}

const (
	msgRequired = "This field is required."
	msgNotNull  = "This field may not be null."
)

// apply copies the supplied fields onto b. With partial false, title and
// author must be present. Enum values are checked by validate.Book.
func (in bookInput) apply(b *models.Book, partial bool) validate.Errors {
	errs := validate.Errors{}

	requiredString := func(field string, o httpx.Optional[string], dst *string) {
		switch {
		case !o.Set:
			if !partial {
				errs.Add(field, msgRequired)
			}
		case o.Null:
			errs.Add(field, msgNotNull)
		default:
			*dst = o.Value
		}
	}
	requiredString("title", in.Title, &b.Title)
	requiredString("author", in.Author, &b.Author)

	if in.Description.Set {
		if in.Description.Null {
			errs.Add("description", msgNotNull)
		} else {
			b.Description = in.Description.Value
		}
	}
	if in.BookType.Set {
		b.BookType = nil
		if !in.BookType.Null && in.BookType.Value != "" {
			bt := models.BookType(in.BookType.Value)
			b.BookType = &bt
		}
	}
	if in.Genre.Set {
		b.Genre = nil
		if !in.Genre.Null && in.Genre.Value != "" {
			g := models.Genre(in.Genre.Value)
			b.Genre = &g
		}
	}
	if in.PublishedYear.Set {
		b.PublishedYear = nil
		if !in.PublishedYear.Null {
			y := in.PublishedYear.Value
			b.PublishedYear = &y
		}
	}
	return errs
}

// check runs apply and then the shared book rule, reporting both at once.
func (in bookInput) check(b *models.Book, partial bool, now time.Time) error {
	errs := in.apply(b, partial)
	err := validate.Book(b, now)
	verrs, ok := err.(validate.Errors)
	if err != nil && !ok {
		return err
	}
	errs.Merge(verrs)
	return errs.Err()
}

func (h *Handler) coverURL(ctx context.Context, key *string) *string {
	if key == nil || *key == "" || h.Covers == nil {
		return nil
	}
	u, err := h.Covers.PresignGet(ctx, *key)
	if err != nil {
		h.Log.Warn("presign cover failed", zap.String("key", *key), zap.Error(err))
		return nil
	}
	return &u
}

func (h *Handler) toListItem(ctx context.Context, b models.Book) listItem {
	return listItem{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		BookType:      b.BookType,
		Genre:         b.Genre,
		CoverImage:    h.coverURL(ctx, b.CoverImage),
		PublishedYear: b.PublishedYear,
		CreatedAt:     b.CreatedAt,
	}
}

func (h *Handler) toDetail(ctx context.Context, b models.Book) detail {
	return detail{listItem: h.toListItem(ctx, b), Description: b.Description}
}
