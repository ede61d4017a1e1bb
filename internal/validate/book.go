package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/models"
	"golang.org/x/text/unicode/norm"
)

// Sanitize trims surrounding whitespace, drops NUL bytes and normalises to NFC.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(norm.NFC.String(s))
}

// MaxPublishedYear is the latest accepted publication year; one year ahead allows pre-orders.
func MaxPublishedYear(now time.Time) int { return now.Year() + 1 }

// Book normalises b in place and checks the book invariants. It is the single
// rule shared by the request decoder and the store, so both entry paths agree.
func Book(b *models.Book, now time.Time) error {
	b.Title = Sanitize(b.Title)
	b.Author = Sanitize(b.Author)

	errs := Errors{}
	if b.Title == "" {
		errs.Add("title", "Title cannot be empty.")
	}
	if b.Author == "" {
		errs.Add("author", "Author cannot be empty.")
	}
	if y := b.PublishedYear; y != nil {
		if max := MaxPublishedYear(now); *y < 0 {
			errs.Add("published_year", "Published year cannot be negative.")
		} else if *y > max {
			errs.Add("published_year", fmt.Sprintf("Published year cannot be more than %d (for pre-orders).", max))
		}
	}
	for f, msgs := range Struct(b) {
		if !errs.Has(f) {
			errs[f] = msgs
		}
	}
	return errs.Err()
}
