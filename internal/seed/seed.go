// Package seed loads development users and the sample catalogue.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/5w1tchy/book-explorer-api/internal/models"
	"github.com/5w1tchy/book-explorer-api/internal/security/password"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"go.uber.org/zap"
)

type Users interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
}

// Books goes through the regular store so seeded rows pass the same validation.
type Books interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, b *models.Book) error
}

type Result struct {
	UsersCreated int
	BooksCreated int
}

// Run creates missing development users and, only when the catalogue is
// empty, the sample books. Running it twice changes nothing.
func Run(ctx context.Context, users Users, books Books, hasher *password.Hasher, log *zap.Logger) (Result, error) {
	var res Result

	for _, du := range devUsers {
		_, err := users.FindByUsername(ctx, du.Email)
		if err == nil {
			log.Info("user already exists", zap.String("username", du.Email))
			continue
		}
		if !errors.Is(err, dbx.ErrNotFound) {
			return res, err
		}
		hash, err := hasher.Hash(du.Password)
		if err != nil {
			return res, err
		}
		if _, err := users.CreateUser(ctx, models.User{
			Username:     du.Email,
			Email:        du.Email,
			FirstName:    du.First,
			LastName:     du.Last,
			PasswordHash: hash,
		}); err != nil {
			return res, fmt.Errorf("seed user %s: %w", du.Email, err)
		}
		res.UsersCreated++
		log.Info("created user", zap.String("username", du.Email))
	}

	n, err := books.Count(ctx)
	if err != nil {
		return res, err
	}
	if n > 0 {
		log.Info("catalogue not empty, skipping books", zap.Int("count", n))
		return res, nil
	}
	for _, s := range catalogue {
		bt, g, year := s.Type, s.Genre, s.Year
		b := models.Book{
			Title:         s.Title,
			Author:        s.Author,
			Description:   s.Description,
			BookType:      &bt,
			Genre:         &g,
			PublishedYear: &year,
		}
		if err := books.Create(ctx, &b); err != nil {
			return res, fmt.Errorf("seed book %q: %w", s.Title, err)
		}
		res.BooksCreated++
	}
	log.Info("seeded catalogue", zap.Int("books", res.BooksCreated))
	return res, nil
}
