// Package books serves the book catalogue endpoints.
package books

import (
	"context"
	"io"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/models"
	storebooks "github.com/5w1tchy/book-explorer-api/internal/store/books"
	"go.uber.org/zap"
)

type Store interface {
	List(ctx context.Context, p storebooks.ListParams) (storebooks.Page, error)
	Get(ctx context.Context, id int64) (models.Book, error)
	Create(ctx context.Context, b *models.Book) error
	Update(ctx context.Context, id int64, fn func(*models.Book) error) (models.Book, error)
	Delete(ctx context.Context, id int64) (*string, error)
	SetCover(ctx context.Context, id int64, key string) (*string, error)
}

// Covers is the object storage used for cover images.
type Covers interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type Handler struct {
	Store  Store
	Covers Covers // nil when object storage is not configured
	Log    *zap.Logger
	Now    func() time.Time
}

func New(store Store, covers Covers, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Store: store, Covers: covers, Log: log, Now: time.Now}
}
