// Package notes serves a user's private notes on books.
package notes

import (
	"context"
	"net/http"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
	"github.com/5w1tchy/book-explorer-api/internal/api/middlewares"
	"github.com/5w1tchy/book-explorer-api/internal/authz"
	"github.com/5w1tchy/book-explorer-api/internal/models"
	"github.com/5w1tchy/book-explorer-api/internal/validate"
	"go.uber.org/zap"
)

// Store is the caller-scoped note storage. Every method takes the caller's
// id; notes of other users are reported as not found.
type Store interface {
	List(ctx context.Context, bookID, userID int64) ([]models.UserNote, error)
	Create(ctx context.Context, userID, bookID int64, text string) (models.UserNote, error)
	Get(ctx context.Context, id, userID int64) (models.UserNote, error)
	Update(ctx context.Context, id, userID int64, text string) (models.UserNote, error)
	Delete(ctx context.Context, id, userID int64) error
}

type Handler struct {
	Store Store
	Log   *zap.Logger
}

func New(store Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Store: store, Log: log}
}

// noteInput ignores user and book in the body; both come from the request.
type noteInput struct {
	Note httpx.Optional[string] `json:"note"`
}

func (in noteInput) text(required bool) (string, bool, error) {
	switch {
	case !in.Note.Set:
		if required {
			return "", false, validate.Errors{"note": {"This field is required."}}
		}
		return "", false, nil
	case in.Note.Null:
		return "", false, validate.Errors{"note": {"This field may not be null."}}
	}
	return in.Note.Value, true, nil
}

func caller(r *http.Request) (int64, error) {
	uid, ok := middlewares.UserIDFrom(r.Context())
	if !ok {
		return 0, authz.ErrUnauthenticated
	}
	return uid, nil
}

// List handles GET /books/{book_id}/notes/.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := caller(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	bookID, err := httpx.PathID(r, "book_id")
	if err != nil {
		apperr.Write(w, r, apperr.NotFound("Book not found."))
		return
	}
	notes, err := h.Store.List(r.Context(), bookID, uid)
	if err != nil {
		apperr.Write(w, r, bookNotFound(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, notes)
}

// Create handles POST /books/{book_id}/notes/.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := caller(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	bookID, err := httpx.PathID(r, "book_id")
	if err != nil {
		apperr.Write(w, r, apperr.NotFound("Book not found."))
		return
	}
	var in noteInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}
	text, _, err := in.text(true)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	n, err := h.Store.Create(r.Context(), uid, bookID, text)
	if err != nil {
		apperr.Write(w, r, bookNotFound(err))
		return
	}
	h.Log.Debug("note created", zap.Int64("note_id", n.ID), zap.Int64("book_id", bookID))
	httpx.WriteJSON(w, http.StatusCreated, n)
}

// Get handles GET /books/notes/{id}/.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.target(w, r)
	if !ok {
		return
	}
	n, err := h.Store.Get(r.Context(), id, uid)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, n)
}

// Put handles PUT /books/notes/{id}/.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) { h.update(w, r, true) }

// Patch handles PATCH /books/notes/{id}/. A body without "note" is a no-op.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) { h.update(w, r, false) }

func (h *Handler) update(w http.ResponseWriter, r *http.Request, full bool) {
	uid, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var in noteInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}
	text, set, err := in.text(full)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	var n models.UserNote
	if set {
		n, err = h.Store.Update(r.Context(), id, uid, text)
	} else {
		n, err = h.Store.Get(r.Context(), id, uid)
	}
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, n)
}

// Delete handles DELETE /books/notes/{id}/.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), id, uid); err != nil {
		apperr.Write(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (uid, id int64, ok bool) {
	uid, err := caller(r)
	if err != nil {
		apperr.Write(w, r, err)
		return 0, 0, false
	}
	id, err = httpx.PathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return 0, 0, false
	}
	return uid, id, true
}

// bookNotFound names the missing resource when a book-scoped call misses.
func bookNotFound(err error) error {
	if e := apperr.Convert(err); e.Status == http.StatusNotFound {
		return apperr.NotFound("Book not found.")
	}
	return err
}
