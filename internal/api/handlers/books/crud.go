package books

import (
	"net/http"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
	"github.com/5w1tchy/book-explorer-api/internal/models"
	"go.uber.org/zap"
)

// Get handles GET /books/{id}/.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	b, err := h.Store.Get(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.toDetail(r.Context(), b))
}

// Create handles POST /books/.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in bookInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}
	var b models.Book
	if err := in.check(&b, false, h.Now()); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if err := h.Store.Create(r.Context(), &b); err != nil {
		apperr.Write(w, r, err)
		return
	}
	h.Log.Info("book created", zap.Int64("book_id", b.ID))
	httpx.WriteJSON(w, http.StatusCreated, h.toDetail(r.Context(), b))
}

// Put handles PUT /books/{id}/.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) { h.update(w, r, false) }

// Patch handles PATCH /books/{id}/.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) { h.update(w, r, true) }

func (h *Handler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	var in bookInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}
	b, err := h.Store.Update(r.Context(), id, func(b *models.Book) error {
		return in.check(b, partial, h.Now())
	})
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.toDetail(r.Context(), b))
}

// Delete handles DELETE /books/{id}/. Notes go with the book.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	cover, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	h.dropCover(r, cover)
	h.Log.Info("book deleted", zap.Int64("book_id", id))
	httpx.NoContent(w)
}
