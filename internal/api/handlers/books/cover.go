package books

import (
	"bytes"
	"io"
	"net/http"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
	storage "github.com/5w1tchy/book-explorer-api/internal/storage/s3"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const MaxCoverSize = 5 << 20

var coverTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadCover handles PUT /books/{book_id}/cover/ with a multipart "cover_image"
// file. The type is sniffed from the bytes, not taken from the client.
func (h *Handler) UploadCover(w http.ResponseWriter, r *http.Request) {
	if h.Covers == nil {
		apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "Cover storage is not configured.")
		return
	}
	id, err := httpx.PathID(r, "book_id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	ctx := r.Context()
	if _, err := h.Store.Get(ctx, id); err != nil {
		apperr.Write(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxCoverSize+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		apperr.Write(w, r, apperr.BadRequest("cover_image", "Upload a valid image. The file is missing or too large."))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("cover_image")
	if err != nil {
		apperr.Write(w, r, apperr.BadRequest("cover_image", "No file was submitted."))
		return
	}
	defer file.Close()

	if header.Size > MaxCoverSize {
		apperr.Write(w, r, apperr.BadRequest("cover_image", "Ensure the file is no larger than 5 MB."))
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxCoverSize+1))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if len(data) == 0 || len(data) > MaxCoverSize {
		apperr.Write(w, r, apperr.BadRequest("cover_image", "Ensure the file is no larger than 5 MB."))
		return
	}

	mt := mimetype.Detect(data)
	ext, ok := coverTypes[mt.String()]
	if !ok {
		apperr.Write(w, r, apperr.BadRequest("cover_image", "Upload a valid image. Allowed types are JPEG, PNG and WebP."))
		return
	}

	key := storage.CoverKey(id, ext)
	if err := h.Covers.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), mt.String()); err != nil {
		apperr.Write(w, r, err)
		return
	}
	prev, err := h.Store.SetCover(ctx, id, key)
	if err != nil {
		if derr := h.Covers.DeleteObject(ctx, key); derr != nil {
			h.Log.Warn("orphaned cover object", zap.String("key", key), zap.Error(derr))
		}
		apperr.Write(w, r, err)
		return
	}
	h.dropCover(r, prev)

	b, err := h.Store.Get(ctx, id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	h.Log.Info("cover uploaded", zap.Int64("book_id", id), zap.String("key", key))
	httpx.WriteJSON(w, http.StatusOK, h.toDetail(ctx, b))
}

// dropCover deletes a replaced or orphaned cover. Failures are only logged.
func (h *Handler) dropCover(r *http.Request, key *string) {
	if key == nil || *key == "" || h.Covers == nil {
		return
	}
	if err := h.Covers.DeleteObject(r.Context(), *key); err != nil {
		h.Log.Warn("delete old cover failed", zap.String("key", *key), zap.Error(err))
	}
}
