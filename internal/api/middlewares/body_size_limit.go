package middlewares

import (
	"net/http"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
)

const DefaultMaxBodySize int64 = 10 << 20

// BodySizeLimit caps request bodies on POST, PUT and PATCH.
func BodySizeLimit(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if r.ContentLength > limit {
					w.Header().Set("Connection", "close")
					apperr.Write(w, r, apperr.New(http.StatusRequestEntityTooLarge, "Request body too large."))
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
