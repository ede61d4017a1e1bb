package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// DecodeJSON reads a single JSON object from r into dst. Failures come back
// as *apperr.Error ready for apperr.Write.
func DecodeJSON(r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return apperr.New(http.StatusUnsupportedMediaType, apperr.MsgUnsupportedType)
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var syn *json.SyntaxError
		var typ *json.UnmarshalTypeError
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.BadRequest("non_field_errors", "Request body is empty.")
		case errors.As(err, &tooBig):
			return apperr.New(http.StatusRequestEntityTooLarge, "Request body too large.")
		case errors.As(err, &syn), errors.Is(err, io.ErrUnexpectedEOF):
			return apperr.BadRequest("non_field_errors", "JSON parse error.")
		case errors.As(err, &typ):
			field := typ.Field
			if field == "" {
				field = "non_field_errors"
			}
			return apperr.BadRequest(field, fmt.Sprintf("Expected a value of type %s.", typ.Type))
		default:
			return apperr.BadRequest("non_field_errors", "Invalid JSON body.")
		}
	}
	if dec.More() {
		return apperr.BadRequest("non_field_errors", "Request body must contain a single JSON object.")
	}
	return nil
}

// PathID parses a positive int64 path wildcard. Anything else is a 404,
// matching how an unknown id behaves.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("")
	}
	return id, nil
}

// AbsoluteURL rebuilds the request URL as the client sent it: scheme, host,
// mount prefix and path. X-Forwarded-Proto counts only from a trusted peer.
func AbsoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fromTrustedPeer(r) {
		if p := r.Header.Get("X-Forwarded-Proto"); p == "https" || p == "http" {
			scheme = p
		}
	}
	return scheme + "://" + r.Host + BasePath(r) + r.URL.Path
}
