package middlewares

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Compression gzips responses for clients that accept it. Small bodies are
// left alone.
func Compression(next http.Handler) http.Handler {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		return gzhttp.GzipHandler(next)
	}
	return wrap(next)
}
