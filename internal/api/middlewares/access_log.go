package middlewares

import (
	"net/http"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
	"go.uber.org/zap"
)

type rtWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
	status      int
	bytes       int
}

func (w *rtWriter) stamp() {
	if !w.wroteHeader {
		w.Header().Set("X-Response-Time", time.Since(w.start).String())
		w.wroteHeader = true
	}
}

func (w *rtWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
	}
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *rtWriter) Write(b []byte) (int, error) {
	w.stamp()
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *rtWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// AccessLog stamps X-Response-Time and writes one log line per request.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &rtWriter{ResponseWriter: w, start: time.Now(), status: http.StatusOK}
			next.ServeHTTP(rw, r)

			// Nothing written (e.g. a handler that returns without a body).
			if !rw.wroteHeader {
				rw.Header().Set("X-Response-Time", time.Since(rw.start).String())
			}

			fields := []zap.Field{
				zap.String("request_id", GetRequestID(r)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.status),
				zap.Int("bytes", rw.bytes),
				zap.Duration("duration", time.Since(rw.start)),
				zap.String("remote_ip", httpx.ClientIP(r)),
			}
			if uid, ok := UserIDFrom(r.Context()); ok {
				fields = append(fields, zap.Int64("user_id", uid))
			}
			switch {
			case rw.status >= 500:
				log.Error("request", fields...)
			case rw.status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
		})
	}
}
