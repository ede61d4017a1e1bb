package router

import (
	"context"
	"net/http"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
	"github.com/5w1tchy/book-explorer-api/internal/api/handlers/books"
	"github.com/5w1tchy/book-explorer-api/internal/api/handlers/notes"
	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
	"github.com/5w1tchy/book-explorer-api/internal/api/middlewares"
	"github.com/5w1tchy/book-explorer-api/internal/auth"
	"github.com/5w1tchy/book-explorer-api/internal/authz"
)

// Pinger is anything /healthz can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Deps struct {
	Books *books.Handler
	Notes *notes.Handler
	Auth  *auth.Handler

	// LoginLimit wraps the credential endpoint. Optional.
	LoginLimit func(http.Handler) http.Handler

	// Health maps a dependency name to its probe.
	Health map[string]Pinger
}

// Router builds the API mux. Every route is also reachable under /api.
func Router(d Deps) http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, op authz.Operation, h http.HandlerFunc) {
		mux.Handle(pattern, middlewares.Require(op, h))
	}

	// Keep legacy /books -> /books/
	mux.HandleFunc("GET /books", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, httpx.BasePath(r)+"/books/", http.StatusMovedPermanently)
	})

	// Books
	route("GET /books/{$}", authz.BookList, d.Books.List)
	route("POST /books/{$}", authz.BookCreate, d.Books.Create)
	route("GET /books/choices/{$}", authz.BookChoices, d.Books.Choices)
	route("GET /books/{id}/{$}", authz.BookGet, d.Books.Get)
	route("PUT /books/{id}/{$}", authz.BookUpdate, d.Books.Put)
	route("PATCH /books/{id}/{$}", authz.BookUpdate, d.Books.Patch)
	route("DELETE /books/{id}/{$}", authz.BookDelete, d.Books.Delete)

	// Book sub-resources. /books/{book_id}/notes/ and /books/notes/{id}/
	// overlap as patterns, so the relation is dispatched here.
	mux.HandleFunc("GET /books/{book_id}/{rel}/{$}", func(w http.ResponseWriter, r *http.Request) {
		subresource(w, r, map[string]http.Handler{
			"notes": middlewares.Require(authz.NoteList, http.HandlerFunc(d.Notes.List)),
		})
	})
	mux.HandleFunc("POST /books/{book_id}/{rel}/{$}", func(w http.ResponseWriter, r *http.Request) {
		subresource(w, r, map[string]http.Handler{
			"notes": middlewares.Require(authz.NoteCreate, http.HandlerFunc(d.Notes.Create)),
		})
	})
	mux.HandleFunc("PUT /books/{book_id}/{rel}/{$}", func(w http.ResponseWriter, r *http.Request) {
		subresource(w, r, map[string]http.Handler{
			"cover": middlewares.Require(authz.BookCover, http.HandlerFunc(d.Books.UploadCover)),
		})
	})

	// Notes
	route("GET /books/notes/{id}/{$}", authz.NoteGet, d.Notes.Get)
	route("PUT /books/notes/{id}/{$}", authz.NoteUpdate, d.Notes.Put)
	route("PATCH /books/notes/{id}/{$}", authz.NoteUpdate, d.Notes.Patch)
	route("DELETE /books/notes/{id}/{$}", authz.NoteDelete, d.Notes.Delete)

	// Auth
	login := http.Handler(http.HandlerFunc(d.Auth.Token))
	if d.LoginLimit != nil {
		login = d.LoginLimit(login)
	}
	mux.Handle("POST /auth/token/{$}", middlewares.Require(authz.AuthToken, login))
	route("POST /auth/register/{$}", authz.AuthRegister, d.Auth.Register)
	route("POST /auth/token/refresh/{$}", authz.AuthRefresh, d.Auth.RefreshToken)
	route("POST /auth/logout/{$}", authz.AuthLogout, d.Auth.Logout)
	route("POST /auth/logout-all/{$}", authz.AuthLogoutAll, d.Auth.LogoutAll)
	route("GET /auth/me/{$}", authz.AuthMe, d.Auth.Me)

	mux.Handle("GET /healthz", healthz(d.Health))

	root := http.NewServeMux()
	root.Handle("/api/", mount("/api", enveloped(mux)))
	root.Handle("/", enveloped(mux))
	return root
}

// mount strips prefix before routing and remembers it so generated links
// and redirects stay under it.
func mount(prefix string, h http.Handler) http.Handler {
	strip := http.StripPrefix(prefix, h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		strip.ServeHTTP(w, r.WithContext(httpx.WithBasePath(r.Context(), prefix)))
	})
}

func subresource(w http.ResponseWriter, r *http.Request, byRel map[string]http.Handler) {
	h, ok := byRel[r.PathValue("rel")]
	if !ok {
		apperr.Write(w, r, apperr.NotFound(""))
		return
	}
	h.ServeHTTP(w, r)
}

func healthz(checks map[string]Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		out := map[string]string{}
		for name, p := range checks {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				out[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "ok"
		}
		res := map[string]any{"status": "ok", "checks": out}
		if status != http.StatusOK {
			res["status"] = "degraded"
		}
		httpx.WriteJSON(w, status, res)
	})
}

// enveloped renders the mux's own 404 and 405 replies in the error
// envelope. Responses from matched routes pass through untouched.
func enveloped(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(&fallbackWriter{ResponseWriter: w, r: r}, r)
	})
}

type fallbackWriter struct {
	http.ResponseWriter
	r        *http.Request
	replaced bool
}

func (f *fallbackWriter) WriteHeader(code int) {
	switch code {
	case http.StatusNotFound:
		f.replaced = true
		apperr.Write(f.ResponseWriter, f.r, apperr.NotFound(""))
	case http.StatusMethodNotAllowed:
		f.replaced = true
		apperr.WriteStatus(f.ResponseWriter, f.r, code, apperr.MsgMethodNotAllowed)
	default:
		f.ResponseWriter.WriteHeader(code)
	}
}

func (f *fallbackWriter) Write(b []byte) (int, error) {
	if f.replaced {
		return len(b), nil
	}
	return f.ResponseWriter.Write(b)
}
