package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/api/handlers/books"
	"github.com/5w1tchy/book-explorer-api/internal/api/handlers/notes"
	"github.com/5w1tchy/book-explorer-api/internal/auth"
	"github.com/5w1tchy/book-explorer-api/internal/models"
	jwtutil "github.com/5w1tchy/book-explorer-api/internal/security/jwt"
	"github.com/5w1tchy/book-explorer-api/internal/security/password"
	storebooks "github.com/5w1tchy/book-explorer-api/internal/store/books"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyBooks struct{}

func (emptyBooks) List(context.Context, storebooks.ListParams) (storebooks.Page, error) {
	return storebooks.Page{}, nil
}
func (emptyBooks) Get(context.Context, int64) (models.Book, error) { return models.Book{}, dbx.ErrNotFound }
func (emptyBooks) Create(context.Context, *models.Book) error      { return nil }
func (emptyBooks) Update(context.Context, int64, func(*models.Book) error) (models.Book, error) {
	return models.Book{}, dbx.ErrNotFound
}
func (emptyBooks) Delete(context.Context, int64) (*string, error) { return nil, dbx.ErrNotFound }
func (emptyBooks) SetCover(context.Context, int64, string) (*string, error) {
	return nil, dbx.ErrNotFound
}

type pagedBooks struct{ emptyBooks }

func (pagedBooks) List(context.Context, storebooks.ListParams) (storebooks.Page, error) {
	return storebooks.Page{Count: 50}, nil
}

func testRouter(t *testing.T, health map[string]Pinger) http.Handler {
	t.Helper()
	return testRouterWith(t, emptyBooks{}, health)
}

func testRouterWith(t *testing.T, store books.Store, health map[string]Pinger) http.Handler {
	t.Helper()
	signer := jwtutil.NewSigner([]byte("router-test-secret-router-test"), time.Minute, 0)
	hasher := password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1})
	return Router(Deps{
		Books:  books.New(store, nil, nil),
		Notes:  notes.New(nil, nil),
		Auth:   auth.New(nil, nil, signer, hasher, nil),
		Health: health,
	})
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func envelopeStatus(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Error struct {
			StatusCode int `json:"status_code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.StatusCode
}

func TestRoutes(t *testing.T) {
	h := testRouter(t, nil)

	for _, tc := range []struct {
		method, target string
		want           int
	}{
		{http.MethodGet, "/books/", http.StatusOK},
		{http.MethodGet, "/api/books/", http.StatusOK},
		{http.MethodGet, "/books/choices/", http.StatusOK},
		{http.MethodGet, "/api/books/choices/", http.StatusOK},
		{http.MethodGet, "/books/7/", http.StatusNotFound},
		{http.MethodGet, "/books/abc/", http.StatusNotFound},
		{http.MethodPost, "/books/", http.StatusUnauthorized},
		{http.MethodGet, "/books/1/notes/", http.StatusUnauthorized},
		{http.MethodPost, "/books/1/notes/", http.StatusUnauthorized},
		{http.MethodGet, "/books/notes/1/", http.StatusUnauthorized},
		{http.MethodDelete, "/books/notes/1/", http.StatusUnauthorized},
		{http.MethodGet, "/auth/me/", http.StatusUnauthorized},
		{http.MethodPost, "/auth/logout-all/", http.StatusUnauthorized},
		{http.MethodGet, "/books/1/chapters/", http.StatusNotFound},
	} {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			assert.Equal(t, tc.want, do(h, tc.method, tc.target).Code)
		})
	}
}

func TestLegacyRedirect(t *testing.T) {
	rec := do(testRouter(t, nil), http.MethodGet, "/books")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/books/", rec.Header().Get("Location"))

	rec = do(testRouter(t, nil), http.MethodGet, "/api/books")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/api/books/", rec.Header().Get("Location"))
}

func TestPageLinksKeepMountPrefix(t *testing.T) {
	h := testRouterWith(t, pagedBooks{}, nil)

	links := func(target string) (next, previous any) {
		rec := do(h, http.MethodGet, target)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body["next"], body["previous"]
	}

	next, prev := links("http://api.test/api/books/?page=2&page_size=10")
	assert.Equal(t, "http://api.test/api/books/?page=3&page_size=10", next)
	assert.Equal(t, "http://api.test/api/books/?page_size=10", prev)

	next, prev = links("http://api.test/books/?page=2&page_size=10")
	assert.Equal(t, "http://api.test/books/?page=3&page_size=10", next)
	assert.Equal(t, "http://api.test/books/?page_size=10", prev)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	h := testRouter(t, nil)

	rec := do(h, http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, envelopeStatus(t, rec))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = do(h, http.MethodPost, "/books/choices/")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, envelopeStatus(t, rec))
}

func TestHealthz(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	rec := do(testRouter(t, map[string]Pinger{"db": ok, "redis": ok}), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"db":"ok","redis":"ok"}}`, rec.Body.String())

	rec = do(testRouter(t, map[string]Pinger{"db": ok, "redis": down}), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"db":"ok","redis":"down"}}`, rec.Body.String())
}
