package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
	"github.com/5w1tchy/book-explorer-api/internal/authz"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type TokenParser interface {
	ParseAccess(token string) (userID int64, tokenVersion int, err error)
}

type VersionSource interface {
	TokenVersion(ctx context.Context, userID int64) (int, error)
}

// Authenticator resolves a Bearer access token to a user id. Requests with
// no Authorization header pass through anonymously; a header that is present
// but not valid is rejected even on public routes.
type Authenticator struct {
	tokens   TokenParser
	versions VersionSource
	cache    *cache.Cache
	log      *zap.Logger
}

// NewAuthenticator caches token versions for cacheTTL; zero disables caching.
func NewAuthenticator(tokens TokenParser, versions VersionSource, cacheTTL time.Duration, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Authenticator{tokens: tokens, versions: versions, log: log}
	if cacheTTL > 0 {
		a.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return a
}

// Forget drops the cached token version so a revocation applies immediately.
func (a *Authenticator) Forget(userID int64) {
	if a.cache != nil {
		a.cache.Delete(strconv.FormatInt(userID, 10))
	}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		tokenStr, err := bearer(raw)
		if err != nil {
			apperr.Write(w, r, apperr.Unauthorized(apperr.MsgInvalidToken))
			return
		}
		uid, tv, err := a.tokens.ParseAccess(tokenStr)
		if err != nil {
			apperr.Write(w, r, apperr.Unauthorized(apperr.MsgInvalidToken))
			return
		}
		current, err := a.tokenVersion(r.Context(), uid)
		if errors.Is(err, dbx.ErrNotFound) || (err == nil && current != tv) {
			apperr.Write(w, r, apperr.Unauthorized(apperr.MsgInvalidToken))
			return
		}
		if err != nil {
			a.log.Error("token version lookup failed", zap.Int64("user_id", uid), zap.Error(err))
			apperr.Write(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
	})
}

func (a *Authenticator) tokenVersion(ctx context.Context, uid int64) (int, error) {
	key := strconv.FormatInt(uid, 10)
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			return v.(int), nil
		}
	}
	tv, err := a.versions.TokenVersion(ctx, uid)
	if err != nil {
		return 0, err
	}
	if a.cache != nil {
		a.cache.SetDefault(key, tv)
	}
	return tv, nil
}

// Require gates next on the authorization rule for op.
func Require(op authz.Operation, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := UserIDFrom(r.Context())
		if err := authz.Authorize(op, ok); err != nil {
			apperr.Write(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(h string) (string, error) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("no bearer")
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", errors.New("empty bearer")
	}
	return tok, nil
}
