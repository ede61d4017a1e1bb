// Package auth issues and revokes tokens and manages accounts.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
	"github.com/5w1tchy/book-explorer-api/internal/api/middlewares"
	"github.com/5w1tchy/book-explorer-api/internal/authz"
	"github.com/5w1tchy/book-explorer-api/internal/models"
	jwtutil "github.com/5w1tchy/book-explorer-api/internal/security/jwt"
	"github.com/5w1tchy/book-explorer-api/internal/security/password"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"github.com/5w1tchy/book-explorer-api/internal/validate"
	"go.uber.org/zap"
)

type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	TokenVersion(ctx context.Context, id int64) (int, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	BumpTokenVersion(ctx context.Context, id int64) (int, error)
}

type Handler struct {
	Users   UserStore
	Refresh RefreshStore
	Signer  *jwtutil.Signer
	Hasher  *password.Hasher
	Log     *zap.Logger

	// OnRevoke, when set, is told about users whose tokens were just revoked.
	OnRevoke func(userID int64)

	dummyHash string
}

func New(users UserStore, refresh RefreshStore, signer *jwtutil.Signer, hasher *password.Hasher, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{Users: users, Refresh: refresh, Signer: signer, Hasher: hasher, Log: log}
	// Verified against when the username is unknown so both paths cost one argon2 run.
	h.dummyHash, _ = hasher.Hash("not-a-real-password")
	return h
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	req.Username = validate.Sanitize(req.Username)
	req.Email = strings.ToLower(validate.Sanitize(req.Email))
	req.FirstName = validate.Sanitize(req.FirstName)
	req.LastName = validate.Sanitize(req.LastName)

	errs := validate.Struct(req)
	if errs == nil {
		errs = validate.Errors{}
	}
	if req.Password != "" {
		if err := password.Check(req.Password, req.Username, req.Email); err != nil {
			errs.Add("password", password.Message(err))
		}
	}
	if err := errs.Err(); err != nil {
		apperr.Write(w, r, err)
		return
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	u, err := h.Users.CreateUser(r.Context(), models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	})
	if errors.Is(err, dbx.ErrConflict) {
		apperr.Write(w, r, validate.Errors{"username": {"A user with that username already exists."}})
		return
	}
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	pair, err := h.issuePair(r.Context(), u.ID, u.TokenVersion)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	h.Log.Info("user registered", zap.Int64("user_id", u.ID))
	httpx.WriteJSON(w, http.StatusCreated, RegisterResponse{User: meFrom(u), TokenPair: pair})
}

// Token exchanges username and password for an access and refresh token.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		apperr.Write(w, r, errs)
		return
	}

	u, err := h.Users.FindByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, dbx.ErrNotFound) {
		apperr.Write(w, r, err)
		return
	}
	if err != nil {
		_, _, _ = h.Hasher.Verify(req.Password, h.dummyHash)
		apperr.Write(w, r, apperr.Unauthorized(apperr.MsgBadCredentials))
		return
	}
	ok, needsRehash, err := h.Hasher.Verify(req.Password, u.PasswordHash)
	if err != nil || !ok {
		apperr.Write(w, r, apperr.Unauthorized(apperr.MsgBadCredentials))
		return
	}
	if needsRehash {
		if phc, err := h.Hasher.Hash(req.Password); err == nil {
			if err := h.Users.UpdatePasswordHash(r.Context(), u.ID, phc); err != nil {
				h.Log.Warn("password rehash failed", zap.Int64("user_id", u.ID), zap.Error(err))
			}
		}
	}

	pair, err := h.issuePair(r.Context(), u.ID, u.TokenVersion)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// RefreshToken redeems a refresh token once and rotates it.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		apperr.Write(w, r, errs)
		return
	}

	ctx := r.Context()
	userID, tv, err := h.Refresh.Consume(ctx, req.Refresh)
	if errors.Is(err, ErrInvalidRefresh) {
		apperr.Write(w, r, apperr.Unauthorized(apperr.MsgInvalidToken))
		return
	}
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	current, err := h.Users.TokenVersion(ctx, userID)
	if errors.Is(err, dbx.ErrNotFound) || (err == nil && current != tv) {
		apperr.Write(w, r, apperr.Unauthorized(apperr.MsgInvalidToken))
		return
	}
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	pair, err := h.issuePair(ctx, userID, current)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// Logout revokes a single refresh token. Unknown tokens are not an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		apperr.Write(w, r, errs)
		return
	}
	if err := h.Refresh.Revoke(r.Context(), req.Refresh); err != nil {
		apperr.Write(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// LogoutAll bumps the caller's token version, which invalidates every access
// and refresh token issued so far.
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	uid, ok := middlewares.UserIDFrom(r.Context())
	if !ok {
		apperr.Write(w, r, authz.ErrUnauthenticated)
		return
	}
	if _, err := h.Users.BumpTokenVersion(r.Context(), uid); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if h.OnRevoke != nil {
		h.OnRevoke(uid)
	}
	h.Log.Info("all sessions revoked", zap.Int64("user_id", uid))
	httpx.NoContent(w)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := middlewares.UserIDFrom(r.Context())
	if !ok {
		apperr.Write(w, r, authz.ErrUnauthenticated)
		return
	}
	u, err := h.Users.FindByID(r.Context(), uid)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, meFrom(u))
}

func (h *Handler) issuePair(ctx context.Context, userID int64, tokenVersion int) (TokenPair, error) {
	access, _, err := h.Signer.SignAccess(userID, tokenVersion)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := h.Refresh.Issue(ctx, userID, tokenVersion)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func meFrom(u models.User) MeResponse {
	return MeResponse{ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
