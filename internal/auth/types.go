package auth

import (
	"context"
	"errors"
)

var ErrInvalidRefresh = errors.New("invalid refresh token")

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type MeResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RegisterResponse struct {
	User MeResponse `json:"user"`
	TokenPair
}

// RefreshStore is the server-side allowlist of opaque refresh tokens.
type RefreshStore interface {
	Issue(ctx context.Context, userID int64, tokenVersion int) (string, error)
	// Consume deletes the token and returns what it was bound to.
	Consume(ctx context.Context, token string) (userID int64, tokenVersion int, err error)
	Revoke(ctx context.Context, token string) error
}
