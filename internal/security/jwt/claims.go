package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims carries the user id in sub and the user's token version in tv.
// Bumping the stored version invalidates every access token already issued.
type AccessClaims struct {
	TokenVersion int    `json:"tv"`
	TokenType    string `json:"token_type"`
	jwt.RegisteredClaims
}

func newAccessClaims(subject, jti string, tokenVersion int, now time.Time, ttl time.Duration) AccessClaims {
	return AccessClaims{
		TokenVersion: tokenVersion,
		TokenType:    "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
