package jwtutil

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Signer struct {
	secret    []byte
	skew      time.Duration
	accessTTL time.Duration
	now       func() time.Time
}

func NewSigner(secret []byte, accessTTL, skew time.Duration) *Signer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &Signer{secret: secret, skew: skew, accessTTL: accessTTL, now: time.Now}
}

func (s *Signer) AccessTTL() time.Duration { return s.accessTTL }

// SignAccess returns (tokenString, jti).
func (s *Signer) SignAccess(userID int64, tokenVersion int) (string, string, error) {
	jti, err := RandomHex(16)
	if err != nil {
		return "", "", err
	}
	claims := newAccessClaims(strconv.FormatInt(userID, 10), jti, tokenVersion, s.now(), s.accessTTL)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return tok, jti, err
}

// ParseAccess verifies the HS256 signature and expiry (with leeway) and
// returns the user id and token version.
func (s *Signer) ParseAccess(tokenStr string) (userID int64, tokenVersion int, err error) {
	parser := jwt.NewParser(
		jwt.WithLeeway(s.skew),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	var claims AccessClaims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.TokenType != "access" {
		return 0, 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id < 1 {
		return 0, 0, ErrInvalidToken
	}
	return id, claims.TokenVersion, nil
}

// RandomHex returns n random bytes hex encoded.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
