package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestSignAndParse(t *testing.T) {
	s := NewSigner(secret, time.Minute, 0)
	tok, jti, err := s.SignAccess(42, 3)
	require.NoError(t, err)
	assert.Len(t, jti, 32)

	id, tv, err := s.ParseAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, 3, tv)
}

func TestParse_Expired(t *testing.T) {
	s := NewSigner(secret, time.Minute, 0)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := s.SignAccess(1, 0)
	require.NoError(t, err)

	s.now = time.Now
	_, _, err = s.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecretOrGarbage(t *testing.T) {
	a := NewSigner(secret, time.Minute, 0)
	b := NewSigner([]byte("another-secret-another-secret-xx"), time.Minute, 0)
	tok, _, err := a.SignAccess(1, 0)
	require.NoError(t, err)

	_, _, err = b.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = a.ParseAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	s := NewSigner(secret, time.Minute, 0)
	claims := newAccessClaims("1", "x", 0, time.Now(), time.Minute)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, _, err = s.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsNonAccessType(t *testing.T) {
	s := NewSigner(secret, time.Minute, 0)
	claims := newAccessClaims("1", "x", 0, time.Now(), time.Minute)
	claims.TokenType = "refresh"
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, _, err = s.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
