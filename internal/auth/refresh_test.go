package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRefreshStore(t *testing.T) {
	s := NewMemoryRefreshStore(time.Hour)
	ctx := context.Background()

	tok, err := s.Issue(ctx, 7, 2)
	require.NoError(t, err)
	assert.Len(t, tok, 64)

	uid, tv, err := s.Consume(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), uid)
	assert.Equal(t, 2, tv)

	_, _, err = s.Consume(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	tok, err = s.Issue(ctx, 7, 2)
	require.NoError(t, err)
	require.NoError(t, s.Revoke(ctx, tok))
	_, _, err = s.Consume(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRedisRefreshStore_NoClient(t *testing.T) {
	s := NewRedisRefreshStore(nil, 0)
	_, err := s.Issue(context.Background(), 1, 1)
	assert.Error(t, err)
	_, _, err = s.Consume(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
	assert.NoError(t, s.Revoke(context.Background(), "x"))
}
