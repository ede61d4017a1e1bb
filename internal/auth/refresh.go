package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	jwtutil "github.com/5w1tchy/book-explorer-api/internal/security/jwt"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const refreshPrefix = "rt:"

// RedisRefreshStore keeps refresh tokens as rt:<token> -> "userID|tokenVersion".
type RedisRefreshStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRefreshStore(rdb *redis.Client, ttl time.Duration) *RedisRefreshStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisRefreshStore{rdb: rdb, ttl: ttl}
}

func (s *RedisRefreshStore) Issue(ctx context.Context, userID int64, tokenVersion int) (string, error) {
	if s.rdb == nil {
		return "", errors.New("redis not configured")
	}
	token, err := jwtutil.RandomHex(32)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, refreshPrefix+token, encodeBinding(userID, tokenVersion), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume uses GETDEL so a token can be redeemed once even under a race.
func (s *RedisRefreshStore) Consume(ctx context.Context, token string) (int64, int, error) {
	if s.rdb == nil || token == "" {
		return 0, 0, ErrInvalidRefresh
	}
	val, err := s.rdb.GetDel(ctx, refreshPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, ErrInvalidRefresh
	}
	if err != nil {
		return 0, 0, err
	}
	return decodeBinding(val)
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, token string) error {
	if s.rdb == nil || token == "" {
		return nil
	}
	return s.rdb.Del(ctx, refreshPrefix+token).Err()
}

func encodeBinding(userID int64, tokenVersion int) string {
	return strconv.FormatInt(userID, 10) + "|" + strconv.Itoa(tokenVersion)
}

func decodeBinding(val string) (int64, int, error) {
	uid, tv, ok := strings.Cut(val, "|")
	if !ok {
		return 0, 0, ErrInvalidRefresh
	}
	id, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return 0, 0, ErrInvalidRefresh
	}
	ver, err := strconv.Atoi(tv)
	if err != nil {
		return 0, 0, ErrInvalidRefresh
	}
	return id, ver, nil
}

// MemoryRefreshStore is the single-process fallback used when Redis is not
// configured. Tokens do not survive a restart.
type MemoryRefreshStore struct {
	mu sync.Mutex
	c  *cache.Cache
}

func NewMemoryRefreshStore(ttl time.Duration) *MemoryRefreshStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &MemoryRefreshStore{c: cache.New(ttl, time.Hour)}
}

func (s *MemoryRefreshStore) Issue(_ context.Context, userID int64, tokenVersion int) (string, error) {
	token, err := jwtutil.RandomHex(32)
	if err != nil {
		return "", err
	}
	s.c.SetDefault(token, encodeBinding(userID, tokenVersion))
	return token, nil
}

func (s *MemoryRefreshStore) Consume(_ context.Context, token string) (int64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.c.Get(token)
	if !ok {
		return 0, 0, ErrInvalidRefresh
	}
	s.c.Delete(token)
	return decodeBinding(v.(string))
}

func (s *MemoryRefreshStore) Revoke(_ context.Context, token string) error {
	s.c.Delete(token)
	return nil
}
