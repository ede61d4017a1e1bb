package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// --------- Key helpers ---------

type KeyFunc func(r *http.Request) string

func PerIPKey(prefix string) KeyFunc {
	return func(r *http.Request) string {
		ip := httpx.ClientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		return prefix + ":" + ip
	}
}

func throttled(w http.ResponseWriter, r *http.Request, retrySec int64) {
	if retrySec < 1 {
		retrySec = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(retrySec, 10))
	apperr.Write(w, r, apperr.New(http.StatusTooManyRequests,
		fmt.Sprintf("Request was throttled. Expected available in %d seconds.", retrySec)))
}

// RateLimit picks the Redis token bucket when rdb is set, otherwise an
// in-process limiter. The in-process one is per instance only.
func RateLimit(rdb *redis.Client, ratePerSecond float64, burst int, log *zap.Logger) func(http.Handler) http.Handler {
	if rdb != nil {
		return NewRedisTokenBucket(rdb, ratePerSecond, burst, PerIPKey("rl:tb"), log).Middleware
	}
	return NewLocalLimiter(ratePerSecond, burst, PerIPKey("rl:local")).Middleware
}

// --------- Token Bucket (Redis + Lua) ---------

const tokenBucketLua = `
-- KEYS[1] = bucket key (hash with fields: tokens, ts)
-- ARGV[1] = ratePerS (float)
-- ARGV[2] = capacity (int)
-- Returns: {allowed (1/0), remaining_tokens (int), retry_after_ms (int)}
local key   = KEYS[1]
local rate  = tonumber(ARGV[1])
local cap   = tonumber(ARGV[2])

local t = redis.call('TIME')
local now_ms = (tonumber(t[1]) * 1000) + math.floor(tonumber(t[2]) / 1000)

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts     = tonumber(data[2])

if tokens == nil then
  tokens = cap
  ts = now_ms
end

local delta_ms = now_ms - ts
if delta_ms > 0 then
  tokens = math.min(cap, tokens + (delta_ms / 1000.0) * rate)
end

local allowed = 0
local retry_after_ms = 0
if tokens >= 1.0 then
  tokens = tokens - 1.0
  allowed = 1
else
  retry_after_ms = math.ceil((1.0 - tokens) * 1000.0 / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now_ms)
redis.call('PEXPIRE', key, math.ceil((cap / rate) * 1000.0))

return {allowed, math.floor(tokens), retry_after_ms}
`

type RedisTokenBucket struct {
	rdb      *redis.Client
	keyFn    KeyFunc
	ratePerS float64
	burst    int
	script   *redis.Script
	log      *zap.Logger
}

func NewRedisTokenBucket(rdb *redis.Client, ratePerSecond float64, burst int, keyFn KeyFunc, log *zap.Logger) *RedisTokenBucket {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisTokenBucket{
		rdb:      rdb,
		keyFn:    keyFn,
		ratePerS: ratePerSecond,
		burst:    burst,
		script:   redis.NewScript(tokenBucketLua),
		log:      log,
	}
}

func (tb *RedisTokenBucket) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := tb.keyFn(r)
		res, err := tb.script.Run(r.Context(), tb.rdb, []string{key},
			strconv.FormatFloat(tb.ratePerS, 'f', -1, 64),
			strconv.Itoa(tb.burst),
		).Int64Slice()
		if err != nil || len(res) != 3 {
			// fail open
			tb.log.Warn("token bucket unavailable", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Policy", "token-bucket")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(tb.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))

		if res[0] != 1 {
			sec := (res[2] + 999) / 1000
			tb.log.Info("rate limited", zap.String("key", key), zap.Int64("retry_after", sec))
			throttled(w, r, sec)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------- Local token bucket (x/time/rate) ---------

// LocalLimiter keeps one rate.Limiter per key in a go-cache so idle keys
// expire on their own.
type LocalLimiter struct {
	keyFn   KeyFunc
	limit   rate.Limit
	burst   int
	buckets *cache.Cache
}

func NewLocalLimiter(ratePerSecond float64, burst int, keyFn KeyFunc) *LocalLimiter {
	return &LocalLimiter{
		keyFn:   keyFn,
		limit:   rate.Limit(ratePerSecond),
		burst:   burst,
		buckets: cache.New(10*time.Minute, 5*time.Minute),
	}
}

func (l *LocalLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		l.buckets.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.buckets.Add(key, lim, cache.DefaultExpiration); err != nil {
		// lost a race; use the winner
		if v, ok := l.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (l *LocalLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := l.limiter(l.keyFn(r))
		res := lim.Reserve()
		w.Header().Set("X-RateLimit-Policy", "token-bucket")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			throttled(w, r, int64((delay+time.Second-1)/time.Second))
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
		next.ServeHTTP(w, r)
	})
}

// --------- Sliding Window (Redis ZSET) ---------

type RedisSlidingWindow struct {
	rdb    *redis.Client
	keyFn  KeyFunc
	limit  int
	window time.Duration
	log    *zap.Logger
}

func NewRedisSlidingWindow(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc, log *zap.Logger) *RedisSlidingWindow {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisSlidingWindow{rdb: rdb, keyFn: keyFn, limit: limit, window: window, log: log}
}

// Allow records a hit for key and reports whether it is within the limit,
// plus how long to wait when it is not.
func (sw *RedisSlidingWindow) Allow(ctx context.Context, key string) (bool, int, time.Duration, error) {
	now := time.Now().UnixMilli()
	windowMs := sw.window.Milliseconds()

	pipe := sw.rdb.TxPipeline()
	member := strconv.FormatInt(now, 10) + ":" + strconv.FormatInt(time.Now().UnixNano()%1_000_000, 36)
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now-windowMs, 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: member})
	countCmd := pipe.ZCard(ctx, key)
	pipe.PExpire(ctx, key, sw.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, sw.limit, 0, err
	}
	count := int(countCmd.Val())
	remaining := max(0, sw.limit-count)
	if count <= sw.limit {
		return true, remaining, 0, nil
	}

	retry := time.Second
	if oldest, err := sw.rdb.ZRangeWithScores(ctx, key, 0, 0).Result(); err == nil && len(oldest) == 1 {
		if ms := int64(oldest[0].Score) + windowMs - now; ms > 1000 {
			retry = time.Duration(ms) * time.Millisecond
		}
	}
	return false, 0, retry, nil
}

func (sw *RedisSlidingWindow) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := sw.keyFn(r)
		ok, remaining, retry, err := sw.Allow(r.Context(), key)
		if err != nil {
			sw.log.Warn("sliding window unavailable", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("X-RateLimit-Policy", "sliding-window")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(sw.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			sw.log.Info("rate limited", zap.String("key", key), zap.Duration("retry_after", retry))
			throttled(w, r, int64((retry+time.Second-1)/time.Second))
			return
		}
		next.ServeHTTP(w, r)
	})
}
