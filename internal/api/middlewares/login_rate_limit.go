package middlewares

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginRateLimit bounds credential attempts per client IP with a sliding
// window. Without Redis it falls back to an in-process limiter that allows
// max attempts per window.
func LoginRateLimit(rdb *redis.Client, max int, window time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	if rdb == nil {
		perSecond := float64(max) / window.Seconds()
		return NewLocalLimiter(perSecond, max, PerIPKey("rl:login")).Middleware
	}
	return NewRedisSlidingWindow(rdb, max, window, PerIPKey("rl:login"), log).Middleware
}
