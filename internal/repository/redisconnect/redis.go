// Package redisconnect builds the shared go-redis client.
package redisconnect

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	URL      string // redis:// or rediss://
	Addr     string // host:port, used when URL is empty
	User     string
	Password string
}

// Connect returns nil, nil when neither URL nor Addr is set; callers treat a
// nil client as "Redis disabled".
func Connect(ctx context.Context, o Options) (*redis.Client, error) {
	opt, err := clientOptions(o)
	if err != nil || opt == nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func clientOptions(o Options) (*redis.Options, error) {
	switch {
	case o.URL != "":
		opt, err := redis.ParseURL(o.URL) // e.g. rediss://default:<token>@host:port
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		if opt.TLSConfig != nil && opt.TLSConfig.MinVersion == 0 {
			opt.TLSConfig.MinVersion = tls.VersionTLS12
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = 1 * time.Second
		opt.WriteTimeout = 1 * time.Second
		return opt, nil
	case o.Addr != "":
		opt := &redis.Options{
			Addr:         o.Addr,
			Username:     o.User,
			Password:     o.Password,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		}
		// Managed Redis with credentials is reached over TLS.
		if o.User != "" && o.Password != "" {
			opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		return opt, nil
	}
	return nil, nil
}
