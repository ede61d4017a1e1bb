// Package config reads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Limits   LimitsConfig
	S3       S3Config
}

type AppConfig struct {
	Env            string
	Addr           string
	TLSCertFile    string
	TLSKeyFile     string
	CORSOrigins    []string
	// TrustedProxies are the peers whose X-Forwarded-* headers are honoured.
	TrustedProxies []netip.Prefix
	LogFilePath    string
	LogLevel       string
	StrictSecurity bool
}

type DatabaseConfig struct {
	URL string
}

// RedisConfig accepts either a URL or split address fields.
type RedisConfig struct {
	URL      string
	Addr     string
	User     string
	Password string
}

func (r RedisConfig) Enabled() bool { return r.URL != "" || r.Addr != "" }

type AuthConfig struct {
	JWTSecret       string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	ClockSkew       time.Duration
	VersionCacheTTL time.Duration
	Argon2Memory    uint32
	Argon2Iter      uint32
	Argon2Par       uint8

	argon2Explicit bool
}

type LimitsConfig struct {
	MaxBodySize      int64
	RateLimitRPS     float64
	RateLimitBurst   int
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

func (c *Config) IsProduction() bool { return strings.EqualFold(c.App.Env, "production") }

// Load reads .env files (missing files are fine) and then the environment.
// Malformed values are reported together.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	p := &parser{}
	cfg := &Config{
		App: AppConfig{
			Env:            getEnv("APP_ENV", "development"),
			Addr:           getEnv("APP_ADDR", ":3000"),
			TLSCertFile:    getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:     getEnv("TLS_KEY_FILE", ""),
			CORSOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
			TrustedProxies: p.asPrefixes("TRUSTED_PROXIES"),
			LogFilePath:    getEnv("LOG_FILE_PATH", ""),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			StrictSecurity: p.asBool("STRICT_SECURITY", false),
		},
		Database: DatabaseConfig{URL: getEnv("DATABASE_URL", "")},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Addr:     getEnv("REDIS_ADDR", ""),
			User:     getEnv("REDIS_USER", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("AUTH_JWT_SECRET", ""),
			AccessTTL:       p.asDuration("AUTH_ACCESS_TTL", 15*time.Minute),
			RefreshTTL:      p.asDuration("AUTH_REFRESH_TTL", 720*time.Hour),
			ClockSkew:       time.Duration(p.asInt("AUTH_CLOCK_SKEW_SEC", 30)) * time.Second,
			VersionCacheTTL: p.asDuration("AUTH_VERSION_CACHE_TTL", 30*time.Second),
			Argon2Memory:    uint32(p.asInt("ARGON2_MEMORY", 131072)),
			Argon2Iter:      uint32(p.asInt("ARGON2_ITER", 3)),
			Argon2Par:       uint8(p.asInt("ARGON2_PAR", 1)),
			argon2Explicit:  os.Getenv("ARGON2_MEMORY") != "" && os.Getenv("ARGON2_ITER") != "",
		},
		Limits: LimitsConfig{
			MaxBodySize:      int64(p.asInt("MAX_BODY_SIZE", 10<<20)),
			RateLimitRPS:     p.asFloat("RATE_LIMIT_RPS", 5),
			RateLimitBurst:   p.asInt("RATE_LIMIT_BURST", 20),
			LoginMaxAttempts: p.asInt("LOGIN_MAX_ATTEMPTS", 10),
			LoginWindow:      p.asDuration("LOGIN_WINDOW", 5*time.Minute),
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on configuration the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be at least 32 characters"))
	}
	if c.Auth.AccessTTL <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TTL must be positive"))
	}
	if c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("AUTH_REFRESH_TTL must be positive"))
	}
	if c.Auth.Argon2Memory < 65536 {
		errs = append(errs, errors.New("ARGON2_MEMORY must be at least 65536 (64MiB)"))
	}
	if c.Auth.Argon2Iter < 2 {
		errs = append(errs, errors.New("ARGON2_ITER must be at least 2"))
	}
	if c.Auth.Argon2Par < 1 {
		errs = append(errs, errors.New("ARGON2_PAR must be at least 1"))
	}
	if (c.App.TLSCertFile == "") != (c.App.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if c.Limits.MaxBodySize <= 0 {
		errs = append(errs, errors.New("MAX_BODY_SIZE must be positive"))
	}
	if c.Redis.Addr != "" && c.Redis.URL != "" {
		errs = append(errs, errors.New("set REDIS_URL or REDIS_ADDR, not both"))
	}
	return errors.Join(errs...)
}

// HardeningWarnings returns non-fatal warnings to log on startup.
func (c *Config) HardeningWarnings() []string {
	var warns []string

	if c.Auth.AccessTTL > time.Hour {
		warns = append(warns, fmt.Sprintf("AUTH_ACCESS_TTL=%s is > 1h; consider shorter access tokens", c.Auth.AccessTTL))
	}
	if c.Auth.RefreshTTL < 24*time.Hour {
		warns = append(warns, fmt.Sprintf("AUTH_REFRESH_TTL=%s is < 24h; users may be logged out too often", c.Auth.RefreshTTL))
	}
	if !c.Redis.Enabled() {
		warns = append(warns, "no Redis configured; refresh tokens are disabled and rate limits are per process")
	}

	if c.IsProduction() {
		if !c.Auth.argon2Explicit {
			warns = append(warns, "ARGON2_* not explicitly set; using code defaults. Set strong values in production")
		}
		if strings.HasPrefix(c.Redis.URL, "redis://") {
			warns = append(warns, "REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
		}
		if c.Redis.Addr != "" && (c.Redis.User == "" || c.Redis.Password == "") {
			warns = append(warns, "REDIS_ADDR provided without REDIS_USER/REDIS_PASSWORD; require auth in production")
		}
		if c.App.TLSCertFile == "" {
			warns = append(warns, "TLS_CERT_FILE not set; serving plain HTTP")
		}
		for _, o := range c.App.CORSOrigins {
			if o == "*" {
				warns = append(warns, "CORS_ALLOWED_ORIGINS contains *; restrict it in production")
			}
		}
	}
	return warns
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser collects conversion errors instead of stopping at the first one.
type parser struct{ errs []error }

func (p *parser) asInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) asFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) asBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) asDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

// asPrefixes reads a comma separated list of CIDRs or bare addresses.
func (p *parser) asPrefixes(key string) []netip.Prefix {
	var out []netip.Prefix
	for _, raw := range splitList(os.Getenv(key)) {
		if strings.Contains(raw, "/") {
			pfx, err := netip.ParsePrefix(raw)
			if err != nil {
				p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
				continue
			}
			out = append(out, pfx.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}
