package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/api/handlers/books"
	"github.com/5w1tchy/book-explorer-api/internal/api/handlers/notes"
	mw "github.com/5w1tchy/book-explorer-api/internal/api/middlewares"
	"github.com/5w1tchy/book-explorer-api/internal/api/router"
	"github.com/5w1tchy/book-explorer-api/internal/auth"
	"github.com/5w1tchy/book-explorer-api/internal/config"
	"github.com/5w1tchy/book-explorer-api/internal/logging"
	"github.com/5w1tchy/book-explorer-api/internal/repository/redisconnect"
	"github.com/5w1tchy/book-explorer-api/internal/repository/sqlconnect"
	jwtutil "github.com/5w1tchy/book-explorer-api/internal/security/jwt"
	"github.com/5w1tchy/book-explorer-api/internal/security/password"
	storage "github.com/5w1tchy/book-explorer-api/internal/storage/s3"
	storebooks "github.com/5w1tchy/book-explorer-api/internal/store/books"
	storenotes "github.com/5w1tchy/book-explorer-api/internal/store/notes"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env", "../../.env")
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	log := logging.New(logging.Options{
		Production: cfg.IsProduction(),
		Level:      cfg.App.LogLevel,
		FilePath:   cfg.App.LogFilePath,
	})
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	for _, w := range cfg.HardeningWarnings() {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlconnect.ConnectDB(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	if err := sqlconnect.Migrate(ctx, db); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}

	// Fail fast if Redis is configured but not reachable
	rdb, err := redisconnect.Connect(ctx, redisconnect.Options{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		User:     cfg.Redis.User,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		log.Info("connected to redis")
	}

	var covers books.Covers
	if s3cfg := (storage.Config{
		Endpoint:        cfg.S3.Endpoint,
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		UsePathStyle:    cfg.S3.Endpoint != "",
	}); s3cfg.Enabled() {
		client, err := storage.NewClient(ctx, s3cfg)
		if err != nil {
			log.Fatal("object storage setup failed", zap.Error(err))
		}
		covers = client
	}

	signer := jwtutil.NewSigner([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTTL, cfg.Auth.ClockSkew)
	hasher := password.NewHasher(password.Params{
		Memory:      cfg.Auth.Argon2Memory,
		Iterations:  cfg.Auth.Argon2Iter,
		Parallelism: cfg.Auth.Argon2Par,
	})
	users := auth.NewSQLStore(db)

	var refresh auth.RefreshStore = auth.NewMemoryRefreshStore(cfg.Auth.RefreshTTL)
	if rdb != nil {
		refresh = auth.NewRedisRefreshStore(rdb, cfg.Auth.RefreshTTL)
	}

	authn := mw.NewAuthenticator(signer, users, cfg.Auth.VersionCacheTTL, log.Named("auth"))
	authH := auth.New(users, refresh, signer, hasher, log.Named("auth"))
	authH.OnRevoke = authn.Forget

	health := map[string]router.Pinger{"database": router.PingFunc(db.PingContext)}
	if rdb != nil {
		health["redis"] = router.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	api := router.Router(router.Deps{
		Books:      books.New(storebooks.New(db), covers, log.Named("books")),
		Notes:      notes.New(storenotes.New(db), log.Named("notes")),
		Auth:       authH,
		LoginLimit: mw.LoginRateLimit(rdb, cfg.Limits.LoginMaxAttempts, cfg.Limits.LoginWindow, log),
		Health:     health,
	})

	secureMux := mw.Chain(api,
		mw.RequestID,
		mw.TrustedProxies(cfg.App.TrustedProxies),
		mw.Recovery(log),
		mw.AccessLog(log.Named("http")),
		mw.CORS(cfg.App.CORSOrigins, log),
		mw.SecurityHeaders(cfg.App.StrictSecurity),
		mw.BodySizeLimit(cfg.Limits.MaxBodySize),
		mw.HPP(mw.DefaultHPPOptions()),
		mw.RateLimit(rdb, cfg.Limits.RateLimitRPS, cfg.Limits.RateLimitBurst, log),
		mw.Compression,
		authn.Middleware,
	)

	server := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           secureMux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          zap.NewStdLog(log.Named("http.server")),
	}

	go serve(server, cfg, log)

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func serve(server *http.Server, cfg *config.Config, log *zap.Logger) {
	log.Info("server is running", zap.String("addr", server.Addr), zap.Bool("tls", cfg.App.TLSCertFile != ""))
	var err error
	if cfg.App.TLSCertFile != "" {
		err = server.ListenAndServeTLS(cfg.App.TLSCertFile, cfg.App.TLSKeyFile)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", zap.Error(err))
	}
}
