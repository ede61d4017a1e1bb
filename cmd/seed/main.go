package main

import (
	"context"

	"github.com/5w1tchy/book-explorer-api/internal/auth"
	"github.com/5w1tchy/book-explorer-api/internal/config"
	"github.com/5w1tchy/book-explorer-api/internal/logging"
	"github.com/5w1tchy/book-explorer-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/book-explorer-api/internal/security/password"
	"github.com/5w1tchy/book-explorer-api/internal/seed"
	storebooks "github.com/5w1tchy/book-explorer-api/internal/store/books"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env", "../../.env")
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}
	log := logging.New(logging.Options{Level: cfg.App.LogLevel})
	defer log.Sync()

	ctx := context.Background()
	db, err := sqlconnect.ConnectDB(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	if err := sqlconnect.Migrate(ctx, db); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}

	hasher := password.NewHasher(password.Params{
		Memory:      cfg.Auth.Argon2Memory,
		Iterations:  cfg.Auth.Argon2Iter,
		Parallelism: cfg.Auth.Argon2Par,
	})
	res, err := seed.Run(ctx, auth.NewSQLStore(db), storebooks.New(db), hasher, log)
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed complete", zap.Int("users", res.UsersCreated), zap.Int("books", res.BooksCreated))
}
