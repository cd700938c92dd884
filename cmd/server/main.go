package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/panyam/whispr"
	"github.com/panyam/whispr/oauth2"
	gormstore "github.com/panyam/whispr/stores/gorm"
)

type Config struct {
	Addr            string        `env:"WHISPR_ADDR" envDefault:":3000"`
	DBPath          string        `env:"WHISPR_DB_PATH" envDefault:"whispr.db"`
	SessionLifetime time.Duration `env:"WHISPR_SESSION_LIFETIME" envDefault:"24h"`

	// Must be registered with the identity provider; the callback URL has
	// to match the /auth/google/secrets route exactly.
	GoogleClientID     string `env:"WHISPR_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"WHISPR_GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"WHISPR_GOOGLE_CALLBACK_URL" envDefault:"http://localhost:3000/auth/google/secrets"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// .env is optional; real environments set variables directly.
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded environment from .env")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		logger.Warn("google client credentials not set; federated login will fail")
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	// sqlite allows a single writer.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "err", err)
		os.Exit(1)
	}

	store := gormstore.NewCredentialStore(db)
	sessions := whispr.NewSessionManager(store, cfg.SessionLifetime)
	google := oauth2.NewGoogleOAuth2(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	app := whispr.New(store, sessions, google, logger)

	logger.Info("server listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Handler()); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
