// Package db opens the PostgreSQL connection and runs schema migrations.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	backtestadapters "chart_backend/internal/feature/backtest/adapters"
	candleadapters "chart_backend/internal/feature/candles/adapters"
	portfolioadapters "chart_backend/internal/feature/portfolio/adapters"
	rankingadapters "chart_backend/internal/feature/ranking/adapters"
	symbolentity "chart_backend/internal/feature/symbollist/domain/entity"
	tokenadapters "chart_backend/internal/feature/token/adapters"
	watchlistadapters "chart_backend/internal/feature/watchlist/adapters"
	"chart_backend/internal/shared/envconfig"
)

const (
	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Config holds PostgreSQL connection settings.
type Config struct {
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	SSLMode       string
	TimeZone      string
	RunMigrations bool
}

// Opener opens a gorm connection for a DSN. Tests replace it to avoid a real database.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv reads DB_* variables.
func LoadConfigFromEnv() Config {
	return Config{
		User:          envconfig.String("DB_USER", "postgres"),
		Password:      envconfig.String("DB_PASSWORD", ""),
		Name:          envconfig.String("DB_NAME", "chart"),
		Host:          envconfig.String("DB_HOST", "localhost"),
		Port:          envconfig.String("DB_PORT", "5432"),
		SSLMode:       envconfig.String("DB_SSLMODE", "disable"),
		TimeZone:      envconfig.String("DB_TIMEZONE", "Asia/Seoul"),
		RunMigrations: envconfig.String("RUN_MIGRATIONS", "") == "true",
	}
}

// BuildDSN returns a libpq keyword/value connection string.
func BuildDSN(cfg Config) string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Name, cfg.SSLMode)
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}
	if cfg.TimeZone != "" {
		dsn += " TimeZone=" + cfg.TimeZone
	}
	return dsn
}

// ConnectWithRetry calls open at a fixed interval until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	var conn *gorm.DB
	b := retry.WithMaxDuration(timeout, retry.NewConstant(retryInterval))
	err := retry.Do(context.Background(), b, func(ctx context.Context) error {
		db, err := open(dsn)
		if err != nil {
			slog.Warn("DB connect failed, retrying", "error", err)
			return retry.RetryableError(err)
		}
		conn = db
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
	}
	return conn, nil
}

// OpenDB connects to PostgreSQL and, when RUN_MIGRATIONS=true, migrates every table.
func OpenDB(cfg Config) (*gorm.DB, error) {
	conn, err := ConnectWithRetry(BuildDSN(cfg), connectTimeout, func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	})
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := Migrate(conn); err != nil {
			return nil, err
		}
	}
	slog.Info("DB connection successful", "host", cfg.Host, "name", cfg.Name)
	return conn, nil
}

// Migrate creates or updates all tables owned by the service.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&candleadapters.CandleModel{},
		&tokenadapters.TokenModel{},
		&rankingadapters.RankingModel{},
		&backtestadapters.HistoryModel{},
		&symbolentity.Symbol{},
		&watchlistadapters.WatchlistModel{},
		&portfolioadapters.HoldingModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
