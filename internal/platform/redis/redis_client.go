// Package redis opens the shared Redis client.
package redis

import (
	"context"
	"log/slog"
	"net"

	"github.com/redis/go-redis/v9"

	"chart_backend/internal/shared/envconfig"
)

// Config holds Redis connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LoadConfig reads REDIS_* variables.
func LoadConfig() Config {
	return Config{
		Host:     envconfig.String("REDIS_HOST", "localhost"),
		Port:     envconfig.String("REDIS_PORT", "6379"),
		Password: envconfig.String("REDIS_PASSWORD", ""),
		DB:       envconfig.Int("REDIS_DB", 0),
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewRedisClient connects and pings Redis. Callers treat an error as "Redis unavailable".
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr(), "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr())
	return rdb, nil
}
