package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"chart_backend/internal/app/di"
	"chart_backend/internal/app/router"
	infradb "chart_backend/internal/platform/db"
	infraredis "chart_backend/internal/platform/redis"
	"chart_backend/internal/shared/envconfig"
)

const (
	shutdownTimeout   = 15 * time.Second
	masterSyncTimeout = 5 * time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig()); err != nil {
		slog.Warn("Redis unavailable. Running without cache.")
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	c := di.NewContainer(db, rdb)

	// 銘柄マスタが空なら起動時に取得する
	if envconfig.String("SYNC_SYMBOL_MASTER", "true") == "true" {
		go func() {
			syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), masterSyncTimeout)
			defer cancel()
			if _, err := c.Symbols.EnsureMaster(syncCtx); err != nil {
				slog.Error("symbol master sync failed", "error", err)
			}
		}()
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("JWT_SECRET") == "" {
		slog.Warn("JWT_SECRET is not set. Protected routes will answer 500.")
	}

	srv := &http.Server{
		Addr:              ":" + envconfig.String("PORT", "8080"),
		Handler:           router.NewRouter(c.Handlers()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
