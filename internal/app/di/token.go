package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	tokenadapters "chart_backend/internal/feature/token/adapters"
	tokenusecase "chart_backend/internal/feature/token/usecase"
	"chart_backend/internal/shared/envconfig"
)

// NewTokenStore creates a TokenStore implementation.
// TOKEN_STORE=redis selects Redis when a client is available; otherwise the
// token row lives in PostgreSQL.
func NewTokenStore(rdb *redis.Client, db *gorm.DB) tokenusecase.TokenStore {
	kind := envconfig.String("TOKEN_STORE", "db")
	if kind == "redis" {
		if rdb != nil {
			return tokenadapters.NewTokenRedis(rdb, "kis-token")
		}
		slog.Warn("TOKEN_STORE=redis but Redis is unavailable, using database")
	}
	return tokenadapters.NewTokenGorm(db)
}
