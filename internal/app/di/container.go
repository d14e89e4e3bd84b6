package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chart_backend/internal/app/router"
	backtestadapters "chart_backend/internal/feature/backtest/adapters"
	backtesthandler "chart_backend/internal/feature/backtest/transport/handler"
	backtestusecase "chart_backend/internal/feature/backtest/usecase"
	candleadapters "chart_backend/internal/feature/candles/adapters"
	candleshandler "chart_backend/internal/feature/candles/transport/handler"
	candleusecase "chart_backend/internal/feature/candles/usecase"
	markethandler "chart_backend/internal/feature/market/transport/handler"
	marketusecase "chart_backend/internal/feature/market/usecase"
	patternhandler "chart_backend/internal/feature/patterns/transport/handler"
	patternusecase "chart_backend/internal/feature/patterns/usecase"
	portfolioadapters "chart_backend/internal/feature/portfolio/adapters"
	portfoliohandler "chart_backend/internal/feature/portfolio/transport/handler"
	portfoliousecase "chart_backend/internal/feature/portfolio/usecase"
	rankingadapters "chart_backend/internal/feature/ranking/adapters"
	rankinghandler "chart_backend/internal/feature/ranking/transport/handler"
	rankingusecase "chart_backend/internal/feature/ranking/usecase"
	symbollistadapters "chart_backend/internal/feature/symbollist/adapters"
	symbollisthandler "chart_backend/internal/feature/symbollist/transport/handler"
	symbollistusecase "chart_backend/internal/feature/symbollist/usecase"
	watchlistadapters "chart_backend/internal/feature/watchlist/adapters"
	watchlisthandler "chart_backend/internal/feature/watchlist/transport/handler"
	watchlistusecase "chart_backend/internal/feature/watchlist/usecase"
	"chart_backend/internal/platform/cache"
	healthhandler "chart_backend/internal/platform/http/handler"
	"chart_backend/internal/shared/envconfig"
)

const defaultMasterTimeout = 60 * time.Second

// Container holds the wired usecases shared by cmd/server and cmd/ingest.
type Container struct {
	DB    *gorm.DB
	Redis *redis.Client // nil when Redis is unavailable

	KIS       *KIS
	Collector *candleusecase.Collector
	Ranking   *rankingusecase.RankingRefresher
	Symbols   *symbollistusecase.SymbolUsecase

	candles candleusecase.CandleStore
	history backtestusecase.HistoryStore
}

// NewContainer wires repositories, the Redis read-through cache and the KIS adapters.
func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	kisAdapters := NewKIS(NewTokenStore(rdb, db))

	// Redisキャッシュでラップ（rdb が nil の場合は素通し）
	ttl := envconfig.Duration("CANDLE_CACHE_TTL", cache.DefaultTTL)
	candles := cache.NewCachingCandleStore(rdb, ttl, candleadapters.NewCandleRepository(db), "candles")

	return &Container{
		DB:        db,
		Redis:     rdb,
		KIS:       kisAdapters,
		Collector: candleusecase.NewCollector(kisAdapters.Market, candles, nil, candleusecase.LoadCollectorConfig()),
		Ranking:   rankingusecase.NewRankingRefresher(kisAdapters.Ranking, rankingadapters.NewRankingRepository(db), nil),
		Symbols:   symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(db), kisAdapters.Master),
		candles:   candles,
		history:   backtestadapters.NewHistoryRepository(db),
	}
}

// Handlers builds the HTTP handlers for router.NewRouter.
func (c *Container) Handlers() router.Handlers {
	candlesUC := candleusecase.NewCandlesUsecase(c.candles)

	checks := map[string]healthhandler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}

	// 保有銘柄の時価はランキングと同じ現在値APIで取得する
	quotes := portfoliousecase.PriceFunc(func(ctx context.Context, symbol string) (int64, error) {
		q, err := c.KIS.Ranking.FetchQuote(ctx, symbol)
		return q.Price, err
	})

	return router.Handlers{
		Candles:      candleshandler.NewCandlesHandler(candlesUC),
		Admin:        candleshandler.NewAdminHandler(c.Collector, c.Symbols),
		Patterns:     patternhandler.NewPatternHandler(patternusecase.NewPatternUsecase(candlesUC)),
		Ranking:      rankinghandler.NewRankingHandler(c.Ranking),
		RankingAdmin: rankinghandler.NewRankingAdminHandler(c.Ranking),
		Backtest:     backtesthandler.NewBacktestHandler(backtestusecase.NewBacktestUsecase(c.candles, c.history)),
		Symbols:      symbollisthandler.NewSymbolHandler(c.Symbols),
		Market:       markethandler.NewMarketHandler(marketusecase.NewMarketUsecase(c.KIS.Index, NewRateSources()...)),
		Watchlist:    watchlisthandler.NewWatchlistHandler(watchlistusecase.NewWatchlistUsecase(watchlistadapters.NewWatchlistRepository(c.DB), c.candles)),
		Portfolio:    portfoliohandler.NewPortfolioHandler(portfoliousecase.NewPortfolioUsecase(portfolioadapters.NewHoldingRepository(c.DB), quotes, nil)),
		Ready:        healthhandler.Ready(checks),
	}
}
