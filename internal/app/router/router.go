// Package router builds the gin engine and its route table.
package router

import (
	"github.com/gin-gonic/gin"

	backtesthandler "chart_backend/internal/feature/backtest/transport/handler"
	candleshandler "chart_backend/internal/feature/candles/transport/handler"
	markethandler "chart_backend/internal/feature/market/transport/handler"
	patternhandler "chart_backend/internal/feature/patterns/transport/handler"
	portfoliohandler "chart_backend/internal/feature/portfolio/transport/handler"
	rankinghandler "chart_backend/internal/feature/ranking/transport/handler"
	symbollisthandler "chart_backend/internal/feature/symbollist/transport/handler"
	watchlisthandler "chart_backend/internal/feature/watchlist/transport/handler"
	"chart_backend/internal/platform/http/handler"
	jwtmw "chart_backend/internal/platform/jwt"
)

// Handlers are the feature handlers mounted by NewRouter.
type Handlers struct {
	Candles      *candleshandler.CandlesHandler
	Admin        *candleshandler.AdminHandler
	Patterns     *patternhandler.PatternHandler
	Ranking      *rankinghandler.RankingHandler
	RankingAdmin *rankinghandler.RankingAdminHandler
	Backtest     *backtesthandler.BacktestHandler
	Symbols      *symbollisthandler.SymbolHandler
	Market       *markethandler.MarketHandler
	Watchlist    *watchlisthandler.WatchlistHandler
	Portfolio    *portfoliohandler.PortfolioHandler
	Ready        gin.HandlerFunc
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	if h.Ready != nil {
		r.GET("/readyz", h.Ready)
	}

	// 参照系: トークンがあればユーザーIDを設定し、なくても通す
	public := r.Group("/")
	public.Use(jwtmw.OptionalAuth())
	{
		public.GET("/candles/:code", h.Candles.GetCandlesHandler)
		public.GET("/candles/:code/analysis", h.Patterns.Analyze)
		public.GET("/ranking", h.Ranking.List)
		public.GET("/symbols", h.Symbols.List)
		public.GET("/market/indices", h.Market.Indices)
		public.GET("/market/exchange-rate", h.Market.ExchangeRate)
		// ログイン中のみ履歴として保存される
		public.POST("/backtest/allocation", h.Backtest.Run)
	}

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.GET("/backtest/history", h.Backtest.History)

		auth.GET("/watchlist", h.Watchlist.List)
		auth.POST("/watchlist", h.Watchlist.Add)
		auth.GET("/watchlist/:code", h.Watchlist.Check)
		auth.DELETE("/watchlist/:code", h.Watchlist.Remove)

		auth.GET("/portfolio", h.Portfolio.List)
		auth.POST("/portfolio", h.Portfolio.Add)
		auth.DELETE("/portfolio/:id", h.Portfolio.Delete)

		admin := auth.Group("/admin")
		admin.POST("/init-all", h.Admin.InitAll)
		admin.POST("/update-daily", h.Admin.UpdateDaily)
		admin.POST("/recalc-ma", h.Admin.RecalculateMA)
		admin.POST("/ranking/refresh", h.RankingAdmin.Refresh)
	}

	return r
}
