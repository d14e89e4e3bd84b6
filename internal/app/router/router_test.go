package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	backtesthandler "chart_backend/internal/feature/backtest/transport/handler"
	candleshandler "chart_backend/internal/feature/candles/transport/handler"
	markethandler "chart_backend/internal/feature/market/transport/handler"
	patternhandler "chart_backend/internal/feature/patterns/transport/handler"
	portfoliohandler "chart_backend/internal/feature/portfolio/transport/handler"
	rankinghandler "chart_backend/internal/feature/ranking/transport/handler"
	symbollisthandler "chart_backend/internal/feature/symbollist/transport/handler"
	watchlisthandler "chart_backend/internal/feature/watchlist/transport/handler"
	jwtmw "chart_backend/internal/platform/jwt"
)

// newTestRouter はユースケースなしのハンドラーで経路表だけを組み立てます。
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(Handlers{
		Candles:      candleshandler.NewCandlesHandler(nil),
		Admin:        candleshandler.NewAdminHandler(nil, nil),
		Patterns:     patternhandler.NewPatternHandler(nil),
		Ranking:      rankinghandler.NewRankingHandler(nil),
		RankingAdmin: rankinghandler.NewRankingAdminHandler(nil),
		Backtest:     backtesthandler.NewBacktestHandler(nil),
		Symbols:      symbollisthandler.NewSymbolHandler(nil),
		Market:       markethandler.NewMarketHandler(nil),
		Watchlist:    watchlisthandler.NewWatchlistHandler(nil),
		Portfolio:    portfoliohandler.NewPortfolioHandler(nil),
		Ready:        func(c *gin.Context) { c.Status(http.StatusOK) },
	})
}

func TestNewRouter_Routes(t *testing.T) {
	r := newTestRouter()

	got := map[string]bool{}
	for _, rt := range r.Routes() {
		got[rt.Method+" "+rt.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"HEAD /healthz",
		"GET /readyz",
		"GET /candles/:code",
		"GET /candles/:code/analysis",
		"GET /ranking",
		"GET /symbols",
		"POST /backtest/allocation",
		"GET /market/indices",
		"GET /market/exchange-rate",
		"GET /backtest/history",
		"GET /watchlist",
		"POST /watchlist",
		"GET /watchlist/:code",
		"DELETE /watchlist/:code",
		"GET /portfolio",
		"POST /portfolio",
		"DELETE /portfolio/:id",
		"POST /admin/init-all",
		"POST /admin/update-daily",
		"POST /admin/recalc-ma",
		"POST /admin/ranking/refresh",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
}

func TestNewRouter_ProtectedRoutesRequireToken(t *testing.T) {
	t.Setenv(jwtmw.EnvKeyJWTSecret, "router-secret")
	r := newTestRouter()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/backtest/history"},
		{http.MethodGet, "/watchlist"},
		{http.MethodPost, "/watchlist"},
		{http.MethodGet, "/watchlist/005930"},
		{http.MethodDelete, "/watchlist/005930"},
		{http.MethodGet, "/portfolio"},
		{http.MethodPost, "/portfolio"},
		{http.MethodDelete, "/portfolio/1"},
		{http.MethodPost, "/admin/init-all?confirm=true"},
		{http.MethodPost, "/admin/update-daily"},
		{http.MethodPost, "/admin/recalc-ma"},
		{http.MethodPost, "/admin/ranking/refresh"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestNewRouter_Health(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
