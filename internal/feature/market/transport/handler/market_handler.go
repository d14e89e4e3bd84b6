// Package handler はmarketフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chart_backend/internal/feature/market/domain/entity"
	"chart_backend/internal/feature/market/transport/http/dto"
	"chart_backend/internal/shared/apperr"
)

// MarketUsecase は市場概況のユースケースです。
type MarketUsecase interface {
	Indices(ctx context.Context) map[string]entity.IndexInfo
	ExchangeRate(ctx context.Context) (float64, error)
}

// MarketHandler は市場概況のHTTPリクエストを処理します。
type MarketHandler struct {
	uc MarketUsecase
}

// NewMarketHandler は MarketHandler を生成します。
func NewMarketHandler(uc MarketUsecase) *MarketHandler {
	return &MarketHandler{uc: uc}
}

// Indices はKOSPI・KOSDAQの現在指数を返します。取得できない指数はプレースホルダー値になります。
//
// エンドポイント例:
// GET /market/indices
func (h *MarketHandler) Indices(c *gin.Context) {
	indices := h.uc.Indices(c.Request.Context())
	out := make(map[string]dto.IndexItem, len(indices))
	for name, info := range indices {
		out[name] = dto.IndexItem{Price: info.Price, Sign: info.Sign, Change: info.Change, Rate: info.Rate}
	}
	c.JSON(http.StatusOK, out)
}

// ExchangeRate はUSD/KRW相場を返します。
// - すべての取得元が失敗した場合は502を返却
//
// エンドポイント例:
// GET /market/exchange-rate
func (h *MarketHandler) ExchangeRate(c *gin.Context) {
	rate, err := h.uc.ExchangeRate(c.Request.Context())
	if err != nil {
		slog.Warn("exchange rate unavailable", "error", err)
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ExchangeRateResponse{Base: "USD", Quote: "KRW", Rate: rate})
}
