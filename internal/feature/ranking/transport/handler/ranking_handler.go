// Package handler はrankingフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chart_backend/internal/feature/ranking/domain/entity"
	"chart_backend/internal/feature/ranking/transport/http/dto"
	"chart_backend/internal/shared/apperr"
)

// RankingUsecase はランキング参照のユースケースです。
type RankingUsecase interface {
	GetCached(ctx context.Context, dir entity.Direction) ([]entity.RankingEntry, error)
}

// RankingHandler はランキングのHTTPリクエストを処理します。
type RankingHandler struct {
	uc RankingUsecase
}

// NewRankingHandler は RankingHandler を生成します。
func NewRankingHandler(uc RankingUsecase) *RankingHandler {
	return &RankingHandler{uc: uc}
}

// List は騰落率ランキングを返します。
//
// エンドポイント例:
// GET /ranking?type=falling
func (h *RankingHandler) List(c *gin.Context) {
	dir := entity.ParseDirection(c.Query("type"))
	entries, err := h.uc.GetCached(c.Request.Context(), dir)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.RankingItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.RankingItem{
			Rank:         e.Rank,
			Code:         e.Symbol,
			Name:         e.Name,
			Price:        e.Price,
			ChangeAmount: e.ChangeAmount,
			ChangeRate:   e.ChangeRate,
			AsOf:         e.AsOf.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// RefreshStarter はランキング更新をバックグラウンドで開始します。
type RefreshStarter interface {
	StartRefresh(ctx context.Context) bool
}

// RankingAdminHandler はランキング更新の手動起動を受け付けます。
type RankingAdminHandler struct {
	starter RefreshStarter
}

// NewRankingAdminHandler は RankingAdminHandler を生成します。
func NewRankingAdminHandler(starter RefreshStarter) *RankingAdminHandler {
	return &RankingAdminHandler{starter: starter}
}

// Refresh は両方向のランキング更新を開始します。実行中の場合は409を返します。
//
// エンドポイント例:
// POST /admin/ranking/refresh
func (h *RankingAdminHandler) Refresh(c *gin.Context) {
	if !h.starter.StartRefresh(c.Request.Context()) {
		c.JSON(http.StatusConflict, gin.H{"error": "ranking refresh already running"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started", "job": "ranking-refresh"})
}
