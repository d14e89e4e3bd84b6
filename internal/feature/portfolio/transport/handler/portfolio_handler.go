// Package handler はportfolioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chart_backend/internal/feature/portfolio/domain/entity"
	"chart_backend/internal/feature/portfolio/transport/http/dto"
	jwtmw "chart_backend/internal/platform/jwt"
	"chart_backend/internal/shared/apperr"
)

// PortfolioUsecase は保有銘柄のユースケースです。
type PortfolioUsecase interface {
	List(ctx context.Context, userID uint) (entity.Summary, error)
	Add(ctx context.Context, userID uint, symbol, name string, averagePrice, quantity int64) (entity.Holding, error)
	Delete(ctx context.Context, userID, id uint) error
}

// PortfolioHandler は保有銘柄のHTTPリクエストを処理します。
type PortfolioHandler struct {
	uc PortfolioUsecase
}

// NewPortfolioHandler は PortfolioHandler を生成します。
func NewPortfolioHandler(uc PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc}
}

func userID(c *gin.Context) (uint, bool) {
	id := c.GetUint(jwtmw.ContextUserID)
	if id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatusOr(err, http.StatusInternalServerError), gin.H{"error": err.Error()})
}

// List は保有銘柄を現在値で評価して返します。
//
// エンドポイント例:
// GET /portfolio
func (h *PortfolioHandler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	s, err := h.uc.List(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]dto.HoldingItem, 0, len(s.Items))
	for _, v := range s.Items {
		items = append(items, dto.HoldingItem{
			ID:            v.ID,
			Code:          v.Symbol,
			Name:          v.Name,
			AveragePrice:  v.AveragePrice,
			Quantity:      v.Quantity,
			TotalInvested: v.TotalInvested,
			CurrentPrice:  v.CurrentPrice,
			Priced:        v.Priced,
			TotalValue:    v.TotalValue,
			Profit:        v.Profit,
			ProfitRate:    v.ProfitRate,
		})
	}
	c.JSON(http.StatusOK, dto.PortfolioResponse{
		Items:         items,
		TotalInvested: s.TotalInvested,
		TotalValue:    s.TotalValue,
		Profit:        s.Profit,
		ProfitRate:    s.ProfitRate,
	})
}

// Add は保有銘柄を登録します。
// - リクエストJSONのバリデーションエラー時は400を返却
//
// エンドポイント例:
// POST /portfolio {"code":"005930","name":"삼성전자","price":50000,"quantity":10}
func (h *PortfolioHandler) Add(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req dto.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("portfolio validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hd, err := h.uc.Add(c.Request.Context(), uid, req.Code, req.Name, req.Price, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": hd.ID})
}

// Delete は保有銘柄を削除します。他ユーザーの行は404です。
//
// エンドポイント例:
// DELETE /portfolio/12
func (h *PortfolioHandler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid holding id"})
		return
	}
	if err := h.uc.Delete(c.Request.Context(), uid, uint(id)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
