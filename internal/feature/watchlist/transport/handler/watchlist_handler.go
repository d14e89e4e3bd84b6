// Package handler はwatchlistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chart_backend/internal/feature/watchlist/domain/entity"
	"chart_backend/internal/feature/watchlist/transport/http/dto"
	jwtmw "chart_backend/internal/platform/jwt"
	"chart_backend/internal/shared/apperr"
)

// WatchlistUsecase は関心銘柄のユースケースです。
type WatchlistUsecase interface {
	List(ctx context.Context, userID uint) ([]entity.View, error)
	Add(ctx context.Context, userID uint, symbol, name string) error
	Remove(ctx context.Context, userID uint, symbol string) error
	IsWatched(ctx context.Context, userID uint, symbol string) (bool, error)
}

// WatchlistHandler は関心銘柄のHTTPリクエストを処理します。
// すべてのエンドポイントは認証済みユーザーを前提とします。
type WatchlistHandler struct {
	uc WatchlistUsecase
}

// NewWatchlistHandler は WatchlistHandler を生成します。
func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

// userID は認証ミドルウェアが設定したユーザーIDを返します。未設定なら401を書き込み false を返します。
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

// List は関心銘柄を最新終値・前日比付きで返します。
//
// エンドポイント例:
// GET /watchlist
func (h *WatchlistHandler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	views, err := h.uc.List(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.WatchlistItem, 0, len(views))
	for _, v := range views {
		out = append(out, dto.WatchlistItem{Code: v.Symbol, Name: v.Name, Price: v.Price, Change: v.ChangeRate})
	}
	c.JSON(http.StatusOK, out)
}

// Add は関心銘柄を登録します。登録済みでも201を返します。
//
// エンドポイント例:
// POST /watchlist {"code":"005930","name":"삼성전자"}
func (h *WatchlistHandler) Add(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req dto.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("watchlist validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.uc.Add(c.Request.Context(), uid, req.Code, req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "added", "code": req.Code})
}

// Remove は関心銘柄を削除します。
//
// エンドポイント例:
// DELETE /watchlist/005930
func (h *WatchlistHandler) Remove(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if err := h.uc.Remove(c.Request.Context(), uid, c.Param("code")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Check は銘柄が登録済みかを返します。
//
// エンドポイント例:
// GET /watchlist/005930
func (h *WatchlistHandler) Check(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	code := c.Param("code")
	watched, err := h.uc.IsWatched(c.Request.Context(), uid, code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckResponse{Code: code, Watched: watched})
}
