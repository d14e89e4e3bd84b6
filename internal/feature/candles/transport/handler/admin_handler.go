package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chart_backend/internal/feature/candles/usecase"
)

// BulkJobs はバックグラウンドで実行する収集ジョブです。
type BulkJobs interface {
	StartInitAll(ctx context.Context, symbols []string) error
	StartUpdateAll(ctx context.Context) error
	StartRecalculateAllMAs(ctx context.Context) error
}

// SymbolCodes は初期収集の対象銘柄を返します。
type SymbolCodes interface {
	ListActiveCodes(ctx context.Context) ([]string, error)
}

// AdminHandler は収集ジョブの手動起動を受け付けます。
// ジョブは切り離して実行され、レスポンスは起動の受付のみを表します。
type AdminHandler struct {
	jobs    BulkJobs
	symbols SymbolCodes
}

// NewAdminHandler は AdminHandler を生成します。
func NewAdminHandler(jobs BulkJobs, symbols SymbolCodes) *AdminHandler {
	return &AdminHandler{jobs: jobs, symbols: symbols}
}

// InitAll は銘柄マスタの全銘柄について履歴収集を開始します。
// 数時間かかるため confirm=true が必要です。
//
// エンドポイント例:
// POST /admin/init-all?confirm=true
func (h *AdminHandler) InitAll(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init-all takes hours; retry with confirm=true"})
		return
	}
	codes, err := h.symbols.ListActiveCodes(c.Request.Context())
	if err != nil {
		slog.Error("failed to load symbols for init-all", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(codes) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "symbol master is empty"})
		return
	}
	h.respond(c, "init-all", h.jobs.StartInitAll(c.Request.Context(), codes), gin.H{"symbols": len(codes)})
}

// UpdateDaily は保存済み全銘柄の差分更新を開始します。
//
// エンドポイント例:
// POST /admin/update-daily
func (h *AdminHandler) UpdateDaily(c *gin.Context) {
	h.respond(c, "update-daily", h.jobs.StartUpdateAll(c.Request.Context()), nil)
}

// RecalculateMA は全銘柄の移動平均の再計算を開始します。
//
// エンドポイント例:
// POST /admin/recalc-ma
func (h *AdminHandler) RecalculateMA(c *gin.Context) {
	h.respond(c, "recalc-ma", h.jobs.StartRecalculateAllMAs(c.Request.Context()), nil)
}

func (h *AdminHandler) respond(c *gin.Context, job string, err error, extra gin.H) {
	if errors.Is(err, usecase.ErrJobRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	body := gin.H{"status": "started", "job": job}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusAccepted, body)
}
