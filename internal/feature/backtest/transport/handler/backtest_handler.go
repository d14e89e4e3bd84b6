// Package handler はbacktestフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chart_backend/internal/feature/backtest/domain/entity"
	"chart_backend/internal/feature/backtest/transport/http/dto"
	jwtmw "chart_backend/internal/platform/jwt"
	"chart_backend/internal/shared/apperr"
)

// historyDateLayout は履歴一覧の日時表示形式です。
const historyDateLayout = "2006-01-02 15:04"

// BacktestUsecase はバックテストのユースケースです。
type BacktestUsecase interface {
	Run(ctx context.Context, userID uint, req entity.Request) (entity.Report, error)
	ListHistory(ctx context.Context, userID uint) ([]entity.HistoryItem, error)
}

// BacktestHandler はバックテストのHTTPリクエストを処理します。
type BacktestHandler struct {
	uc BacktestUsecase
}

// NewBacktestHandler は BacktestHandler を生成します。
func NewBacktestHandler(uc BacktestUsecase) *BacktestHandler {
	return &BacktestHandler{uc: uc}
}

// Run は資産配分バックテストを実行します。
// - リクエストJSONのバリデーションエラー時は400を返却
// - データ不足・期間不一致は422を返却
//
// エンドポイント例:
// POST /backtest/allocation
func (h *BacktestHandler) Run(c *gin.Context) {
	var req dto.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("backtest validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assets := make([]entity.Asset, 0, len(req.Assets))
	for _, a := range req.Assets {
		assets = append(assets, entity.Asset{Symbol: a.Code, Name: a.Name, Weight: a.Weight})
	}
	userID := c.GetUint(jwtmw.ContextUserID)

	report, err := h.uc.Run(c.Request.Context(), userID, entity.Request{
		SeedMoney:       req.SeedMoney,
		PeriodMonths:    req.PeriodMonths,
		Assets:          assets,
		BenchmarkSymbol: req.BenchmarkCode,
	})
	if err != nil {
		slog.Warn("backtest failed", "error", err, "user_id", userID)
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	res := dto.BacktestResponse{Portfolio: toResult(report.Portfolio)}
	if report.Benchmark != nil {
		bm := toResult(*report.Benchmark)
		res.Benchmark = &bm
	}
	c.JSON(http.StatusOK, res)
}

// History はログインユーザーのバックテスト履歴を新しい順で返します。
//
// エンドポイント例:
// GET /backtest/history
func (h *BacktestHandler) History(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.uc.ListHistory(c.Request.Context(), userID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.HistoryItem, 0, len(items))
	for _, it := range items {
		out = append(out, dto.HistoryItem{
			ID:            it.ID,
			Date:          it.CreatedAt.Format(historyDateLayout),
			AssetsSummary: it.Summary,
			AssetsJSON:    it.AssetsJSON,
			SeedMoney:     it.SeedMoney,
			PeriodMonths:  it.PeriodMonths,
			TotalReturn:   it.TotalReturn,
			FinalBalance:  it.FinalBalance,
		})
	}
	c.JSON(http.StatusOK, out)
}

func toResult(r entity.Result) dto.ResultResponse {
	curve := make([]dto.ChartPoint, 0, len(r.EquityCurve))
	for _, p := range r.EquityCurve {
		curve = append(curve, dto.ChartPoint{Date: p.Date, Value: p.Value})
	}
	return dto.ResultResponse{
		FinalBalance: r.FinalBalance,
		TotalReturn:  r.TotalReturn,
		CAGR:         r.CAGR,
		MDD:          r.MDD,
		Volatility:   r.Volatility,
		SharpeRatio:  r.SharpeRatio,
		EquityCurve:  curve,
	}
}
