// Package handler はpatternsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	candle "chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/patterns/domain/entity"
	"chart_backend/internal/feature/patterns/transport/http/dto"
	"chart_backend/internal/shared/apperr"
	"chart_backend/internal/shared/datefmt"
)

// PatternUsecase はパターン分析のユースケースです。
type PatternUsecase interface {
	Analyze(ctx context.Context, symbol string, period candle.Period) ([]entity.Match, error)
}

// PatternHandler はパターン分析のHTTPリクエストを処理します。
type PatternHandler struct {
	uc PatternUsecase
}

// NewPatternHandler は PatternHandler を生成します。
func NewPatternHandler(uc PatternUsecase) *PatternHandler {
	return &PatternHandler{uc: uc}
}

// Analyze は直近の足から検出されたパターンを返します。
//
// エンドポイント例:
// GET /candles/:code/analysis?type=W
func (h *PatternHandler) Analyze(c *gin.Context) {
	period := candle.ParsePeriod(c.Query("type"))
	matches, err := h.uc.Analyze(c.Request.Context(), c.Param("code"), period)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.PatternItem, 0, len(matches))
	for _, m := range matches {
		info := m.Type.Info()
		out = append(out, dto.PatternItem{
			Type:        string(m.Type),
			Name:        info.Name,
			Description: info.Description,
			Trend:       string(info.Bias),
			Reliability: info.Reliability,
			Date:        datefmt.ToDisplay(m.Date),
		})
	}
	c.JSON(http.StatusOK, out)
}
