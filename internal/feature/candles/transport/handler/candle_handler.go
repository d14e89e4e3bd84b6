// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/candles/transport/http/dto"
	"chart_backend/internal/shared/apperr"
	"chart_backend/internal/shared/datefmt"
)

// CandlesUsecase はローソク足データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, symbol string, period entity.Period, limit int) ([]entity.Candle, error)
	GetCandlesBefore(ctx context.Context, symbol, lastDate string, limit int) ([]entity.Candle, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc CandlesUsecase
}

// NewCandlesHandler は指定されたusecaseでCandlesHandlerの新しいインスタンスを生成します。
func NewCandlesHandler(uc CandlesUsecase) *CandlesHandler {
	return &CandlesHandler{uc: uc}
}

// GetCandlesHandler は銘柄コードと足種を受け取り、ローソク足データをJSONで返します。
// lastDate が指定された場合はそれより前の日足を返します（無限スクロール用）。
//
// エンドポイント例:
// GET /candles/:code?type=W&limit=200
// GET /candles/:code?lastDate=2024-01-05&limit=100
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	code := c.Param("code")
	// 文字列を整数に変換（不正値は0となり、usecase側でデフォルト値に丸められる）
	limit, _ := strconv.Atoi(c.Query("limit"))

	var (
		candles []entity.Candle
		err     error
	)
	if lastDate := c.Query("lastDate"); lastDate != "" {
		candles, err = h.uc.GetCandlesBefore(c.Request.Context(), code, lastDate, limit)
	} else {
		period := entity.ParsePeriod(c.Query("type"))
		candles, err = h.uc.GetCandles(c.Request.Context(), code, period, limit)
	}
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ToResponse(candles))
}

// ToResponse はエンティティをレスポンスDTOに変換します。
func ToResponse(candles []entity.Candle) []dto.CandleResponse {
	out := make([]dto.CandleResponse, 0, len(candles))
	for _, x := range candles {
		out = append(out, dto.CandleResponse{
			Time:   datefmt.ToDisplay(x.Date),
			Open:   x.Open,
			High:   x.High,
			Low:    x.Low,
			Close:  x.Close,
			Volume: x.Volume,
			MA5:    x.MA5,
			MA20:   x.MA20,
			MA60:   x.MA60,
		})
	}
	return out
}
