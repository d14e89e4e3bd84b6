// Package usecase はローソク足データの収集と参照のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"slices"

	"chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/candles/domain/series"
	"chart_backend/internal/shared/apperr"
	"chart_backend/internal/shared/datefmt"
)

const (
	// DefaultLimit はチャートのデフォルト返却件数です。
	DefaultLimit = 500
	// MaxLimit はチャートの最大返却件数です。
	MaxLimit = 5000
	// dailiesPerBar は週足・月足を作るために1本あたり読み込む日足の目安です。
	dailiesPerBar = 30
)

// candlesUsecase はチャート表示用のローソク足を組み立てます。
type candlesUsecase struct {
	candle CandleReader
}

// NewCandlesUsecase はcandlesUsecaseの新しいインスタンスを生成します。
func NewCandlesUsecase(candle CandleReader) *candlesUsecase {
	return &candlesUsecase{candle: candle}
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return DefaultLimit
	}
	return limit
}

// GetCandles は指定された銘柄と期間のローソク足を古い順で返します。
// 日足は保存済みの移動平均をそのまま使い、週足・月足は日足から集約して移動平均を都度計算します。
func (cu *candlesUsecase) GetCandles(ctx context.Context, symbol string, period entity.Period, limit int) ([]entity.Candle, error) {
	limit = normalizeLimit(limit)

	fetch := limit
	if period != entity.PeriodDaily {
		fetch = limit * dailiesPerBar
	}
	recent, err := cu.candle.FindRecent(ctx, symbol, fetch)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, fmt.Errorf("%w: no candles for %s", apperr.ErrNotFound, symbol)
	}
	slices.Reverse(recent)

	if period == entity.PeriodDaily {
		return recent, nil
	}

	bars := series.Resample(recent, period)
	series.ComputeMA(bars)
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

// GetCandlesBefore は lastDate（YYYY-MM-DD）より前の日足を古い順で返します。
// これ以上古いデータがない場合は空のスライスを返します。
func (cu *candlesUsecase) GetCandlesBefore(ctx context.Context, symbol, lastDate string, limit int) ([]entity.Candle, error) {
	raw := datefmt.FromDisplay(lastDate)
	if _, err := datefmt.Parse(raw); err != nil {
		return nil, fmt.Errorf("%w: lastDate %q", apperr.ErrInvalidInput, lastDate)
	}

	older, err := cu.candle.FindBefore(ctx, symbol, raw, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	slices.Reverse(older)
	return older, nil
}
