// Package usecase はローソク足パターン分析のユースケースを実装します。
package usecase

import (
	"context"

	candle "chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/patterns/domain/analyzer"
	"chart_backend/internal/feature/patterns/domain/entity"
)

// AnalysisWindow は分析に使う直近の足の本数です。
const AnalysisWindow = 20

// CandleSource は足種ごとのローソク足を古い順で返します。
type CandleSource interface {
	GetCandles(ctx context.Context, symbol string, period candle.Period, limit int) ([]candle.Candle, error)
}

type patternUsecase struct {
	candles CandleSource
}

// NewPatternUsecase は patternUsecase を生成します。
func NewPatternUsecase(candles CandleSource) *patternUsecase {
	return &patternUsecase{candles: candles}
}

// Analyze は銘柄の直近 AnalysisWindow 本から検出されたパターンを返します。
// 足の本数が足りない場合は空のスライスを返します。
func (u *patternUsecase) Analyze(ctx context.Context, symbol string, period candle.Period) ([]entity.Match, error) {
	cs, err := u.candles.GetCandles(ctx, symbol, period, AnalysisWindow)
	if err != nil {
		return nil, err
	}
	matches := analyzer.Analyze(cs)
	if matches == nil {
		matches = []entity.Match{}
	}
	return matches, nil
}
