package portfolio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart_backend/internal/feature/backtest/domain/entity"
	candle "chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/shared/apperr"
)

// history は date:close の組から昇順の日足を作ります。
func history(pairs ...any) []candle.Candle {
	out := make([]candle.Candle, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		c := int64(pairs[i+1].(int))
		out = append(out, candle.Candle{Date: pairs[i].(string), Open: c, High: c, Low: c, Close: c})
	}
	return out
}

func values(curve []entity.Point) []int64 {
	out := make([]int64, 0, len(curve))
	for _, p := range curve {
		out = append(out, p.Value)
	}
	return out
}

func dates(curve []entity.Point) []string {
	out := make([]string, 0, len(curve))
	for _, p := range curve {
		out = append(out, p.Date)
	}
	return out
}

func TestSimulate_FlatPriceHasNoReturnOrRisk(t *testing.T) {
	h := make([]candle.Candle, 0, 30)
	for i := 1; i <= 30; i++ {
		h = append(h, candle.Candle{Date: fmt.Sprintf("202401%02d", i), Close: 1000})
	}
	assets := []entity.Asset{{Symbol: "005930", Name: "Samsung", Weight: 100}}

	res, err := Simulate(1_000_000, 12, assets, map[string][]candle.Candle{"005930": h})
	require.NoError(t, err)

	assert.Equal(t, int64(1_000_000), res.FinalBalance)
	assert.Zero(t, res.TotalReturn)
	assert.Zero(t, res.CAGR)
	assert.Zero(t, res.MDD)
	assert.Zero(t, res.Volatility)
	assert.Zero(t, res.SharpeRatio)
	assert.Len(t, res.EquityCurve, 30)
	assert.Equal(t, "2024-01-01", res.EquityCurve[0].Date)
}

func TestSimulate_TwoAssetsSumSharesTimesClose(t *testing.T) {
	histories := map[string][]candle.Candle{
		"A": history("20240102", 100, "20240103", 110, "20240104", 90, "20240105", 120),
		"B": history("20240102", 200, "20240103", 200, "20240104", 220, "20240105", 180),
	}
	assets := []entity.Asset{{Symbol: "A", Weight: 50}, {Symbol: "B", Weight: 50}}

	res, err := Simulate(1_000_000, 12, assets, histories)
	require.NoError(t, err)

	// A: 5000株, B: 2500株
	assert.Equal(t, []int64{1_000_000, 1_050_000, 1_000_000, 1_050_000}, values(res.EquityCurve))
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}, dates(res.EquityCurve))
	assert.Equal(t, int64(1_050_000), res.FinalBalance)
	assert.Equal(t, 5.0, res.TotalReturn)
	assert.Equal(t, 5.0, res.CAGR)
	assert.Equal(t, 4.76, res.MDD)
	assert.Equal(t, 73.05, res.Volatility)
	assert.Equal(t, 0.03, res.SharpeRatio)
}

func TestSimulate_SkipsDaysMissingAnyAsset(t *testing.T) {
	histories := map[string][]candle.Candle{
		"A": history("20240102", 100, "20240103", 100, "20240104", 100, "20240105", 100),
		"B": history("20240102", 100, "20240103", 100, "20240105", 100),
	}
	assets := []entity.Asset{{Symbol: "A", Weight: 50}, {Symbol: "B", Weight: 50}}

	res, err := Simulate(1_000_000, 12, assets, histories)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-05"}, dates(res.EquityCurve))
}

func TestSimulate_StartsOnFirstFullyCoveredDay(t *testing.T) {
	histories := map[string][]candle.Candle{
		"A": history("20240103", 100, "20240104", 100, "20240105", 100, "20240108", 100),
		"B": history("20240102", 100, "20240104", 100, "20240108", 100),
	}
	assets := []entity.Asset{{Symbol: "A", Weight: 50}, {Symbol: "B", Weight: 50}}

	res, err := Simulate(1_000_000, 12, assets, histories)
	require.NoError(t, err)
	// 共通開始日 20240103 は B に無いため 20240104 から開始
	assert.Equal(t, []string{"2024-01-04", "2024-01-08"}, dates(res.EquityCurve))
}

func TestSimulate_WeightsAreNotNormalized(t *testing.T) {
	histories := map[string][]candle.Candle{
		"A": history("20240102", 100, "20240103", 200),
	}
	assets := []entity.Asset{{Symbol: "A", Weight: 150}}

	res, err := Simulate(1_000_000, 12, assets, histories)
	require.NoError(t, err)

	// 150% の比重はシードの1.5倍を投じたものとして扱う
	assert.Equal(t, []int64{1_500_000, 3_000_000}, values(res.EquityCurve))
	assert.Equal(t, int64(3_000_000), res.FinalBalance)
	assert.Equal(t, 200.0, res.TotalReturn)
}

func TestSimulate_InsufficientData(t *testing.T) {
	histories := map[string][]candle.Candle{
		"A": history("20240102", 100),
	}
	assets := []entity.Asset{{Symbol: "A", Weight: 50}, {Symbol: "B", Weight: 50}}

	_, err := Simulate(1_000_000, 12, assets, histories)
	assert.ErrorIs(t, err, apperr.ErrInsufficientData)
}

func TestSimulate_PeriodMismatch(t *testing.T) {
	histories := map[string][]candle.Candle{
		"A": history("20240102", 100, "20240103", 100),
		"B": history("20240104", 100, "20240105", 100),
	}
	assets := []entity.Asset{{Symbol: "A", Weight: 50}, {Symbol: "B", Weight: 50}}

	_, err := Simulate(1_000_000, 12, assets, histories)
	assert.ErrorIs(t, err, apperr.ErrPeriodMismatch)
}

func TestSimulate_ShortPeriodUsesOneYear(t *testing.T) {
	histories := map[string][]candle.Candle{
		"A": history("20240102", 100, "20240103", 110),
	}
	assets := []entity.Asset{{Symbol: "A", Weight: 100}}

	res, err := Simulate(1_000_000, 3, assets, histories)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.CAGR)
	assert.Equal(t, 10.0, res.TotalReturn)
}

func TestSimulate_InvalidInput(t *testing.T) {
	_, err := Simulate(0, 12, []entity.Asset{{Symbol: "A", Weight: 100}}, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = Simulate(1000, 12, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
