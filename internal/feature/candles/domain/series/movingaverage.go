package series

import "chart_backend/internal/feature/candles/domain/entity"

// Moving average window lengths.
const (
	MAShort  = 5
	MAMiddle = 20
	MALong   = 60
)

// ComputeMA sets MA5, MA20 and MA60 on every candle in place.
// Candles must be ascending by date. Averages are truncated toward zero
// and left nil while fewer than period candles precede the index.
func ComputeMA(candles []entity.Candle) {
	for i := range candles {
		candles[i].MA5 = trailingMean(candles, i, MAShort)
		candles[i].MA20 = trailingMean(candles, i, MAMiddle)
		candles[i].MA60 = trailingMean(candles, i, MALong)
	}
}

// trailingMean returns the integer mean of closes over [i-period+1, i].
func trailingMean(candles []entity.Candle, i, period int) *int64 {
	if period <= 0 || i < period-1 {
		return nil
	}
	var sum int64
	for j := i - period + 1; j <= i; j++ {
		sum += candles[j].Close
	}
	v := sum / int64(period)
	return &v
}
