// Package entity defines the domain models for the candles feature.
package entity

// Candle represents one period's OHLCV summary for a stock symbol.
// Prices are integer currency units as delivered by the provider.
type Candle struct {
	Symbol string // Stock code (e.g., "005930")
	Date   string // Trading day as YYYYMMDD; for resampled candles the last constituent day
	Open   int64  // Opening price
	High   int64  // Highest price during this period
	Low    int64  // Lowest price during this period
	Close  int64  // Closing price
	Volume int64  // Trading volume

	// Trailing simple moving averages of Close. nil until enough history exists.
	MA5  *int64
	MA20 *int64
	MA60 *int64
}

// Period is a chart granularity.
type Period string

const (
	PeriodDaily   Period = "D"
	PeriodWeekly  Period = "W"
	PeriodMonthly Period = "M"
)

// ParsePeriod converts a query value into a Period. Unknown or empty values fall back to daily.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeekly:
		return PeriodWeekly
	case PeriodMonthly:
		return PeriodMonthly
	default:
		return PeriodDaily
	}
}
