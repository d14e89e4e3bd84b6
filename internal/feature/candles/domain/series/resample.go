// Package series contains pure transformations over ascending candle sequences.
package series

import (
	"fmt"

	"chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/shared/datefmt"
)

// Resample aggregates ascending daily candles into weekly (ISO 8601 week) or monthly candles.
// Daily input is returned as a copy. Rows with an unparsable date are dropped.
func Resample(dailies []entity.Candle, period entity.Period) []entity.Candle {
	if period != entity.PeriodWeekly && period != entity.PeriodMonthly {
		out := make([]entity.Candle, len(dailies))
		copy(out, dailies)
		return out
	}

	out := make([]entity.Candle, 0, len(dailies)/4+1)
	var (
		cur    entity.Candle
		curKey string
		open   bool
	)
	for _, d := range dailies {
		key, ok := periodKey(d.Date, period)
		if !ok {
			continue
		}
		if !open || key != curKey {
			if open {
				out = append(out, cur)
			}
			cur = entity.Candle{
				Symbol: d.Symbol,
				Date:   d.Date,
				Open:   d.Open,
				High:   d.High,
				Low:    d.Low,
				Close:  d.Close,
				Volume: d.Volume,
			}
			curKey = key
			open = true
			continue
		}
		cur.High = max(cur.High, d.High)
		cur.Low = min(cur.Low, d.Low)
		cur.Close = d.Close
		cur.Volume += d.Volume
		cur.Date = d.Date
	}
	if open {
		out = append(out, cur)
	}
	return out
}

// periodKey returns the grouping key of a YYYYMMDD date.
func periodKey(date string, period entity.Period) (string, bool) {
	t, err := datefmt.Parse(date)
	if err != nil {
		return "", false
	}
	if period == entity.PeriodWeekly {
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w), true
	}
	return t.Format("2006-01"), true
}
