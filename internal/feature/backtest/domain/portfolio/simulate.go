// Package portfolio simulates fixed-weight portfolios over daily candles.
package portfolio

import (
	"fmt"
	"math"

	"chart_backend/internal/feature/backtest/domain/entity"
	candle "chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/shared/apperr"
	"chart_backend/internal/shared/datefmt"
)

const (
	// RiskFreePct is the annual risk-free rate used for the Sharpe ratio.
	RiskFreePct = 3.0
	// TradingDays annualizes daily volatility.
	TradingDays = 252
)

// Simulate buys each asset once on the common start date and holds it.
// histories maps symbol to ascending daily candles. A day is counted only when
// every asset has a candle on it; missing days are skipped, never filled.
func Simulate(seed int64, periodMonths int, assets []entity.Asset, histories map[string][]candle.Candle) (entity.Result, error) {
	if seed <= 0 || len(assets) == 0 {
		return entity.Result{}, fmt.Errorf("%w: seed and assets are required", apperr.ErrInvalidInput)
	}

	closes := make(map[string]map[string]int64, len(assets))
	common := ""
	ref := ""
	for _, a := range assets {
		h := histories[a.Symbol]
		if len(h) == 0 {
			return entity.Result{}, fmt.Errorf("%w: %s", apperr.ErrInsufficientData, a.Symbol)
		}
		if _, ok := closes[a.Symbol]; ok {
			continue
		}
		byDate := make(map[string]int64, len(h))
		for _, c := range h {
			byDate[c.Date] = c.Close
		}
		closes[a.Symbol] = byDate
		if h[0].Date > common {
			common = h[0].Date
		}
		if ref == "" || len(h) > len(histories[ref]) {
			ref = a.Symbol
		}
	}

	complete := func(date string) bool {
		for _, byDate := range closes {
			if _, ok := byDate[date]; !ok {
				return false
			}
		}
		return true
	}

	var dates []string
	for _, c := range histories[ref] {
		if c.Date >= common {
			dates = append(dates, c.Date)
		}
	}
	start := -1
	for i, d := range dates {
		if complete(d) {
			start = i
			break
		}
	}
	if start < 0 {
		return entity.Result{}, fmt.Errorf("%w: no common trading date from %s", apperr.ErrPeriodMismatch, common)
	}
	dates = dates[start:]
	startDate := dates[0]

	shares := make([]float64, len(assets))
	for i, a := range assets {
		px := closes[a.Symbol][startDate]
		if px <= 0 {
			return entity.Result{}, fmt.Errorf("%w: %s has no price on %s", apperr.ErrInsufficientData, a.Symbol, startDate)
		}
		shares[i] = float64(seed) * (a.Weight / 100) / float64(px)
	}

	var (
		current = seed
		prev    = seed
		peak    = float64(seed)
		mdd     float64
		returns []float64
		curve   = make([]entity.Point, 0, len(dates))
	)
	for _, d := range dates {
		if !complete(d) {
			continue
		}
		var value int64
		for i, a := range assets {
			value += int64(shares[i] * float64(closes[a.Symbol][d]))
		}
		if value <= 0 {
			continue
		}

		if float64(value) > peak {
			peak = float64(value)
		}
		if dd := (peak - float64(value)) / peak * 100; dd > mdd {
			mdd = dd
		}
		curve = append(curve, entity.Point{Date: datefmt.ToDisplay(d), Value: value})

		if prev > 0 && d != startDate {
			returns = append(returns, float64(value-prev)/float64(prev))
		}
		prev = value
		current = value
	}

	years := max(float64(periodMonths)/12, 1)
	cagr := (math.Pow(float64(current)/float64(seed), 1/years) - 1) * 100
	vol := stdev(returns) * math.Sqrt(TradingDays) * 100
	var sharpe float64
	if vol > 0 {
		sharpe = (cagr - RiskFreePct) / vol
	}

	return entity.Result{
		FinalBalance: current,
		TotalReturn:  round2(float64(current-seed) / float64(seed) * 100),
		CAGR:         round2(cagr),
		MDD:          round2(mdd),
		Volatility:   round2(vol),
		SharpeRatio:  round2(sharpe),
		EquityCurve:  curve,
	}, nil
}

// stdev is the population standard deviation.
func stdev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return math.Sqrt(sq / float64(len(xs)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
