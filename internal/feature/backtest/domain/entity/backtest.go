// Package entity defines the domain models for the backtest feature.
package entity

import "time"

// TestTypeAllocation marks a fixed-weight allocation run in the history.
const TestTypeAllocation = "ALLOCATION"

// Asset is one leg of a portfolio. Weight is a percentage of the seed money.
// Weights are used as given and are not normalized to 100.
type Asset struct {
	Symbol string  `json:"code"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Point is one day of an equity curve. Date is YYYY-MM-DD.
type Point struct {
	Date  string
	Value int64
}

// Result holds the outcome of one simulation. Percentages are rounded to two decimals.
type Result struct {
	FinalBalance int64
	TotalReturn  float64
	CAGR         float64
	MDD          float64
	Volatility   float64
	SharpeRatio  float64
	EquityCurve  []Point
}

// Request describes an allocation backtest.
type Request struct {
	SeedMoney       int64
	PeriodMonths    int
	Assets          []Asset
	BenchmarkSymbol string
}

// Report pairs the portfolio result with an optional benchmark result.
type Report struct {
	Portfolio Result
	Benchmark *Result
}

// HistoryRecord is a persisted backtest run.
type HistoryRecord struct {
	ID           uint
	UserID       uint
	TestType     string
	SeedMoney    int64
	PeriodMonths int
	AssetsJSON   string
	FinalBalance int64
	TotalReturn  float64
	CAGR         float64
	MDD          float64
	CreatedAt    time.Time
}

// HistoryItem is a history record prepared for listing.
type HistoryItem struct {
	ID           uint
	CreatedAt    time.Time
	Summary      string
	AssetsJSON   string
	SeedMoney    int64
	PeriodMonths int
	TotalReturn  float64
	FinalBalance int64
}
