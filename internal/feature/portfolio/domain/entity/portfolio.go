// Package entity defines portfolio holdings and their valuation.
package entity

import (
	"math"
	"time"
)

// Holding is a position a user entered by hand.
type Holding struct {
	ID           uint
	UserID       uint
	Symbol       string
	Name         string
	AveragePrice int64 // average purchase price per share (KRW)
	Quantity     int64
	CreatedAt    time.Time
}

// Valuation is a holding marked at CurrentPrice.
// When no quote was available CurrentPrice equals AveragePrice and Priced is false.
type Valuation struct {
	Holding
	CurrentPrice  int64
	Priced        bool
	TotalInvested int64
	TotalValue    int64
	Profit        int64
	ProfitRate    float64 // percent, two decimals
}

// Summary is every valuation of a user plus the portfolio totals.
type Summary struct {
	Items         []Valuation
	TotalInvested int64
	TotalValue    int64
	Profit        int64
	ProfitRate    float64
}

// Value marks h at price.
func Value(h Holding, price int64, priced bool) Valuation {
	invested := h.AveragePrice * h.Quantity
	value := price * h.Quantity
	return Valuation{
		Holding:       h,
		CurrentPrice:  price,
		Priced:        priced,
		TotalInvested: invested,
		TotalValue:    value,
		Profit:        value - invested,
		ProfitRate:    rate(value-invested, invested),
	}
}

// Summarize totals items.
func Summarize(items []Valuation) Summary {
	s := Summary{Items: items}
	for _, v := range items {
		s.TotalInvested += v.TotalInvested
		s.TotalValue += v.TotalValue
	}
	s.Profit = s.TotalValue - s.TotalInvested
	s.ProfitRate = rate(s.Profit, s.TotalInvested)
	return s
}

func rate(profit, invested int64) float64 {
	if invested <= 0 {
		return 0
	}
	return math.Round(float64(profit)/float64(invested)*100*100) / 100
}
