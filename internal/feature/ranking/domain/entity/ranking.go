// Package entity defines the domain models for the ranking feature.
package entity

import "time"

// Direction selects the gainers or losers snapshot.
type Direction string

const (
	DirectionRising  Direction = "rising"
	DirectionFalling Direction = "falling"
)

// Directions lists every direction refreshed in one cycle.
var Directions = []Direction{DirectionRising, DirectionFalling}

// ParseDirection converts a query value into a Direction.
// "1" and "falling" select losers; everything else selects gainers.
func ParseDirection(s string) Direction {
	switch s {
	case "1", string(DirectionFalling):
		return DirectionFalling
	default:
		return DirectionRising
	}
}

// RankingEntry is one row of a gainers or losers snapshot.
type RankingEntry struct {
	Rank         int
	Symbol       string
	Name         string
	Price        int64
	ChangeAmount int64
	ChangeRate   float64
	Direction    Direction
	AsOf         time.Time
}

// Quote is a current price snapshot of a single symbol.
type Quote struct {
	Symbol       string
	Name         string
	Price        int64
	ChangeAmount int64
	ChangeRate   float64
}
