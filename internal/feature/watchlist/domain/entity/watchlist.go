// Package entity defines watchlist entries and their priced view.
package entity

import "time"

// Item is one symbol a user follows.
type Item struct {
	UserID    uint
	Symbol    string
	Name      string
	CreatedAt time.Time
}

// View is a watchlist item priced from the two newest stored dailies.
// Price is 0 when the symbol has no candles. ChangeRate is percent rounded to two decimals.
type View struct {
	Symbol     string
	Name       string
	Price      int64
	ChangeRate float64
}
