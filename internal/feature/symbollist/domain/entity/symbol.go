// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol represents a listed stock in the symbol master.
// Code is the 6-digit exchange code used by the price provider;
// Market is the listing board (KOSPI or KOSDAQ).
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:16;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:32;not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
