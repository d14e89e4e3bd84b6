// Package entity defines the domain models for the token feature.
package entity

import "time"

// CachedToken is the single process-wide bearer credential for the data provider.
// ExpiresAt is already reduced by a safety margin below the provider's expiry.
type CachedToken struct {
	Value     string
	ExpiresAt time.Time
}

// IsValid reports whether the token can still be used at now.
func (t *CachedToken) IsValid(now time.Time) bool {
	return t != nil && t.Value != "" && now.Before(t.ExpiresAt)
}

// IssuedToken is a fresh credential as returned by the provider's issuance endpoint.
type IssuedToken struct {
	AccessToken      string
	ExpiresInSeconds int
}
