// Package apperr defines the error taxonomy shared across features.
// Callers wrap these with fmt.Errorf("...: %w", ...) and inspect them with errors.Is.
package apperr

import "errors"

var (
	// ErrUpstreamAuth is returned when the data provider refuses to issue an access token.
	// It is fatal to the operation that needed the token.
	ErrUpstreamAuth = errors.New("upstream auth failed")

	// ErrUpstreamRequest is returned for network failures, timeouts and non-success
	// responses from the data provider.
	ErrUpstreamRequest = errors.New("upstream request failed")

	// ErrParse is returned when an upstream row cannot be interpreted at all.
	ErrParse = errors.New("malformed upstream data")

	// ErrInsufficientData is returned when an asset has no price history to simulate over.
	ErrInsufficientData = errors.New("insufficient price history")

	// ErrPeriodMismatch is returned when asset histories share no common trading date.
	ErrPeriodMismatch = errors.New("asset histories do not overlap")

	// ErrNotFound is returned when a symbol or identity has no data.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when request parameters are out of range.
	ErrInvalidInput = errors.New("invalid input")
)
