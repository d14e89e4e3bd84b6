package apperr

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an application error to the status code returned by handlers.
// Unknown errors are treated as upstream failures.
func HTTPStatus(err error) int {
	return HTTPStatusOr(err, http.StatusBadGateway)
}

// HTTPStatusOr is HTTPStatus with def for errors outside the taxonomy.
// Handlers backed only by local storage pass http.StatusInternalServerError.
func HTTPStatusOr(err error, def int) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientData), errors.Is(err, ErrPeriodMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUpstreamAuth), errors.Is(err, ErrUpstreamRequest), errors.Is(err, ErrParse):
		return http.StatusBadGateway
	default:
		return def
	}
}
