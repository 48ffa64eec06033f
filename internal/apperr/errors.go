package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation covers missing or out-of-range request fields.
	ErrValidation = errors.New("validation error")

	// ErrEmailTaken is returned when a registration reuses an existing email.
	ErrEmailTaken = errors.New("a client with this email already exists")

	// ErrInvalidCredentials never distinguishes unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers missing, malformed and expired session tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrNotOwner means the record exists but belongs to another client.
	ErrNotOwner = errors.New("not authorized to access this resource")

	ErrNotFound = errors.New("not found")
)

// Status maps a service error to the HTTP status code it surfaces as.
// Duplicate email is a 400, matching the public API contract.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmailTaken):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrNotOwner):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
