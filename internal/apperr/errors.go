// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrAlreadyExists      = errors.New("already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrNoEvents is returned when a whole document yields no event candidates.
	ErrNoEvents = errors.New("no recognizable events found")

	// ErrEncoding is returned when an event cannot be represented as iCalendar.
	ErrEncoding = errors.New("calendar encoding failed")
)
