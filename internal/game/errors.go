package game

import "errors"

var (
	// ErrUnauthorized reports a host PIN mismatch. No mutation is applied.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput reports a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")
)
