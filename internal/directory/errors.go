package directory

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	// Absence of a device is a valid state, distinct from zero trust.
	ErrNotFound = errors.New("directory: not found")

	// ErrUnavailable indicates the lookup backend failed. Callers may retry.
	ErrUnavailable = errors.New("directory: backend unavailable")
)
