package services

import (
	"github.com/dsyorkd/assisted-console/internal/errors"
)

// Service errors, shared with the rest of the application
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.ErrNotFound

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.ErrInvalidInput

	// ErrActionNotPermitted indicates the capability table denies the action
	ErrActionNotPermitted = errors.ErrActionNotPermitted

	// ErrInFlight indicates the same submission is still being processed
	ErrInFlight = errors.ErrInFlight
)

// IsNotFound checks if error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if error is ErrInvalidInput
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotPermitted checks if error is ErrActionNotPermitted
func IsNotPermitted(err error) bool {
	return errors.Is(err, ErrActionNotPermitted)
}

// IsInFlight checks if error is ErrInFlight
func IsInFlight(err error) bool {
	return errors.Is(err, ErrInFlight)
}
