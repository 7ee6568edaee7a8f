package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a status change is not in the
	// allowed-transition set of the source status
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState is returned when a status is not a known task status
	ErrInvalidState = errors.New("invalid status")

	// ErrGuardFailed is returned when a guard condition fails
	ErrGuardFailed = errors.New("guard condition failed")
)
