package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted from the current status
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState is returned for an unknown status
	ErrInvalidState = errors.New("invalid status")

	// ErrGuardFailed is returned when every candidate transition's guard refuses
	ErrGuardFailed = errors.New("transition guard refused")
)
