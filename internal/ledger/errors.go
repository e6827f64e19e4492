package ledger

import "errors"

var (
	// ErrAlreadyInitialized is returned when a bill already has a summary
	ErrAlreadyInitialized = errors.New("invoice summary already initialized")

	// ErrUnknownBill is returned when submitting against a bill without a summary
	ErrUnknownBill = errors.New("no invoice summary for bill")

	// ErrNotFound is returned when reading a summary that does not exist
	ErrNotFound = errors.New("invoice summary not found")

	// ErrOverSubmission is returned when a submission would invoice more than a category allows
	ErrOverSubmission = errors.New("submission exceeds remaining amount")

	// ErrInvalidAmount is returned for negative submitted amounts
	ErrInvalidAmount = errors.New("submitted amount must not be negative")

	// ErrAlreadyInvoiced is returned when discarding a summary that has invoiced amounts
	ErrAlreadyInvoiced = errors.New("invoice summary already has invoiced amounts")
)
