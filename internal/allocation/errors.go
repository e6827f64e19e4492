package allocation

import "errors"

var (
	// ErrInvalidDimension is returned for an unrecognised partition key
	ErrInvalidDimension = errors.New("invalid partition dimension")

	// ErrDuplicateDimension is returned when the same key is requested twice
	ErrDuplicateDimension = errors.New("duplicate partition dimension")

	// ErrTooManyDimensions is returned when more than MaxDimensions keys are requested
	ErrTooManyDimensions = errors.New("too many partition dimensions")

	// ErrInvalidRatio is returned for a general/special ratio outside [0, 1]
	ErrInvalidRatio = errors.New("general ratio must be between 0 and 1")

	// ErrNegativeAmount is returned when an order carries a negative pay amount
	ErrNegativeAmount = errors.New("order pay amount must not be negative")
)
