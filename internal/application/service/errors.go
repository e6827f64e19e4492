package service

import "errors"

var (
	// ErrBillNotFound is returned when no bill has the requested number
	ErrBillNotFound = errors.New("bill not found")

	// ErrBillNotInvoiceable is returned when the bill's status does not accept invoicing
	ErrBillNotInvoiceable = errors.New("bill does not accept invoicing in its current status")

	// ErrIncompleteRow is returned when a submitted row lacks title or recipient details
	ErrIncompleteRow = errors.New("invoice row is incomplete")

	// ErrEmptySubmission is returned when an application carries no rows
	ErrEmptySubmission = errors.New("invoice application has no rows")

	// ErrZeroAmount is returned when the submitted rows add up to nothing
	ErrZeroAmount = errors.New("invoice application amount must be positive")

	// ErrTitleNotFound is returned when a row references an unknown saved invoice title
	ErrTitleNotFound = errors.New("invoice title not found")

	// ErrOrdersLocked is returned when order check status changes after the bill left PENDING_CONFIRM
	ErrOrdersLocked = errors.New("orders can only be checked while the bill awaits confirmation")

	// ErrInvalidCheckStatus is returned for a check status other than CHECKED or UNCHECKED
	ErrInvalidCheckStatus = errors.New("check status must be CHECKED or UNCHECKED")

	// ErrNoOrdersSelected is returned when a check status update names no orders
	ErrNoOrdersSelected = errors.New("no orders selected")

	// ErrOrderNotFound is returned when a named order is not part of the bill
	ErrOrderNotFound = errors.New("order not found in bill")
)
