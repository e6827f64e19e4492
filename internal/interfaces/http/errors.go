package http

import (
	"errors"
	"net/http"

	"github.com/garyjia/bill-invoicing/internal/allocation"
	"github.com/garyjia/bill-invoicing/internal/application/service"
	"github.com/garyjia/bill-invoicing/internal/domain/workflow"
	"github.com/garyjia/bill-invoicing/internal/ledger"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{allocation.ErrInvalidDimension, http.StatusBadRequest},
	{allocation.ErrDuplicateDimension, http.StatusBadRequest},
	{allocation.ErrTooManyDimensions, http.StatusBadRequest},
	{allocation.ErrInvalidRatio, http.StatusBadRequest},
	{ledger.ErrInvalidAmount, http.StatusBadRequest},
	{service.ErrIncompleteRow, http.StatusBadRequest},
	{service.ErrEmptySubmission, http.StatusBadRequest},
	{service.ErrZeroAmount, http.StatusBadRequest},
	{service.ErrTitleNotFound, http.StatusBadRequest},
	{service.ErrInvalidCheckStatus, http.StatusBadRequest},
	{service.ErrNoOrdersSelected, http.StatusBadRequest},

	{service.ErrBillNotFound, http.StatusNotFound},
	{ledger.ErrNotFound, http.StatusNotFound},
	{ledger.ErrUnknownBill, http.StatusNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound},

	{ledger.ErrAlreadyInitialized, http.StatusConflict},
	{ledger.ErrOverSubmission, http.StatusConflict},
	{ledger.ErrAlreadyInvoiced, http.StatusConflict},
	{service.ErrBillNotInvoiceable, http.StatusConflict},
	{service.ErrOrdersLocked, http.StatusConflict},
	{workflow.ErrInvalidTransition, http.StatusConflict},
	{workflow.ErrGuardFailed, http.StatusConflict},
}

// statusFor maps a service error to its HTTP status. Unmapped errors are 500.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}
