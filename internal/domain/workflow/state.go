package workflow

import "github.com/garyjia/bill-invoicing/internal/domain/entity"

// State is a bill lifecycle status
type State string

const (
	StatePendingConfirm State = entity.BillStatusPendingConfirm
	StateAdjusting      State = entity.BillStatusAdjusting
	StatePendingInvoice State = entity.BillStatusPendingInvoice
	StateInvoicing      State = entity.BillStatusInvoicing
	StatePendingPayment State = entity.BillStatusPendingPayment
	StateSettled        State = entity.BillStatusSettled
)

// stateCodes are the numeric codes the settlement platform uses for each status
var stateCodes = map[State]int{
	StatePendingConfirm: 0,
	StateAdjusting:      1,
	StatePendingInvoice: 2,
	StateInvoicing:      3,
	StatePendingPayment: 4,
	StateSettled:        5,
}

// ParseStateCode maps a platform status code back to its state
func ParseStateCode(code int) (State, bool) {
	for s, c := range stateCodes {
		if c == code {
			return s, true
		}
	}
	return "", false
}

// Code returns the platform status code, or -1 for unknown states
func (s State) Code() int {
	if c, ok := stateCodes[s]; ok {
		return c
	}
	return -1
}

// IsTerminal reports whether the bill can no longer change
func (s State) IsTerminal() bool {
	return s == StateSettled
}

// AcceptsInvoicing reports whether invoice rows may be generated or submitted
func (s State) AcceptsInvoicing() bool {
	return s == StatePendingInvoice || s == StateInvoicing
}

func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is a known status
func (s State) IsValid() bool {
	_, ok := stateCodes[s]
	return ok
}
