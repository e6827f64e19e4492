package workflow

import "context"

// BillGuards supplies the runtime checks of the bill lifecycle
type BillGuards struct {
	// NothingRemaining reports whether every invoice category is fully invoiced
	NothingRemaining GuardFunc
}

// NewBillMachine returns the bill lifecycle positioned at status:
//
//	PENDING_CONFIRM -> PENDING_INVOICE -> INVOICING -> PENDING_PAYMENT -> SETTLED
//
// with adjustment looping back to PENDING_CONFIRM and confirmation cancellable
// until the first invoice is applied.
func NewBillMachine(status State, guards BillGuards) (*Machine, error) {
	nothingRemaining := guards.NothingRemaining
	if nothingRemaining == nil {
		nothingRemaining = func(context.Context) bool { return false }
	}

	b := NewBuilder()

	b.Configure(StatePendingConfirm).
		Permit(TriggerConfirm, StatePendingInvoice).
		Permit(TriggerRequestAdjustment, StateAdjusting)

	b.Configure(StateAdjusting).
		Permit(TriggerResolveAdjustment, StatePendingConfirm)

	b.Configure(StatePendingInvoice).
		Permit(TriggerCancelConfirm, StatePendingConfirm).
		Permit(TriggerApplyInvoice, StateInvoicing)

	b.Configure(StateInvoicing).
		Permit(TriggerApplyInvoice, StateInvoicing).
		PermitIf(TriggerCompleteInvoicing, StatePendingPayment, nothingRemaining)

	b.Configure(StatePendingPayment).
		Permit(TriggerSettle, StateSettled)

	return b.Build(status)
}
