package workflow

// Trigger is an event that moves a bill between statuses
type Trigger string

const (
	TriggerConfirm           Trigger = "CONFIRM"
	TriggerCancelConfirm     Trigger = "CANCEL_CONFIRM"
	TriggerRequestAdjustment Trigger = "REQUEST_ADJUSTMENT"
	TriggerResolveAdjustment Trigger = "RESOLVE_ADJUSTMENT"
	TriggerApplyInvoice      Trigger = "APPLY_INVOICE"
	TriggerCompleteInvoicing Trigger = "COMPLETE_INVOICING"
	TriggerSettle            Trigger = "SETTLE"
)

func (t Trigger) String() string {
	return string(t)
}
