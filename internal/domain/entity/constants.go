package entity

// BusinessType identifies the travel product an order was booked for.
// Codes match the settlement platform's order feed.
type BusinessType string

const (
	BusinessTypeFlight BusinessType = "001" // 机票
	BusinessTypeHotel  BusinessType = "002" // 酒店
	BusinessTypeTrain  BusinessType = "003" // 火车票
	BusinessTypeCar    BusinessType = "004" // 用车
)

var businessTypeNames = map[BusinessType]string{
	BusinessTypeFlight: "机票",
	BusinessTypeHotel:  "酒店",
	BusinessTypeTrain:  "火车票",
	BusinessTypeCar:    "用车",
}

// Name returns the display name, or the raw code for unknown types
func (b BusinessType) Name() string {
	if name, ok := businessTypeNames[b]; ok {
		return name
	}
	return string(b)
}

// IsKnown reports whether the code is one of the four catalogued business types
func (b BusinessType) IsKnown() bool {
	_, ok := businessTypeNames[b]
	return ok
}

// Bill status constants. Values mirror workflow.State.
const (
	BillStatusPendingConfirm = "PENDING_CONFIRM" // 待确认
	BillStatusAdjusting      = "ADJUSTING"       // 调账中
	BillStatusPendingInvoice = "PENDING_INVOICE" // 待开票
	BillStatusInvoicing      = "INVOICING"       // 开票中
	BillStatusPendingPayment = "PENDING_PAYMENT" // 待付款
	BillStatusSettled        = "SETTLED"         // 已结清
)

// Order check status constants
const (
	CheckStatusUnchecked = "UNCHECKED"
	CheckStatusChecked   = "CHECKED"
	CheckStatusAbnormal  = "ABNORMAL"
)

// Invoice application status constants
const (
	ApplicationStatusPending = "PENDING"
	ApplicationStatusSuccess = "SUCCESS"
	ApplicationStatusFailed  = "FAILED"
)
