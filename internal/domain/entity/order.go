package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one billable travel transaction packaged into a bill
type Order struct {
	OrderNo      string          `json:"order_no"`
	BillNo       string          `json:"bill_no"`
	BusinessType BusinessType    `json:"business_type"`
	TravelerName string          `json:"traveler_name,omitempty"`
	PayAmount    decimal.Decimal `json:"pay_amount"`

	// Partition attributes; empty means the order does not carry the attribute
	BusinessLine   string `json:"business_line,omitempty"`
	LegalEntity    string `json:"legal_entity,omitempty"`
	PaymentAccount string `json:"payment_account,omitempty"`
	Department     string `json:"department,omitempty"`

	CheckStatus string    `json:"check_status"`
	CreatedAt   time.Time `json:"created_at"`
}

// PartitionValue resolves the order's value for a partition key, falling back
// to the key's default label when the attribute is absent.
func (o *Order) PartitionValue(key PartitionKey) string {
	var v string
	switch key {
	case PartitionBusinessLine:
		v = o.BusinessLine
	case PartitionLegalEntity:
		v = o.LegalEntity
	case PartitionPaymentAccount:
		v = o.PaymentAccount
	case PartitionDepartment:
		v = o.Department
	}
	if v == "" {
		return key.DefaultLabel()
	}
	return v
}
