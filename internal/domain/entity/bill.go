package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill is a monthly settlement package grouping the orders of one company
type Bill struct {
	BillNo          string          `json:"bill_no"`
	CompanyName     string          `json:"company_name"`
	SettlementCycle string          `json:"settlement_cycle"` // e.g. 2026-01
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	OrderCount      int             `json:"order_count"`
	ConfirmedAt     *time.Time      `json:"confirmed_at,omitempty"`
	InvoicedAt      *time.Time      `json:"invoiced_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// InvoiceApplication records one accepted invoicing submission (开票申请)
type InvoiceApplication struct {
	ID            int64           `json:"id"`
	ApplicationNo string          `json:"application_no"`
	BillNo        string          `json:"bill_no"`
	Submitter     string          `json:"submitter"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Rows          []InvoiceRow    `json:"rows"`
	AppliedAt     time.Time       `json:"applied_at"`
}

// AmountByCategory totals the submitted rows per invoice category
func (a *InvoiceApplication) AmountByCategory() map[InvoiceCategory]decimal.Decimal {
	totals := make(map[InvoiceCategory]decimal.Decimal)
	for _, row := range a.Rows {
		totals[row.Category] = totals[row.Category].Add(row.Amount)
	}
	return totals
}
