package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategorySummary reconciles one invoice category of a bill across submissions.
// The remaining amount is always derived, never stored.
type CategorySummary struct {
	Category       InvoiceCategory `json:"category"`
	CategoryName   string          `json:"category_name"`
	ShouldAmount   decimal.Decimal `json:"should_amount"`
	InvoicedAmount decimal.Decimal `json:"invoiced_amount"`
	OrderCount     int             `json:"order_count"`
}

// RemainingAmount returns max(0, should - invoiced)
func (c CategorySummary) RemainingAmount() decimal.Decimal {
	remaining := c.ShouldAmount.Sub(c.InvoicedAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining.Round(2)
}

// BillInvoiceSummary is the per-bill invoicing ledger state (开票汇总)
type BillInvoiceSummary struct {
	BillNo    string            `json:"bill_no"`
	Details   []CategorySummary `json:"details"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Detail returns the entry for a category, or nil when the bill has none
func (s *BillInvoiceSummary) Detail(category InvoiceCategory) *CategorySummary {
	for i := range s.Details {
		if s.Details[i].Category == category {
			return &s.Details[i]
		}
	}
	return nil
}

// ShouldInvoiceAmount is the billable total across all categories
func (s *BillInvoiceSummary) ShouldInvoiceAmount() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.Details {
		total = total.Add(d.ShouldAmount)
	}
	return total
}

// InvoicedAmount is the cumulative submitted total across all categories
func (s *BillInvoiceSummary) InvoicedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.Details {
		total = total.Add(d.InvoicedAmount)
	}
	return total
}

// RemainingAmount sums the per-category remaining amounts
func (s *BillInvoiceSummary) RemainingAmount() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.Details {
		total = total.Add(d.RemainingAmount())
	}
	return total
}

// IsFullyInvoiced reports whether nothing is left to invoice
func (s *BillInvoiceSummary) IsFullyInvoiced() bool {
	return s.RemainingAmount().IsZero()
}

// Clone returns a deep copy so callers never alias ledger state
func (s *BillInvoiceSummary) Clone() *BillInvoiceSummary {
	if s == nil {
		return nil
	}
	c := *s
	c.Details = append([]CategorySummary(nil), s.Details...)
	return &c
}
