package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger tracks how much of each invoice category a bill should invoice and
// how much has been submitted so far. Operations on the same bill are
// serialised; different bills proceed in parallel.
//
// Lock order is bill lock, then database connection. A caller that runs ledger
// operations inside a transaction must open the transaction within WithBill.
type Ledger struct {
	store  Store
	logger *zap.Logger
	locks  *keyedMutex
	now    func() time.Time
}

// New creates a ledger over the given store
func New(store Store, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
		locks:  newKeyedMutex(),
		now:    time.Now,
	}
}

// heldBill marks a context whose caller holds the bill's lock in this ledger
type heldBill struct {
	ledger *Ledger
	billNo string
}

// WithBill runs fn while holding the bill's lock. Ledger calls for the same
// bill made with the context passed to fn do not lock again.
func (l *Ledger) WithBill(ctx context.Context, billNo string, fn func(ctx context.Context) error) error {
	unlock, err := l.lock(ctx, billNo)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(context.WithValue(ctx, heldBill{ledger: l, billNo: billNo}, true))
}

func (l *Ledger) lock(ctx context.Context, billNo string) (func(), error) {
	if held, _ := ctx.Value(heldBill{ledger: l, billNo: billNo}).(bool); held {
		return func() {}, nil
	}
	unlock, err := l.locks.Lock(ctx, billNo)
	if err != nil {
		return nil, fmt.Errorf("wait for bill %s: %w", billNo, err)
	}
	return unlock, nil
}

// InitializeSummary fixes the should-amounts of a bill from its generated rows
func (l *Ledger) InitializeSummary(ctx context.Context, billNo string, rows []entity.InvoiceRow) (*entity.BillInvoiceSummary, error) {
	unlock, err := l.lock(ctx, billNo)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := l.store.GetSummary(ctx, billNo)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInitialized, billNo)
	}

	return l.initialize(ctx, billNo, rows)
}

// GetOrInitialize returns the bill's summary, creating it from rows only when
// none exists. An existing summary is never rebuilt.
func (l *Ledger) GetOrInitialize(ctx context.Context, billNo string, rows []entity.InvoiceRow) (*entity.BillInvoiceSummary, error) {
	unlock, err := l.lock(ctx, billNo)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := l.store.GetSummary(ctx, billNo)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	return l.initialize(ctx, billNo, rows)
}

func (l *Ledger) initialize(ctx context.Context, billNo string, rows []entity.InvoiceRow) (*entity.BillInvoiceSummary, error) {
	now := l.now()
	summary := &entity.BillInvoiceSummary{
		BillNo:    billNo,
		Details:   make([]entity.CategorySummary, 0, len(entity.Categories)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	amounts := make(map[entity.InvoiceCategory]decimal.Decimal)
	counts := make(map[entity.InvoiceCategory]int)
	present := make(map[entity.InvoiceCategory]bool)
	for _, row := range rows {
		amounts[row.Category] = amounts[row.Category].Add(row.Amount)
		counts[row.Category] += row.OrderCount
		present[row.Category] = true
	}

	for _, category := range entity.Categories {
		if !present[category] {
			continue
		}
		summary.Details = append(summary.Details, entity.CategorySummary{
			Category:       category,
			CategoryName:   category.Name(),
			ShouldAmount:   amounts[category].Round(2),
			InvoicedAmount: decimal.Zero,
			OrderCount:     counts[category],
		})
	}

	if err := l.store.SaveSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to save summary: %w", err)
	}

	l.logger.Info("Invoice summary initialized",
		zap.String("bill_no", billNo),
		zap.Int("categories", len(summary.Details)),
		zap.String("should_amount", summary.ShouldInvoiceAmount().StringFixed(2)))

	return summary.Clone(), nil
}

// Submit records submitted rows against the bill's summary. The submission is
// applied as a whole or not at all: a negative amount or any category that would
// exceed its should-amount rejects it and leaves the summary unchanged.
func (l *Ledger) Submit(ctx context.Context, billNo string, rows []entity.InvoiceRow) (*entity.BillInvoiceSummary, error) {
	unlock, err := l.lock(ctx, billNo)
	if err != nil {
		return nil, err
	}
	defer unlock()

	summary, err := l.store.GetSummary(ctx, billNo)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	if summary == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBill, billNo)
	}

	submitted := make(map[entity.InvoiceCategory]decimal.Decimal)
	for _, row := range rows {
		if row.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, row.Amount.StringFixed(2))
		}
		submitted[row.Category] = submitted[row.Category].Add(row.Amount)
	}

	for category, amount := range submitted {
		if !amount.IsPositive() {
			continue
		}
		detail := summary.Detail(category)
		if detail == nil {
			return nil, fmt.Errorf("%w: bill %s has nothing to invoice for %s", ErrOverSubmission, billNo, category.Name())
		}
		if detail.InvoicedAmount.Add(amount).Round(2).GreaterThan(detail.ShouldAmount) {
			return nil, fmt.Errorf("%w: %s submitted %s, remaining %s",
				ErrOverSubmission, category.Name(), amount.StringFixed(2), detail.RemainingAmount().StringFixed(2))
		}
	}

	for category, amount := range submitted {
		if !amount.IsPositive() {
			continue
		}
		detail := summary.Detail(category)
		detail.InvoicedAmount = detail.InvoicedAmount.Add(amount).Round(2)
	}
	summary.UpdatedAt = l.now()

	if err := l.store.SaveSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to save summary: %w", err)
	}

	l.logger.Info("Invoice submission recorded",
		zap.String("bill_no", billNo),
		zap.String("invoiced_amount", summary.InvoicedAmount().StringFixed(2)),
		zap.String("remaining_amount", summary.RemainingAmount().StringFixed(2)))

	return summary.Clone(), nil
}

// GetSummary returns the bill's current summary
func (l *Ledger) GetSummary(ctx context.Context, billNo string) (*entity.BillInvoiceSummary, error) {
	summary, err := l.store.GetSummary(ctx, billNo)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	if summary == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, billNo)
	}
	return summary, nil
}

// Discard drops a summary nothing has been invoiced against, so the bill's
// rows can be generated afresh
func (l *Ledger) Discard(ctx context.Context, billNo string) error {
	unlock, err := l.lock(ctx, billNo)
	if err != nil {
		return err
	}
	defer unlock()

	summary, err := l.store.GetSummary(ctx, billNo)
	if err != nil {
		return fmt.Errorf("failed to load summary: %w", err)
	}
	if summary == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, billNo)
	}
	if summary.InvoicedAmount().IsPositive() {
		return fmt.Errorf("%w: %s", ErrAlreadyInvoiced, billNo)
	}

	if err := l.store.DeleteSummary(ctx, billNo); err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}

	l.logger.Info("Invoice summary discarded", zap.String("bill_no", billNo))
	return nil
}
