package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// SummaryRepository stores the invoicing ledger, one row per bill and category
type SummaryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *sql.DB, logger *zap.Logger) *SummaryRepository {
	return &SummaryRepository{db: db, logger: logger}
}

// GetSummary returns the bill's summary, or nil when it has none
func (r *SummaryRepository) GetSummary(ctx context.Context, billNo string) (*entity.BillInvoiceSummary, error) {
	query := `
		SELECT category, should_amount_cents, invoiced_amount_cents, order_count, created_at, updated_at
		FROM invoice_summaries
		WHERE bill_no = ?
		ORDER BY category
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, billNo)
	if err != nil {
		r.logger.Error("Failed to get invoice summary", zap.String("bill_no", billNo), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice summary: %w", err)
	}
	defer rows.Close()

	var summary *entity.BillInvoiceSummary
	for rows.Next() {
		var d entity.CategorySummary
		var should, invoiced int64
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&d.Category, &should, &invoiced, &d.OrderCount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice summary: %w", err)
		}
		d.CategoryName = d.Category.Name()
		d.ShouldAmount = entity.FromCents(should)
		d.InvoicedAmount = entity.FromCents(invoiced)

		if summary == nil {
			summary = &entity.BillInvoiceSummary{BillNo: billNo, CreatedAt: createdAt.Time}
		}
		if updatedAt.Valid && updatedAt.Time.After(summary.UpdatedAt) {
			summary.UpdatedAt = updatedAt.Time
		}
		summary.Details = append(summary.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summary, nil
}

// SaveSummary upserts every category of the summary
func (r *SummaryRepository) SaveSummary(ctx context.Context, summary *entity.BillInvoiceSummary) error {
	query := `
		INSERT INTO invoice_summaries (
			bill_no, category, should_amount_cents, invoiced_amount_cents, order_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bill_no, category) DO UPDATE SET
			should_amount_cents = excluded.should_amount_cents,
			invoiced_amount_cents = excluded.invoiced_amount_cents,
			order_count = excluded.order_count,
			updated_at = excluded.updated_at
	`

	exec := sqlite.ExecutorFor(ctx, r.db)
	for _, d := range summary.Details {
		_, err := exec.ExecContext(ctx, query,
			summary.BillNo,
			int(d.Category),
			entity.ToCents(d.ShouldAmount),
			entity.ToCents(d.InvoicedAmount),
			d.OrderCount,
			summary.CreatedAt,
			summary.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to save invoice summary",
				zap.String("bill_no", summary.BillNo),
				zap.Int("category", int(d.Category)),
				zap.Error(err))
			return fmt.Errorf("failed to save invoice summary: %w", err)
		}
	}
	return nil
}

// DeleteSummary removes every category of the bill's summary
func (r *SummaryRepository) DeleteSummary(ctx context.Context, billNo string) error {
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `DELETE FROM invoice_summaries WHERE bill_no = ?`, billNo)
	if err != nil {
		r.logger.Error("Failed to delete invoice summary", zap.String("bill_no", billNo), zap.Error(err))
		return fmt.Errorf("failed to delete invoice summary: %w", err)
	}
	return nil
}

var _ port.SummaryRepository = (*SummaryRepository)(nil)
