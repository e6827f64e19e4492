package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// BillRepository implements port.BillRepository
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) *BillRepository {
	return &BillRepository{db: db, logger: logger}
}

const billColumns = `bill_no, company_name, settlement_cycle, status, total_amount_cents, order_count,
	confirmed_at, invoiced_at, created_at, updated_at`

// Create inserts a new bill
func (r *BillRepository) Create(ctx context.Context, bill *entity.Bill) error {
	now := time.Now()
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now
	if bill.Status == "" {
		bill.Status = entity.BillStatusPendingConfirm
	}

	query := `INSERT INTO bills (` + billColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		bill.BillNo,
		bill.CompanyName,
		bill.SettlementCycle,
		bill.Status,
		entity.ToCents(bill.TotalAmount),
		bill.OrderCount,
		bill.ConfirmedAt,
		bill.InvoicedAt,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create bill", zap.String("bill_no", bill.BillNo), zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// GetByBillNo returns the bill, or nil when it does not exist
func (r *BillRepository) GetByBillNo(ctx context.Context, billNo string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_no = ?`

	bill, err := scanBill(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, billNo))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get bill", zap.String("bill_no", billNo), zap.Error(err))
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// List returns one page of bills, newest cycle first, with the unpaged total
func (r *BillRepository) List(ctx context.Context, filter port.BillFilter) ([]*entity.Bill, int, error) {
	var conds []string
	var args []interface{}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.CycleFrom != "" {
		conds = append(conds, "settlement_cycle >= ?")
		args = append(args, filter.CycleFrom)
	}
	if filter.CycleTo != "" {
		conds = append(conds, "settlement_cycle <= ?")
		args = append(args, filter.CycleTo)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	exec := sqlite.ExecutorFor(ctx, r.db)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills`+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count bills", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	query := `SELECT ` + billColumns + ` FROM bills` + where + ` ORDER BY settlement_cycle DESC, bill_no`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := make([]*entity.Bill, 0)
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	return bills, total, rows.Err()
}

// Count returns the number of stored bills
func (r *BillRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM bills`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bills: %w", err)
	}
	return n, nil
}

// UpdateStatus sets the bill's lifecycle status
func (r *BillRepository) UpdateStatus(ctx context.Context, billNo, status string) error {
	return r.update(ctx, billNo, `UPDATE bills SET status = ?, updated_at = ? WHERE bill_no = ?`, status, time.Now(), billNo)
}

// SetConfirmedAt records or clears the confirmation time
func (r *BillRepository) SetConfirmedAt(ctx context.Context, billNo string, t *time.Time) error {
	return r.update(ctx, billNo, `UPDATE bills SET confirmed_at = ?, updated_at = ? WHERE bill_no = ?`, t, time.Now(), billNo)
}

// SetInvoicedAt records when invoicing completed
func (r *BillRepository) SetInvoicedAt(ctx context.Context, billNo string, t time.Time) error {
	return r.update(ctx, billNo, `UPDATE bills SET invoiced_at = ?, updated_at = ? WHERE bill_no = ?`, t, time.Now(), billNo)
}

func (r *BillRepository) update(ctx context.Context, billNo, query string, args ...interface{}) error {
	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update bill", zap.String("bill_no", billNo), zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill not found: %s", billNo)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(s rowScanner) (*entity.Bill, error) {
	var bill entity.Bill
	var totalCents int64
	var confirmedAt, invoicedAt sql.NullTime

	err := s.Scan(
		&bill.BillNo,
		&bill.CompanyName,
		&bill.SettlementCycle,
		&bill.Status,
		&totalCents,
		&bill.OrderCount,
		&confirmedAt,
		&invoicedAt,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	bill.TotalAmount = entity.FromCents(totalCents)
	if confirmedAt.Valid {
		bill.ConfirmedAt = &confirmedAt.Time
	}
	if invoicedAt.Valid {
		bill.InvoicedAt = &invoicedAt.Time
	}
	return &bill, nil
}

var _ port.BillRepository = (*BillRepository)(nil)
