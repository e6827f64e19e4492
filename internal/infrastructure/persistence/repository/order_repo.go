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

// OrderRepository implements port.OrderRepository
type OrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{db: db, logger: logger}
}

const orderColumns = `order_no, bill_no, business_type, traveler_name, pay_amount_cents,
	business_line, legal_entity, payment_account, department, check_status, created_at`

// CreateBatch inserts orders after any the bill already has, preserving slice order
func (r *OrderRepository) CreateBatch(ctx context.Context, orders []entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	exec := sqlite.ExecutorFor(ctx, r.db)

	next := make(map[string]int)
	query := `INSERT INTO orders (seq, ` + orderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range orders {
		o := &orders[i]

		seq, ok := next[o.BillNo]
		if !ok {
			if err := exec.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(seq), 0) FROM orders WHERE bill_no = ?`, o.BillNo).Scan(&seq); err != nil {
				return fmt.Errorf("failed to read order sequence: %w", err)
			}
		}
		seq++
		next[o.BillNo] = seq

		if o.CreatedAt.IsZero() {
			o.CreatedAt = time.Now()
		}
		if o.CheckStatus == "" {
			o.CheckStatus = entity.CheckStatusUnchecked
		}

		_, err := exec.ExecContext(ctx, query,
			seq,
			o.OrderNo,
			o.BillNo,
			string(o.BusinessType),
			o.TravelerName,
			entity.ToCents(o.PayAmount),
			o.BusinessLine,
			o.LegalEntity,
			o.PaymentAccount,
			o.Department,
			o.CheckStatus,
			o.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create order",
				zap.String("order_no", o.OrderNo),
				zap.String("bill_no", o.BillNo),
				zap.Error(err))
			return fmt.Errorf("failed to create order %s: %w", o.OrderNo, err)
		}
	}
	return nil
}

// ListByBillNo returns every order of the bill in creation order
func (r *OrderRepository) ListByBillNo(ctx context.Context, billNo string) ([]entity.Order, error) {
	orders, _, err := r.List(ctx, billNo, port.OrderFilter{})
	return orders, err
}

// List returns one page of a bill's orders in creation order, with the unpaged total
func (r *OrderRepository) List(ctx context.Context, billNo string, filter port.OrderFilter) ([]entity.Order, int, error) {
	conds := []string{"bill_no = ?"}
	args := []interface{}{billNo}
	if filter.BusinessType != "" {
		conds = append(conds, "business_type = ?")
		args = append(args, string(filter.BusinessType))
	}
	if filter.CheckStatus != "" {
		conds = append(conds, "check_status = ?")
		args = append(args, filter.CheckStatus)
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	exec := sqlite.ExecutorFor(ctx, r.db)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY seq`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.String("bill_no", billNo), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]entity.Order, 0)
	for rows.Next() {
		var o entity.Order
		var businessType string
		var cents int64
		if err := rows.Scan(
			&o.OrderNo,
			&o.BillNo,
			&businessType,
			&o.TravelerName,
			&cents,
			&o.BusinessLine,
			&o.LegalEntity,
			&o.PaymentAccount,
			&o.Department,
			&o.CheckStatus,
			&o.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		o.BusinessType = entity.BusinessType(businessType)
		o.PayAmount = entity.FromCents(cents)
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// UpdateCheckStatus marks every order of the bill
func (r *OrderRepository) UpdateCheckStatus(ctx context.Context, billNo, status string) error {
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx,
		`UPDATE orders SET check_status = ? WHERE bill_no = ?`, status, billNo)
	if err != nil {
		r.logger.Error("Failed to update order check status",
			zap.String("bill_no", billNo),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update order check status: %w", err)
	}
	return nil
}

// SetCheckStatus marks the named orders of the bill. Names outside the bill are
// ignored; the returned count says how many orders matched.
func (r *OrderRepository) SetCheckStatus(ctx context.Context, billNo string, orderNos []string, status string) (int, error) {
	if len(orderNos) == 0 {
		return 0, nil
	}

	args := make([]interface{}, 0, len(orderNos)+2)
	args = append(args, status, billNo)
	for _, no := range orderNos {
		args = append(args, no)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(orderNos)), ", ")

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx,
		`UPDATE orders SET check_status = ? WHERE bill_no = ? AND order_no IN (`+placeholders+`)`, args...)
	if err != nil {
		r.logger.Error("Failed to set order check status",
			zap.String("bill_no", billNo),
			zap.Int("orders", len(orderNos)),
			zap.Error(err))
		return 0, fmt.Errorf("failed to set order check status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected orders: %w", err)
	}
	return int(n), nil
}

var _ port.OrderRepository = (*OrderRepository)(nil)
