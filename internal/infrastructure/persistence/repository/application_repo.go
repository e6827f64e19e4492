package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ApplicationRepository implements port.ApplicationRepository.
// Submitted rows are kept as a JSON snapshot.
type ApplicationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new invoice application repository
func NewApplicationRepository(db *sql.DB, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{db: db, logger: logger}
}

// Create inserts the application and sets its ID
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.InvoiceApplication) error {
	rowsJSON, err := json.Marshal(app.Rows)
	if err != nil {
		return fmt.Errorf("failed to marshal application rows: %w", err)
	}

	query := `
		INSERT INTO invoice_applications (
			application_no, bill_no, submitter, status, amount_cents, rows_json, applied_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		app.ApplicationNo,
		app.BillNo,
		app.Submitter,
		app.Status,
		entity.ToCents(app.Amount),
		string(rowsJSON),
		app.AppliedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice application",
			zap.String("application_no", app.ApplicationNo),
			zap.String("bill_no", app.BillNo),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	app.ID = id
	return nil
}

// ListByBillNo returns the bill's applications, oldest first
func (r *ApplicationRepository) ListByBillNo(ctx context.Context, billNo string) ([]*entity.InvoiceApplication, error) {
	query := `
		SELECT id, application_no, bill_no, submitter, status, amount_cents, rows_json, applied_at
		FROM invoice_applications
		WHERE bill_no = ?
		ORDER BY applied_at, id
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, billNo)
	if err != nil {
		r.logger.Error("Failed to list invoice applications", zap.String("bill_no", billNo), zap.Error(err))
		return nil, fmt.Errorf("failed to list invoice applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*entity.InvoiceApplication, 0)
	for rows.Next() {
		var app entity.InvoiceApplication
		var cents int64
		var rowsJSON string
		if err := rows.Scan(
			&app.ID,
			&app.ApplicationNo,
			&app.BillNo,
			&app.Submitter,
			&app.Status,
			&cents,
			&rowsJSON,
			&app.AppliedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice application: %w", err)
		}
		app.Amount = entity.FromCents(cents)
		if err := json.Unmarshal([]byte(rowsJSON), &app.Rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rows of %s: %w", app.ApplicationNo, err)
		}
		apps = append(apps, &app)
	}
	return apps, rows.Err()
}

var _ port.ApplicationRepository = (*ApplicationRepository)(nil)
