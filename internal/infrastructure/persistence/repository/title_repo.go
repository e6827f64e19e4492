package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// TitleRepository implements port.TitleRepository
type TitleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTitleRepository creates a new invoice title repository
func NewTitleRepository(db *sql.DB, logger *zap.Logger) *TitleRepository {
	return &TitleRepository{db: db, logger: logger}
}

const titleColumns = `title_id, title_name, tax_number, address, phone, bank_name, bank_account, is_default, created_at`

// Create inserts a saved title
func (r *TitleRepository) Create(ctx context.Context, title *entity.TitleProfile) error {
	if title.CreatedAt.IsZero() {
		title.CreatedAt = time.Now()
	}

	query := `INSERT INTO invoice_titles (` + titleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		title.TitleID,
		title.TitleName,
		title.TaxNumber,
		title.Address,
		title.Phone,
		title.BankName,
		title.BankAccount,
		title.IsDefault,
		title.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice title", zap.String("title_id", title.TitleID), zap.Error(err))
		return fmt.Errorf("failed to create invoice title: %w", err)
	}
	return nil
}

// GetByTitleID returns the title, or nil when it does not exist
func (r *TitleRepository) GetByTitleID(ctx context.Context, titleID string) (*entity.TitleProfile, error) {
	query := `SELECT ` + titleColumns + ` FROM invoice_titles WHERE title_id = ?`

	title, err := scanTitle(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, titleID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice title", zap.String("title_id", titleID), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice title: %w", err)
	}
	return title, nil
}

// List returns every saved title, the default first
func (r *TitleRepository) List(ctx context.Context) ([]*entity.TitleProfile, error) {
	query := `SELECT ` + titleColumns + ` FROM invoice_titles ORDER BY is_default DESC, title_id`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list invoice titles", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoice titles: %w", err)
	}
	defer rows.Close()

	titles := make([]*entity.TitleProfile, 0)
	for rows.Next() {
		title, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// Count returns the number of saved titles
func (r *TitleRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM invoice_titles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count invoice titles: %w", err)
	}
	return n, nil
}

func scanTitle(s rowScanner) (*entity.TitleProfile, error) {
	var t entity.TitleProfile
	if err := s.Scan(
		&t.TitleID,
		&t.TitleName,
		&t.TaxNumber,
		&t.Address,
		&t.Phone,
		&t.BankName,
		&t.BankAccount,
		&t.IsDefault,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

var _ port.TitleRepository = (*TitleRepository)(nil)
