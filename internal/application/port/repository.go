package port

import (
	"context"
	"time"

	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/ledger"
)

// BillFilter narrows a bill listing. Empty fields match everything; cycles are "YYYY-MM".
type BillFilter struct {
	Status    string
	CycleFrom string
	CycleTo   string
	Limit     int
	Offset    int
}

// OrderFilter narrows an order listing within one bill
type OrderFilter struct {
	BusinessType entity.BusinessType
	CheckStatus  string
	Limit        int
	Offset       int
}

// BillRepository defines persistence operations for Bill
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByBillNo(ctx context.Context, billNo string) (*entity.Bill, error)
	List(ctx context.Context, filter BillFilter) ([]*entity.Bill, int, error)
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, billNo, status string) error
	SetConfirmedAt(ctx context.Context, billNo string, t *time.Time) error
	SetInvoicedAt(ctx context.Context, billNo string, t time.Time) error
}

// OrderRepository defines persistence operations for Order.
// Orders keep the sequence they were created in; allocation depends on it.
type OrderRepository interface {
	CreateBatch(ctx context.Context, orders []entity.Order) error
	ListByBillNo(ctx context.Context, billNo string) ([]entity.Order, error)
	List(ctx context.Context, billNo string, filter OrderFilter) ([]entity.Order, int, error)
	UpdateCheckStatus(ctx context.Context, billNo, status string) error

	// SetCheckStatus marks the named orders of the bill and returns how many matched
	SetCheckStatus(ctx context.Context, billNo string, orderNos []string, status string) (int, error)
}

// SummaryRepository persists the invoicing ledger
type SummaryRepository interface {
	ledger.Store
}

// ApplicationRepository defines persistence operations for InvoiceApplication
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.InvoiceApplication) error
	ListByBillNo(ctx context.Context, billNo string) ([]*entity.InvoiceApplication, error)
}

// TitleRepository defines persistence operations for saved invoice titles.
// GetByTitleID returns nil, nil when the title does not exist.
type TitleRepository interface {
	Create(ctx context.Context, title *entity.TitleProfile) error
	GetByTitleID(ctx context.Context, titleID string) (*entity.TitleProfile, error)
	List(ctx context.Context) ([]*entity.TitleProfile, error)
	Count(ctx context.Context) (int, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
