package service

import (
	"context"
	"io"

	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/domain/workflow"
	"github.com/garyjia/bill-invoicing/internal/export"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// InvoiceLedger tracks should and invoiced amounts per bill.
// WithBill holds the bill's lock for fn; transactions touching the bill are opened inside it.
type InvoiceLedger interface {
	WithBill(ctx context.Context, billNo string, fn func(ctx context.Context) error) error
	GetOrInitialize(ctx context.Context, billNo string, rows []entity.InvoiceRow) (*entity.BillInvoiceSummary, error)
	Submit(ctx context.Context, billNo string, rows []entity.InvoiceRow) (*entity.BillInvoiceSummary, error)
	GetSummary(ctx context.Context, billNo string) (*entity.BillInvoiceSummary, error)
	Discard(ctx context.Context, billNo string) error
}

// WorkbookWriter renders an invoice workbook
type WorkbookWriter interface {
	Write(w io.Writer, wb export.Workbook) error
}

// advance fires trigger against a bill currently in status and returns the new status
func advance(ctx context.Context, status string, trigger workflow.Trigger, guards workflow.BillGuards) (workflow.State, error) {
	machine, err := workflow.NewBillMachine(workflow.State(status), guards)
	if err != nil {
		return "", err
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return "", err
	}
	return machine.State(), nil
}
