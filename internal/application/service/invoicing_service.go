package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/garyjia/bill-invoicing/internal/allocation"
	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/domain/workflow"
	"github.com/garyjia/bill-invoicing/internal/export"
	"github.com/garyjia/bill-invoicing/internal/ledger"
	"github.com/garyjia/bill-invoicing/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoicingOptions tunes row generation
type InvoicingOptions struct {
	Policy        allocation.Policy
	MaxDimensions int
}

// InvoiceTable is the generated invoice rows of a bill with its ledger state
type InvoiceTable struct {
	BillNo     string                     `json:"bill_no"`
	Dimensions []entity.PartitionKey      `json:"dimensions"`
	Rows       []entity.InvoiceRow        `json:"rows"`
	Summary    *entity.BillInvoiceSummary `json:"summary"`
}

// ApplyRequest is one invoicing submission
type ApplyRequest struct {
	BillNo    string
	Submitter string
	Rows      []entity.InvoiceRow
}

// ApplyResult is the outcome of an accepted submission
type ApplyResult struct {
	Application *entity.InvoiceApplication `json:"application"`
	Summary     *entity.BillInvoiceSummary `json:"summary"`
	BillStatus  string                     `json:"bill_status"`
}

// InvoicingService generates invoice rows and records submissions against the ledger
type InvoicingService interface {
	// GenerateInvoiceRows builds the bill's rows split by dims. The first call fixes
	// the bill's should-invoice amounts.
	GenerateInvoiceRows(ctx context.Context, billNo string, dims []string) (*InvoiceTable, error)

	GetInvoiceSummary(ctx context.Context, billNo string) (*entity.BillInvoiceSummary, error)

	// ApplyInvoice submits rows. Over-submission rejects the whole request; rows
	// naming a saved title take its header.
	ApplyInvoice(ctx context.Context, req ApplyRequest) (*ApplyResult, error)

	ListApplications(ctx context.Context, billNo string) ([]*entity.InvoiceApplication, error)

	// ExportInvoiceWorkbook writes the rows, summary and orders of a bill as xlsx
	ExportInvoiceWorkbook(ctx context.Context, billNo string, dims []string, w io.Writer) error

	// ListInvoiceTitles returns the saved buyer headers rows can reference by title ID
	ListInvoiceTitles(ctx context.Context) ([]*entity.TitleProfile, error)
}

type invoicingServiceImpl struct {
	billRepo  port.BillRepository
	orderRepo port.OrderRepository
	appRepo   port.ApplicationRepository
	titleRepo port.TitleRepository
	ledger    InvoiceLedger
	workbook  WorkbookWriter
	txManager port.TransactionManager
	validate  *validator.Validate
	opts      InvoicingOptions
	logger    Logger
	now       func() time.Time
}

// NewInvoicingService creates a new InvoicingService
func NewInvoicingService(
	billRepo port.BillRepository,
	orderRepo port.OrderRepository,
	appRepo port.ApplicationRepository,
	titleRepo port.TitleRepository,
	ledger InvoiceLedger,
	workbook WorkbookWriter,
	txManager port.TransactionManager,
	opts InvoicingOptions,
	logger Logger,
) InvoicingService {
	if opts.MaxDimensions <= 0 || opts.MaxDimensions > allocation.MaxDimensions {
		opts.MaxDimensions = allocation.MaxDimensions
	}
	return &invoicingServiceImpl{
		billRepo:  billRepo,
		orderRepo: orderRepo,
		appRepo:   appRepo,
		titleRepo: titleRepo,
		ledger:    ledger,
		workbook:  workbook,
		txManager: txManager,
		validate:  utils.NewValidator(),
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *invoicingServiceImpl) GenerateInvoiceRows(ctx context.Context, billNo string, dims []string) (*InvoiceTable, error) {
	var table *InvoiceTable
	err := s.ledger.WithBill(ctx, billNo, func(ctx context.Context) error {
		bill, err := s.invoiceableBill(ctx, billNo)
		if err != nil {
			return err
		}
		table, err = s.generate(ctx, bill, dims)
		return err
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (s *invoicingServiceImpl) generate(ctx context.Context, bill *entity.Bill, dims []string) (*InvoiceTable, error) {
	keys, err := allocation.ParseDimensions(dims)
	if err != nil {
		return nil, err
	}
	if len(keys) > s.opts.MaxDimensions {
		return nil, fmt.Errorf("%w: got %d, max %d", allocation.ErrTooManyDimensions, len(keys), s.opts.MaxDimensions)
	}

	orders, err := s.orderRepo.ListByBillNo(ctx, bill.BillNo)
	if err != nil {
		s.logger.Error("Failed to load orders", "error", err, "bill_no", bill.BillNo)
		return nil, fmt.Errorf("load orders: %w", err)
	}

	rows, err := allocation.Generate(orders, keys, s.opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("generate invoice rows for %s: %w", bill.BillNo, err)
	}

	summary, err := s.ledger.GetOrInitialize(ctx, bill.BillNo, rows)
	if err != nil {
		s.logger.Error("Failed to initialize invoice summary", "error", err, "bill_no", bill.BillNo)
		return nil, fmt.Errorf("initialize summary: %w", err)
	}

	s.logger.Info("Invoice rows generated",
		"bill_no", bill.BillNo,
		"dimensions", keys,
		"rows", len(rows),
		"orders", len(orders))

	return &InvoiceTable{BillNo: bill.BillNo, Dimensions: keys, Rows: rows, Summary: summary}, nil
}

func (s *invoicingServiceImpl) GetInvoiceSummary(ctx context.Context, billNo string) (*entity.BillInvoiceSummary, error) {
	if _, err := loadBill(ctx, s.billRepo, billNo); err != nil {
		return nil, err
	}
	return s.ledger.GetSummary(ctx, billNo)
}

func (s *invoicingServiceImpl) ApplyInvoice(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if len(req.Rows) == 0 {
		return nil, ErrEmptySubmission
	}
	rows, err := s.resolveTitles(ctx, req.Rows)
	if err != nil {
		return nil, err
	}
	if err := s.validateRows(rows); err != nil {
		return nil, err
	}

	amount := decimal.Zero
	for _, row := range rows {
		if row.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: %s", ledger.ErrInvalidAmount, row.Amount.StringFixed(2))
		}
		amount = amount.Add(row.Amount)
	}
	if !amount.Round(2).IsPositive() {
		return nil, ErrZeroAmount
	}

	app := &entity.InvoiceApplication{
		ApplicationNo: "APP-" + uuid.New().String(),
		BillNo:        req.BillNo,
		Submitter:     req.Submitter,
		Status:        entity.ApplicationStatusSuccess,
		Amount:        amount.Round(2),
		Rows:          rows,
		AppliedAt:     s.now(),
	}

	var summary *entity.BillInvoiceSummary
	var status workflow.State
	err = s.ledger.WithBill(ctx, req.BillNo, func(ctx context.Context) error {
		bill, err := s.invoiceableBill(ctx, req.BillNo)
		if err != nil {
			return err
		}

		status, err = advance(ctx, bill.Status, workflow.TriggerApplyInvoice, workflow.BillGuards{})
		if err != nil {
			return err
		}

		return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			var err error
			summary, err = s.ledger.Submit(ctx, req.BillNo, rows)
			if err != nil {
				return err
			}
			if err := s.appRepo.Create(ctx, app); err != nil {
				return err
			}

			if summary.IsFullyInvoiced() {
				done := summary
				status, err = advance(ctx, status.String(), workflow.TriggerCompleteInvoicing, workflow.BillGuards{
					NothingRemaining: func(context.Context) bool { return done.IsFullyInvoiced() },
				})
				if err != nil {
					return err
				}
				if err := s.billRepo.SetInvoicedAt(ctx, req.BillNo, app.AppliedAt); err != nil {
					return err
				}
			}

			if status.String() != bill.Status {
				return s.billRepo.UpdateStatus(ctx, req.BillNo, status.String())
			}
			return nil
		})
	})
	if err != nil {
		s.logger.Error("Invoice application rejected",
			"error", err,
			"bill_no", req.BillNo,
			"amount", amount.StringFixed(2))
		return nil, fmt.Errorf("apply invoice for %s: %w", req.BillNo, err)
	}

	s.logger.Info("Invoice application accepted",
		"bill_no", req.BillNo,
		"application_no", app.ApplicationNo,
		"amount", app.Amount.StringFixed(2),
		"remaining", summary.RemainingAmount().StringFixed(2),
		"status", status.String())

	return &ApplyResult{Application: app, Summary: summary, BillStatus: status.String()}, nil
}

// resolveTitles fills the header of rows that reference a saved title.
// The stored name and tax number replace whatever the row carried.
func (s *invoicingServiceImpl) resolveTitles(ctx context.Context, rows []entity.InvoiceRow) ([]entity.InvoiceRow, error) {
	resolved := make([]entity.InvoiceRow, len(rows))
	copy(resolved, rows)

	cache := make(map[string]*entity.TitleProfile)
	for i := range resolved {
		id := resolved[i].Title.TitleID
		if id == "" {
			continue
		}
		profile, ok := cache[id]
		if !ok {
			var err error
			profile, err = s.titleRepo.GetByTitleID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("load invoice title %s: %w", id, err)
			}
			if profile == nil {
				return nil, fmt.Errorf("%w: row %d references %s", ErrTitleNotFound, i+1, id)
			}
			cache[id] = profile
		}
		resolved[i].Title = profile.InvoiceTitle()
	}
	return resolved, nil
}

func (s *invoicingServiceImpl) ListApplications(ctx context.Context, billNo string) ([]*entity.InvoiceApplication, error) {
	if _, err := loadBill(ctx, s.billRepo, billNo); err != nil {
		return nil, err
	}
	apps, err := s.appRepo.ListByBillNo(ctx, billNo)
	if err != nil {
		s.logger.Error("Failed to list invoice applications", "error", err, "bill_no", billNo)
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func (s *invoicingServiceImpl) ExportInvoiceWorkbook(ctx context.Context, billNo string, dims []string, w io.Writer) error {
	var bill *entity.Bill
	var table *InvoiceTable
	err := s.ledger.WithBill(ctx, billNo, func(ctx context.Context) error {
		var err error
		bill, err = s.invoiceableBill(ctx, billNo)
		if err != nil {
			return err
		}
		table, err = s.generate(ctx, bill, dims)
		return err
	})
	if err != nil {
		return err
	}

	orders, err := s.orderRepo.ListByBillNo(ctx, billNo)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}

	if err := s.workbook.Write(w, export.Workbook{
		Bill:    bill,
		Rows:    table.Rows,
		Summary: table.Summary,
		Orders:  orders,
	}); err != nil {
		s.logger.Error("Failed to export invoice workbook", "error", err, "bill_no", billNo)
		return fmt.Errorf("export workbook: %w", err)
	}
	return nil
}

func (s *invoicingServiceImpl) ListInvoiceTitles(ctx context.Context) ([]*entity.TitleProfile, error) {
	titles, err := s.titleRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list invoice titles", "error", err)
		return nil, fmt.Errorf("list invoice titles: %w", err)
	}
	return titles, nil
}

func (s *invoicingServiceImpl) invoiceableBill(ctx context.Context, billNo string) (*entity.Bill, error) {
	bill, err := loadBill(ctx, s.billRepo, billNo)
	if err != nil {
		return nil, err
	}
	if !workflow.State(bill.Status).AcceptsInvoicing() {
		return nil, fmt.Errorf("%w: %s is %s", ErrBillNotInvoiceable, billNo, bill.Status)
	}
	return bill, nil
}
