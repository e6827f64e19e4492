package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/domain/workflow"
	"github.com/garyjia/bill-invoicing/internal/ledger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BillQuery filters and pages a bill listing. Page starts at 1.
type BillQuery struct {
	Status    string
	CycleFrom string
	CycleTo   string
	Page      int
	PageSize  int
}

// OrderQuery filters and pages the orders of one bill
type OrderQuery struct {
	BusinessType entity.BusinessType
	CheckStatus  string
	Page         int
	PageSize     int
}

// BillPage is one page of bills
type BillPage struct {
	Bills    []*entity.Bill `json:"bills"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// OrderPage is one page of a bill's orders
type OrderPage struct {
	Orders   []entity.Order `json:"orders"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// BillService manages bills and their confirmation
type BillService interface {
	ListBills(ctx context.Context, query BillQuery) (*BillPage, error)
	GetBill(ctx context.Context, billNo string) (*entity.Bill, error)
	ListOrders(ctx context.Context, billNo string, query OrderQuery) (*OrderPage, error)

	// ConfirmBill marks every order checked and moves the bill to PENDING_INVOICE
	ConfirmBill(ctx context.Context, billNo string) (*entity.Bill, error)

	// CancelConfirm returns a confirmed bill to PENDING_CONFIRM and drops its untouched invoice summary
	CancelConfirm(ctx context.Context, billNo string) (*entity.Bill, error)

	// UpdateOrderCheckStatus marks individual orders CHECKED or UNCHECKED while the
	// bill awaits confirmation. Every named order must belong to the bill.
	UpdateOrderCheckStatus(ctx context.Context, billNo string, orderNos []string, status string) (int, error)
}

type billServiceImpl struct {
	billRepo  port.BillRepository
	orderRepo port.OrderRepository
	ledger    InvoiceLedger
	txManager port.TransactionManager
	logger    Logger
	now       func() time.Time
}

// NewBillService creates a new BillService
func NewBillService(
	billRepo port.BillRepository,
	orderRepo port.OrderRepository,
	ledger InvoiceLedger,
	txManager port.TransactionManager,
	logger Logger,
) BillService {
	return &billServiceImpl{
		billRepo:  billRepo,
		orderRepo: orderRepo,
		ledger:    ledger,
		txManager: txManager,
		logger:    logger,
		now:       time.Now,
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func (s *billServiceImpl) ListBills(ctx context.Context, query BillQuery) (*BillPage, error) {
	page, pageSize := normalizePage(query.Page, query.PageSize)

	bills, total, err := s.billRepo.List(ctx, port.BillFilter{
		Status:    query.Status,
		CycleFrom: query.CycleFrom,
		CycleTo:   query.CycleTo,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	})
	if err != nil {
		s.logger.Error("Failed to list bills", "error", err, "status", query.Status)
		return nil, fmt.Errorf("list bills: %w", err)
	}

	return &BillPage{Bills: bills, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *billServiceImpl) GetBill(ctx context.Context, billNo string) (*entity.Bill, error) {
	return loadBill(ctx, s.billRepo, billNo)
}

func (s *billServiceImpl) ListOrders(ctx context.Context, billNo string, query OrderQuery) (*OrderPage, error) {
	if _, err := loadBill(ctx, s.billRepo, billNo); err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(query.Page, query.PageSize)
	orders, total, err := s.orderRepo.List(ctx, billNo, port.OrderFilter{
		BusinessType: query.BusinessType,
		CheckStatus:  query.CheckStatus,
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	})
	if err != nil {
		s.logger.Error("Failed to list orders", "error", err, "bill_no", billNo)
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return &OrderPage{Orders: orders, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *billServiceImpl) ConfirmBill(ctx context.Context, billNo string) (*entity.Bill, error) {
	var bill *entity.Bill
	err := s.ledger.WithBill(ctx, billNo, func(ctx context.Context) error {
		var err error
		bill, err = loadBill(ctx, s.billRepo, billNo)
		if err != nil {
			return err
		}

		next, err := advance(ctx, bill.Status, workflow.TriggerConfirm, workflow.BillGuards{})
		if err != nil {
			return fmt.Errorf("confirm bill %s: %w", billNo, err)
		}

		confirmedAt := s.now()
		err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.orderRepo.UpdateCheckStatus(ctx, billNo, entity.CheckStatusChecked); err != nil {
				return err
			}
			if err := s.billRepo.UpdateStatus(ctx, billNo, next.String()); err != nil {
				return err
			}
			return s.billRepo.SetConfirmedAt(ctx, billNo, &confirmedAt)
		})
		if err != nil {
			s.logger.Error("Failed to confirm bill", "error", err, "bill_no", billNo)
			return fmt.Errorf("confirm bill %s: %w", billNo, err)
		}

		bill.Status = next.String()
		bill.ConfirmedAt = &confirmedAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bill confirmed", "bill_no", billNo, "status", bill.Status)
	return bill, nil
}

func (s *billServiceImpl) CancelConfirm(ctx context.Context, billNo string) (*entity.Bill, error) {
	var bill *entity.Bill
	err := s.ledger.WithBill(ctx, billNo, func(ctx context.Context) error {
		var err error
		bill, err = loadBill(ctx, s.billRepo, billNo)
		if err != nil {
			return err
		}

		next, err := advance(ctx, bill.Status, workflow.TriggerCancelConfirm, workflow.BillGuards{})
		if err != nil {
			return fmt.Errorf("cancel confirmation of %s: %w", billNo, err)
		}

		err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.ledger.Discard(ctx, billNo); err != nil && !errors.Is(err, ledger.ErrNotFound) {
				return err
			}
			if err := s.orderRepo.UpdateCheckStatus(ctx, billNo, entity.CheckStatusUnchecked); err != nil {
				return err
			}
			if err := s.billRepo.UpdateStatus(ctx, billNo, next.String()); err != nil {
				return err
			}
			return s.billRepo.SetConfirmedAt(ctx, billNo, nil)
		})
		if err != nil {
			s.logger.Error("Failed to cancel bill confirmation", "error", err, "bill_no", billNo)
			return fmt.Errorf("cancel confirmation of %s: %w", billNo, err)
		}

		bill.Status = next.String()
		bill.ConfirmedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bill confirmation cancelled", "bill_no", billNo)
	return bill, nil
}

func (s *billServiceImpl) UpdateOrderCheckStatus(ctx context.Context, billNo string, orderNos []string, status string) (int, error) {
	if status != entity.CheckStatusChecked && status != entity.CheckStatusUnchecked {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCheckStatus, status)
	}
	orderNos = uniqueNonEmpty(orderNos)
	if len(orderNos) == 0 {
		return 0, ErrNoOrdersSelected
	}

	var updated int
	err := s.ledger.WithBill(ctx, billNo, func(ctx context.Context) error {
		bill, err := loadBill(ctx, s.billRepo, billNo)
		if err != nil {
			return err
		}
		if bill.Status != entity.BillStatusPendingConfirm {
			return fmt.Errorf("%w: %s is %s", ErrOrdersLocked, billNo, bill.Status)
		}

		return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			n, err := s.orderRepo.SetCheckStatus(ctx, billNo, orderNos, status)
			if err != nil {
				return err
			}
			if n != len(orderNos) {
				return fmt.Errorf("%w: %d of %d orders belong to %s", ErrOrderNotFound, n, len(orderNos), billNo)
			}
			updated = n
			return nil
		})
	})
	if err != nil {
		s.logger.Error("Failed to update order check status", "error", err, "bill_no", billNo, "status", status)
		return 0, err
	}

	s.logger.Info("Order check status updated", "bill_no", billNo, "status", status, "orders", updated)
	return updated, nil
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func loadBill(ctx context.Context, repo port.BillRepository, billNo string) (*entity.Bill, error) {
	bill, err := repo.GetByBillNo(ctx, billNo)
	if err != nil {
		return nil, fmt.Errorf("get bill %s: %w", billNo, err)
	}
	if bill == nil {
		return nil, fmt.Errorf("%w: %s", ErrBillNotFound, billNo)
	}
	return bill, nil
}
