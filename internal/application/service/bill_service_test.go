package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/domain/workflow"
	"github.com/garyjia/bill-invoicing/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBillServiceFixture(status string) (*billServiceImpl, *mockBillRepo, *mockOrderRepo, *ledger.Ledger) {
	bills := newMockBillRepo(&entity.Bill{BillNo: "B001", Status: status})
	orders := &mockOrderRepo{orders: map[string][]entity.Order{
		"B001": {
			testOrder("B001", "F1", entity.BusinessTypeFlight, "100", "Sales"),
			testOrder("B001", "H1", entity.BusinessTypeHotel, "300", "Sales"),
		},
	}}
	l := ledger.New(ledger.NewMemoryStore(), zap.NewNop())
	svc := NewBillService(bills, orders, l, &mockTxManager{}, &mockLogger{}).(*billServiceImpl)
	return svc, bills, orders, l
}

func TestBillService_ListBills_Paging(t *testing.T) {
	tests := []struct {
		name       string
		query      BillQuery
		wantLimit  int
		wantOffset int
	}{
		{"defaults", BillQuery{}, defaultPageSize, 0},
		{"third page", BillQuery{Page: 3, PageSize: 10}, 10, 20},
		{"page size capped", BillQuery{Page: 1, PageSize: 1000}, maxPageSize, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, bills, _, _ := newBillServiceFixture(entity.BillStatusPendingConfirm)
			var got port.BillFilter
			bills.listFunc = func(ctx context.Context, filter port.BillFilter) ([]*entity.Bill, int, error) {
				got = filter
				return nil, 42, nil
			}

			page, err := svc.ListBills(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
			assert.Equal(t, 42, page.Total)
		})
	}
}

func TestBillService_GetBill_NotFound(t *testing.T) {
	svc, _, _, _ := newBillServiceFixture(entity.BillStatusPendingConfirm)

	_, err := svc.GetBill(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBillNotFound)

	_, err = svc.ListOrders(context.Background(), "missing", OrderQuery{})
	assert.ErrorIs(t, err, ErrBillNotFound)
}

func TestBillService_ListOrders_PassesFilter(t *testing.T) {
	svc, _, orders, _ := newBillServiceFixture(entity.BillStatusPendingConfirm)
	var got port.OrderFilter
	orders.listFunc = func(ctx context.Context, billNo string, filter port.OrderFilter) ([]entity.Order, int, error) {
		got = filter
		return nil, 0, nil
	}

	_, err := svc.ListOrders(context.Background(), "B001", OrderQuery{BusinessType: entity.BusinessTypeHotel, Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, entity.BusinessTypeHotel, got.BusinessType)
	assert.Equal(t, 5, got.Offset)
}

func TestBillService_ConfirmBill(t *testing.T) {
	svc, bills, orders, _ := newBillServiceFixture(entity.BillStatusPendingConfirm)

	bill, err := svc.ConfirmBill(context.Background(), "B001")
	require.NoError(t, err)

	assert.Equal(t, entity.BillStatusPendingInvoice, bill.Status)
	assert.NotNil(t, bill.ConfirmedAt)
	assert.Equal(t, entity.BillStatusPendingInvoice, bills.bills["B001"].Status)
	for _, o := range orders.orders["B001"] {
		assert.Equal(t, entity.CheckStatusChecked, o.CheckStatus)
	}
}

func TestBillService_ConfirmBill_InvalidTransition(t *testing.T) {
	svc, bills, _, _ := newBillServiceFixture(entity.BillStatusInvoicing)

	_, err := svc.ConfirmBill(context.Background(), "B001")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	assert.Equal(t, entity.BillStatusInvoicing, bills.bills["B001"].Status)
}

func TestBillService_ConfirmBill_StoreFailure(t *testing.T) {
	svc, bills, _, _ := newBillServiceFixture(entity.BillStatusPendingConfirm)
	bills.updateStatusFunc = func(ctx context.Context, billNo, status string) error {
		return errors.New("disk full")
	}

	_, err := svc.ConfirmBill(context.Background(), "B001")
	assert.Error(t, err)
	assert.Nil(t, bills.bills["B001"].ConfirmedAt)
}

func TestBillService_CancelConfirm_DiscardsSummary(t *testing.T) {
	ctx := context.Background()
	svc, bills, orders, l := newBillServiceFixture(entity.BillStatusPendingInvoice)

	_, err := l.GetOrInitialize(ctx, "B001", []entity.InvoiceRow{
		{Category: entity.CategoryGeneral, Amount: orders.orders["B001"][1].PayAmount, OrderCount: 1},
	})
	require.NoError(t, err)

	bill, err := svc.CancelConfirm(ctx, "B001")
	require.NoError(t, err)
	assert.Equal(t, entity.BillStatusPendingConfirm, bill.Status)
	assert.Nil(t, bills.bills["B001"].ConfirmedAt)
	assert.Equal(t, entity.CheckStatusUnchecked, orders.orders["B001"][0].CheckStatus)

	_, err = l.GetSummary(ctx, "B001")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestBillService_CancelConfirm_WithoutSummary(t *testing.T) {
	svc, _, _, _ := newBillServiceFixture(entity.BillStatusPendingInvoice)

	bill, err := svc.CancelConfirm(context.Background(), "B001")
	require.NoError(t, err)
	assert.Equal(t, entity.BillStatusPendingConfirm, bill.Status)
}

func TestBillService_UpdateOrderCheckStatus(t *testing.T) {
	svc, _, orders, _ := newBillServiceFixture(entity.BillStatusPendingConfirm)

	n, err := svc.UpdateOrderCheckStatus(context.Background(), "B001", []string{"H1", "H1", ""}, entity.CheckStatusChecked)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, entity.CheckStatusUnchecked, orders.orders["B001"][0].CheckStatus)
	assert.Equal(t, entity.CheckStatusChecked, orders.orders["B001"][1].CheckStatus)

	n, err = svc.UpdateOrderCheckStatus(context.Background(), "B001", []string{"H1"}, entity.CheckStatusUnchecked)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, entity.CheckStatusUnchecked, orders.orders["B001"][1].CheckStatus)
}

func TestBillService_UpdateOrderCheckStatus_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		billNo   string
		orderNos []string
		check    string
		wantErr  error
	}{
		{"bad check status", entity.BillStatusPendingConfirm, "B001", []string{"F1"}, entity.CheckStatusAbnormal, ErrInvalidCheckStatus},
		{"no orders", entity.BillStatusPendingConfirm, "B001", []string{""}, entity.CheckStatusChecked, ErrNoOrdersSelected},
		{"unknown bill", entity.BillStatusPendingConfirm, "missing", []string{"F1"}, entity.CheckStatusChecked, ErrBillNotFound},
		{"bill already confirmed", entity.BillStatusPendingInvoice, "B001", []string{"F1"}, entity.CheckStatusChecked, ErrOrdersLocked},
		{"order from another bill", entity.BillStatusPendingConfirm, "B001", []string{"F1", "X9"}, entity.CheckStatusChecked, ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newBillServiceFixture(tt.status)
			_, err := svc.UpdateOrderCheckStatus(context.Background(), tt.billNo, tt.orderNos, tt.check)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBillService_CancelConfirm_WaitsForBill(t *testing.T) {
	ctx := context.Background()
	svc, bills, _, l := newBillServiceFixture(entity.BillStatusPendingInvoice)

	done := make(chan error, 1)
	require.NoError(t, l.WithBill(ctx, "B001", func(ctx context.Context) error {
		go func() {
			_, err := svc.CancelConfirm(context.Background(), "B001")
			done <- err
		}()
		time.Sleep(50 * time.Millisecond)
		// invoicing starts while the cancellation waits
		bills.bills["B001"].Status = entity.BillStatusInvoicing
		return nil
	}))

	assert.ErrorIs(t, <-done, workflow.ErrInvalidTransition)
	assert.Equal(t, entity.BillStatusInvoicing, bills.bills["B001"].Status)
}
