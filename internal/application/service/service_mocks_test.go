package service

import (
	"context"
	"time"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type mockBillRepo struct {
	bills map[string]*entity.Bill

	listFunc         func(ctx context.Context, filter port.BillFilter) ([]*entity.Bill, int, error)
	updateStatusFunc func(ctx context.Context, billNo, status string) error
}

func newMockBillRepo(bills ...*entity.Bill) *mockBillRepo {
	m := &mockBillRepo{bills: make(map[string]*entity.Bill)}
	for _, b := range bills {
		m.bills[b.BillNo] = b
	}
	return m
}

func (m *mockBillRepo) Create(ctx context.Context, bill *entity.Bill) error {
	m.bills[bill.BillNo] = bill
	return nil
}

func (m *mockBillRepo) GetByBillNo(ctx context.Context, billNo string) (*entity.Bill, error) {
	b, ok := m.bills[billNo]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (m *mockBillRepo) List(ctx context.Context, filter port.BillFilter) ([]*entity.Bill, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	var out []*entity.Bill
	for _, b := range m.bills {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *mockBillRepo) Count(ctx context.Context) (int, error) {
	return len(m.bills), nil
}

func (m *mockBillRepo) UpdateStatus(ctx context.Context, billNo, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, billNo, status)
	}
	m.bills[billNo].Status = status
	return nil
}

func (m *mockBillRepo) SetConfirmedAt(ctx context.Context, billNo string, t *time.Time) error {
	m.bills[billNo].ConfirmedAt = t
	return nil
}

func (m *mockBillRepo) SetInvoicedAt(ctx context.Context, billNo string, t time.Time) error {
	m.bills[billNo].InvoicedAt = &t
	return nil
}

type mockOrderRepo struct {
	orders map[string][]entity.Order

	listFunc func(ctx context.Context, billNo string, filter port.OrderFilter) ([]entity.Order, int, error)
}

func (m *mockOrderRepo) CreateBatch(ctx context.Context, orders []entity.Order) error {
	for _, o := range orders {
		m.orders[o.BillNo] = append(m.orders[o.BillNo], o)
	}
	return nil
}

func (m *mockOrderRepo) ListByBillNo(ctx context.Context, billNo string) ([]entity.Order, error) {
	return m.orders[billNo], nil
}

func (m *mockOrderRepo) List(ctx context.Context, billNo string, filter port.OrderFilter) ([]entity.Order, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, billNo, filter)
	}
	return m.orders[billNo], len(m.orders[billNo]), nil
}

func (m *mockOrderRepo) UpdateCheckStatus(ctx context.Context, billNo, status string) error {
	for i := range m.orders[billNo] {
		m.orders[billNo][i].CheckStatus = status
	}
	return nil
}

func (m *mockOrderRepo) SetCheckStatus(ctx context.Context, billNo string, orderNos []string, status string) (int, error) {
	wanted := make(map[string]bool, len(orderNos))
	for _, no := range orderNos {
		wanted[no] = true
	}
	n := 0
	for i := range m.orders[billNo] {
		if wanted[m.orders[billNo][i].OrderNo] {
			m.orders[billNo][i].CheckStatus = status
			n++
		}
	}
	return n, nil
}

type mockTitleRepo struct {
	titles map[string]*entity.TitleProfile
}

func newMockTitleRepo(titles ...*entity.TitleProfile) *mockTitleRepo {
	m := &mockTitleRepo{titles: make(map[string]*entity.TitleProfile)}
	for _, t := range titles {
		m.titles[t.TitleID] = t
	}
	return m
}

func (m *mockTitleRepo) Create(ctx context.Context, title *entity.TitleProfile) error {
	m.titles[title.TitleID] = title
	return nil
}

func (m *mockTitleRepo) GetByTitleID(ctx context.Context, titleID string) (*entity.TitleProfile, error) {
	return m.titles[titleID], nil
}

func (m *mockTitleRepo) List(ctx context.Context) ([]*entity.TitleProfile, error) {
	out := make([]*entity.TitleProfile, 0, len(m.titles))
	for _, t := range m.titles {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTitleRepo) Count(ctx context.Context) (int, error) {
	return len(m.titles), nil
}

type mockAppRepo struct {
	apps       []*entity.InvoiceApplication
	createFunc func(ctx context.Context, app *entity.InvoiceApplication) error
}

func (m *mockAppRepo) Create(ctx context.Context, app *entity.InvoiceApplication) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, app)
	}
	app.ID = int64(len(m.apps) + 1)
	m.apps = append(m.apps, app)
	return nil
}

func (m *mockAppRepo) ListByBillNo(ctx context.Context, billNo string) ([]*entity.InvoiceApplication, error) {
	var out []*entity.InvoiceApplication
	for _, a := range m.apps {
		if a.BillNo == billNo {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func testOrder(billNo, orderNo string, bt entity.BusinessType, amount, dept string) entity.Order {
	return entity.Order{
		OrderNo:      orderNo,
		BillNo:       billNo,
		BusinessType: bt,
		PayAmount:    decimal.RequireFromString(amount),
		Department:   dept,
		CheckStatus:  entity.CheckStatusUnchecked,
	}
}
