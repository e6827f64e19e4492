package fixture

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sample = `
invoice_titles:
  - {title_id: T001, title_name: Acme Ltd, tax_number: 91310000MA1FL8XQ30, is_default: true}
bills:
  - bill_no: B001
    company_name: Acme
    settlement_cycle: "2026-01"
    orders:
      - {order_no: F1, business_type: "001", pay_amount: "100.00", department: Sales}
      - {order_no: H1, business_type: "002", pay_amount: "300.50"}
`

type mockBillRepo struct {
	port.BillRepository
	count   int
	created []*entity.Bill
}

func (m *mockBillRepo) Count(ctx context.Context) (int, error) { return m.count, nil }

func (m *mockBillRepo) Create(ctx context.Context, bill *entity.Bill) error {
	m.created = append(m.created, bill)
	return nil
}

type mockOrderRepo struct {
	port.OrderRepository
	createFunc func(orders []entity.Order) error
	created    []entity.Order
}

func (m *mockOrderRepo) CreateBatch(ctx context.Context, orders []entity.Order) error {
	if m.createFunc != nil {
		if err := m.createFunc(orders); err != nil {
			return err
		}
	}
	m.created = append(m.created, orders...)
	return nil
}

type mockTitleRepo struct {
	port.TitleRepository
	count   int
	created []*entity.TitleProfile
}

func (m *mockTitleRepo) Count(ctx context.Context) (int, error) { return m.count, nil }

func (m *mockTitleRepo) Create(ctx context.Context, title *entity.TitleProfile) error {
	m.created = append(m.created, title)
	return nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestParse(t *testing.T) {
	file, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, file.Bills, 1)

	bill, orders, err := file.Bills[0].ToEntities()
	require.NoError(t, err)
	assert.Equal(t, entity.BillStatusPendingConfirm, bill.Status)
	assert.Equal(t, "400.50", bill.TotalAmount.StringFixed(2))
	assert.Equal(t, 2, bill.OrderCount)
	require.Len(t, orders, 2)
	assert.Equal(t, entity.BusinessTypeFlight, orders[0].BusinessType)
	assert.Equal(t, "Sales", orders[0].Department)
	assert.Equal(t, "B001", orders[1].BillNo)
}

func TestInvoiceTitle_ToEntity(t *testing.T) {
	file, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, file.InvoiceTitles, 1)

	title, err := file.InvoiceTitles[0].ToEntity()
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", title.TitleName)
	assert.Equal(t, "91310000MA1FL8XQ30", title.TaxNumber)

	_, err = (&InvoiceTitle{TitleID: "T9"}).ToEntity()
	assert.Error(t, err)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("bills:\n  - bill_no: B1\n    colour: red\n"))
	assert.Error(t, err)
}

func TestToEntities_BadAmount(t *testing.T) {
	b := Bill{BillNo: "B1", Orders: []Order{{OrderNo: "O1", PayAmount: "abc"}}}
	_, _, err := b.ToEntities()
	assert.Error(t, err)

	b.Orders[0].PayAmount = "-5"
	_, _, err = b.ToEntities()
	assert.Error(t, err)
}

func TestLoadFile_ShippedFixtures(t *testing.T) {
	file, err := LoadFile("../../configs/fixtures.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, file.Bills)
	for i := range file.InvoiceTitles {
		_, err := file.InvoiceTitles[i].ToEntity()
		require.NoError(t, err)
	}

	orders, err := file.AllOrders()
	require.NoError(t, err)
	assert.NotEmpty(t, orders)
}

func TestSeeder_Seed(t *testing.T) {
	ctx := context.Background()
	file, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	t.Run("empty database", func(t *testing.T) {
		bills := &mockBillRepo{}
		orders := &mockOrderRepo{}
		titles := &mockTitleRepo{}
		n, err := NewSeeder(bills, orders, titles, &mockTxManager{}, zap.NewNop()).Seed(ctx, file)

		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Len(t, bills.created, 1)
		assert.Len(t, orders.created, 2)
		require.Len(t, titles.created, 1)
		assert.Equal(t, "T001", titles.created[0].TitleID)
		assert.True(t, titles.created[0].IsDefault)
	})

	t.Run("existing bills are left alone", func(t *testing.T) {
		bills := &mockBillRepo{count: 3}
		titles := &mockTitleRepo{count: 1}
		n, err := NewSeeder(bills, &mockOrderRepo{}, titles, &mockTxManager{}, zap.NewNop()).Seed(ctx, file)

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, bills.created)
		assert.Empty(t, titles.created)
	})

	t.Run("titles added to a database that only has bills", func(t *testing.T) {
		bills := &mockBillRepo{count: 3}
		titles := &mockTitleRepo{}
		n, err := NewSeeder(bills, &mockOrderRepo{}, titles, &mockTxManager{}, zap.NewNop()).Seed(ctx, file)

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, bills.created)
		assert.Len(t, titles.created, 1)
	})

	t.Run("repository failure", func(t *testing.T) {
		boom := errors.New("constraint failed")
		orders := &mockOrderRepo{createFunc: func([]entity.Order) error { return boom }}
		_, err := NewSeeder(&mockBillRepo{}, orders, &mockTitleRepo{}, &mockTxManager{}, zap.NewNop()).Seed(ctx, file)

		assert.ErrorIs(t, err, boom)
	})
}
