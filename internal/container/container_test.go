package container

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/application/service"
	"github.com/garyjia/bill-invoicing/internal/config"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/domain/workflow"
	"github.com/garyjia/bill-invoicing/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 18080, ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{
			Path:         filepath.Join(t.TempDir(), "data", "test.db"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Logger:    config.LoggerConfig{Level: "debug", OutputPath: "stdout", Format: "console"},
		Invoicing: config.InvoicingConfig{GeneralRatio: 0.6, MaxDimensions: 2},
		Fixtures:  config.FixturesConfig{Path: "../../configs/fixtures.yaml", SeedOnStart: true},
		Export:    config.ExportConfig{SheetName: "开票信息"},
	}
}

func startContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	return c
}

func TestNewContainer_RequiresDependencies(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Invoicing.GeneralRatio = 2
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	c := startContainer(t, testConfig(t))

	assert.True(t, c.Ready())
	assert.NotNil(t, c.HTTPServer())
	assert.Error(t, c.Start(context.Background()))

	health := c.Health(context.Background())
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}

func TestContainer_InvoicingEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	c := startContainer(t, cfg)
	defer c.Close()

	page, err := c.Services().Bill.ListBills(ctx, service.BillQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	table, err := c.Services().Invoicing.GenerateInvoiceRows(ctx, "BILL202512001", []string{"department"})
	require.NoError(t, err)
	assert.Equal(t, "600.00", table.Summary.ShouldInvoiceAmount().StringFixed(2))

	row := func(category entity.InvoiceCategory, amount string) entity.InvoiceRow {
		return entity.InvoiceRow{
			Category:  category,
			Amount:    decimal.RequireFromString(amount),
			Title:     entity.InvoiceTitle{TitleName: "示例科技", TaxNumber: "91110000MA01ABCD2X"},
			Recipient: entity.Recipient{Name: "张三", Phone: "13912345678", Address: "北京市朝阳区"},
		}
	}

	_, err = c.Services().Invoicing.ApplyInvoice(ctx, service.ApplyRequest{
		BillNo: "BILL202512001",
		Rows:   []entity.InvoiceRow{row(entity.CategoryGeneral, "100")},
	})
	require.NoError(t, err)

	_, err = c.Services().Invoicing.ApplyInvoice(ctx, service.ApplyRequest{
		BillNo: "BILL202512001",
		Rows:   []entity.InvoiceRow{row(entity.CategoryGeneral, "90")},
	})
	assert.ErrorIs(t, err, ledger.ErrOverSubmission)

	// a fresh ledger over the same store sees the persisted state
	fresh := ledger.New(c.Repositories().Summary, zap.NewNop())
	summary, err := fresh.GetSummary(ctx, "BILL202512001")
	require.NoError(t, err)
	general := summary.Detail(entity.CategoryGeneral)
	require.NotNil(t, general)
	assert.Equal(t, "100.00", general.InvoicedAmount.StringFixed(2))
	assert.Equal(t, "80.00", general.RemainingAmount().StringFixed(2))

	bill, err := c.Services().Bill.GetBill(ctx, "BILL202512001")
	require.NoError(t, err)
	assert.Equal(t, entity.BillStatusInvoicing, bill.Status)

	apps, err := c.Services().Invoicing.ListApplications(ctx, "BILL202512001")
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestContainer_SeedsOnlyOnce(t *testing.T) {
	cfg := testConfig(t)

	first := startContainer(t, cfg)
	require.NoError(t, first.Close())

	second := startContainer(t, cfg)
	defer second.Close()

	count, err := second.Repositories().Bill.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestContainer_ConcurrentApplyAndGenerateOnOneConnection(t *testing.T) {
	ctx := context.Background()
	c := startContainer(t, testConfig(t))
	defer c.Close()

	invoicing := c.Services().Invoicing
	_, err := invoicing.GenerateInvoiceRows(ctx, "BILL202512001", nil)
	require.NoError(t, err)

	row := entity.InvoiceRow{
		Category:  entity.CategoryGeneral,
		Amount:    decimal.RequireFromString("1.00"),
		Title:     entity.InvoiceTitle{TitleName: "示例科技", TaxNumber: "91110000MA01ABCD2X"},
		Recipient: entity.Recipient{Name: "张三", Phone: "13912345678", Address: "北京市朝阳区"},
	}

	// once invoicing has started the bill cannot be unconfirmed
	_, err = invoicing.ApplyInvoice(ctx, service.ApplyRequest{BillNo: "BILL202512001", Rows: []entity.InvoiceRow{row}})
	require.NoError(t, err)

	const rounds = 10
	errs := make(chan error, 4*rounds)
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			_, err := invoicing.ApplyInvoice(ctx, service.ApplyRequest{BillNo: "BILL202512001", Rows: []entity.InvoiceRow{row}})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := invoicing.GenerateInvoiceRows(ctx, "BILL202512001", []string{"department"})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			var buf bytes.Buffer
			errs <- invoicing.ExportInvoiceWorkbook(ctx, "BILL202512001", nil, &buf)
		}()
		go func() {
			defer wg.Done()
			_, err := c.Services().Bill.CancelConfirm(ctx, "BILL202512001")
			if errors.Is(err, workflow.ErrInvalidTransition) {
				err = nil
			}
			errs <- err
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(15 * time.Second):
		t.Fatal("concurrent invoicing calls on one bill did not finish")
	}

	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	summary, err := invoicing.GetInvoiceSummary(ctx, "BILL202512001")
	require.NoError(t, err)
	assert.Equal(t, "11.00", summary.Detail(entity.CategoryGeneral).InvoicedAmount.StringFixed(2))
}

func TestContainer_SavedInvoiceTitles(t *testing.T) {
	ctx := context.Background()
	c := startContainer(t, testConfig(t))
	defer c.Close()

	titles, err := c.Services().Invoicing.ListInvoiceTitles(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, "T001", titles[0].TitleID)
	assert.True(t, titles[0].IsDefault)

	_, err = c.Services().Invoicing.GenerateInvoiceRows(ctx, "BILL202512001", nil)
	require.NoError(t, err)

	res, err := c.Services().Invoicing.ApplyInvoice(ctx, service.ApplyRequest{
		BillNo: "BILL202512001",
		Rows: []entity.InvoiceRow{{
			Category:  entity.CategoryFlightItinerary,
			Amount:    decimal.RequireFromString("300"),
			Title:     entity.InvoiceTitle{TitleID: "T002"},
			Recipient: entity.Recipient{Name: "张三", Phone: "13912345678", Address: "北京市朝阳区"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "示例贸易有限公司", res.Application.Rows[0].Title.TitleName)
	assert.Equal(t, "91310115MA1234567X", res.Application.Rows[0].Title.TaxNumber)
}

func TestContainer_OrderCheckStatusIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	c := startContainer(t, testConfig(t))
	defer c.Close()
	bills := c.Services().Bill

	n, err := bills.UpdateOrderCheckStatus(ctx, "BILL202601001",
		[]string{"ORDER2026010100001", "ORDER2026010101001"}, entity.CheckStatusChecked)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = bills.UpdateOrderCheckStatus(ctx, "BILL202601001",
		[]string{"ORDER2026010100002", "ORDER2025120100001"}, entity.CheckStatusChecked)
	assert.ErrorIs(t, err, service.ErrOrderNotFound)

	_, total, err := c.Repositories().Order.List(ctx, "BILL202601001", port.OrderFilter{CheckStatus: entity.CheckStatusChecked})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, err = bills.UpdateOrderCheckStatus(ctx, "BILL202512001",
		[]string{"ORDER2025120100001"}, entity.CheckStatusChecked)
	assert.ErrorIs(t, err, service.ErrOrdersLocked)
}
