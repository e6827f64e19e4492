package export

import (
	"bytes"
	"testing"

	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestChineseAmount(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{"zero amount", 0, "零元整"},
		{"simple amount with no decimal", 10000, "壹佰元整"},
		{"amount with jiao", 12350, "壹佰贰拾叁元伍角"},
		{"amount with fen", 12356, "壹佰贰拾叁元伍角陆分"},
		{"fen only after yuan", 105, "壹元零伍分"},
		{"fen only", 5, "伍分"},
		{"inner zero", 100500, "壹仟零伍元整"},
		{"zero across wan", 1000500, "壹万零伍元整"},
		{"whole yi", 10000000000, "壹亿元整"},
		{"yi and shi wan", 10010000000, "壹亿零壹拾万元整"},
		{"typical bill", 12568050, "壹拾贰万伍仟陆佰捌拾元伍角"},
		{"negative", -100, "负壹元整"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChineseAmount(tt.cents))
		})
	}
}

func TestRecords(t *testing.T) {
	row := entity.InvoiceRow{
		CategoryName: "增值税普票",
		BusinessType: entity.BusinessTypeHotel,
		Summary:      "Sales",
		Amount:       decimal.RequireFromString("180"),
		Quantity:     1,
		OrderCount:   2,
		OrderNos:     []string{"H1", "H2"},
		Title:        entity.InvoiceTitle{TitleName: "Acme"},
	}

	rec := InvoiceRowRecord(row)
	assert.Equal(t, "180.00", rec["amount"])
	assert.Equal(t, "酒店", rec["businessType"])
	assert.Equal(t, "H1,H2", rec["orderNos"])

	values := rec.Values(InvoiceRowColumns)
	require.Len(t, values, len(InvoiceRowColumns))
	assert.Equal(t, "增值税普票", values[0])
	assert.Equal(t, "Acme", values[6])
}

func TestExporter_Write(t *testing.T) {
	wb := Workbook{
		Bill: &entity.Bill{BillNo: "B001", CompanyName: "Acme"},
		Rows: []entity.InvoiceRow{
			{CategoryName: "机票电子行程单", Summary: "全部订单", Amount: decimal.RequireFromString("300"), Quantity: 2, OrderCount: 2},
			{CategoryName: "增值税普票", Summary: "全部订单", Amount: decimal.RequireFromString("180"), Quantity: 1, OrderCount: 1},
		},
		Summary: &entity.BillInvoiceSummary{
			BillNo: "B001",
			Details: []entity.CategorySummary{
				{Category: entity.CategoryGeneral, CategoryName: "增值税普票", ShouldAmount: decimal.RequireFromString("180"), InvoicedAmount: decimal.RequireFromString("100")},
			},
		},
		Orders: []entity.Order{
			{OrderNo: "F1", BusinessType: entity.BusinessTypeFlight, PayAmount: decimal.RequireFromString("100")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExporter("", zap.NewNop()).Write(&buf, wb))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"开票信息", "开票汇总", "订单明细"}, f.GetSheetList())

	rows, err := f.GetRows("开票信息")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "发票类型", rows[0][0])
	assert.Equal(t, "300.00", rows[1][3])

	summary, err := f.GetRows("开票汇总")
	require.NoError(t, err)
	assert.Equal(t, "80.00", summary[1][3])
	remaining, err := f.GetCellValue("开票汇总", "C7")
	require.NoError(t, err)
	assert.Equal(t, "捌拾元整", remaining)

	orders, err := f.GetRows("订单明细")
	require.NoError(t, err)
	assert.Equal(t, "F1", orders[1][0])
}

func TestExporter_RowsOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter("Invoices", zap.NewNop()).Write(&buf, Workbook{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Invoices"}, f.GetSheetList())
}
