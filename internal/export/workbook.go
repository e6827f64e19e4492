// Package export writes invoice tables as xlsx workbooks
package export

import (
	"fmt"
	"io"

	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	summarySheet = "开票汇总"
	ordersSheet  = "订单明细"
)

// Workbook is everything exported for one bill. Summary and Orders are optional.
type Workbook struct {
	Bill    *entity.Bill
	Rows    []entity.InvoiceRow
	Summary *entity.BillInvoiceSummary
	Orders  []entity.Order
}

// Exporter renders workbooks with excelize
type Exporter struct {
	rowsSheet string
	logger    *zap.Logger
}

// NewExporter creates an exporter writing invoice rows to rowsSheet
func NewExporter(rowsSheet string, logger *zap.Logger) *Exporter {
	if rowsSheet == "" {
		rowsSheet = "开票信息"
	}
	return &Exporter{rowsSheet: rowsSheet, logger: logger}
}

// Write renders wb as xlsx into w
func (e *Exporter) Write(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.rowsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rowRecords := make([]Record, 0, len(wb.Rows))
	for _, row := range wb.Rows {
		rowRecords = append(rowRecords, InvoiceRowRecord(row))
	}
	if err := e.writeTable(f, e.rowsSheet, InvoiceRowColumns, rowRecords, headerStyle); err != nil {
		return err
	}

	if wb.Summary != nil {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", summarySheet, err)
		}
		records := make([]Record, 0, len(wb.Summary.Details))
		for _, d := range wb.Summary.Details {
			records = append(records, SummaryRecord(d))
		}
		if err := e.writeTable(f, summarySheet, SummaryColumns, records, headerStyle); err != nil {
			return err
		}
		if err := e.writeTotals(f, wb, len(records)); err != nil {
			return err
		}
	}

	if len(wb.Orders) > 0 {
		if _, err := f.NewSheet(ordersSheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", ordersSheet, err)
		}
		records := make([]Record, 0, len(wb.Orders))
		for _, o := range wb.Orders {
			records = append(records, OrderRecord(o))
		}
		if err := e.writeTable(f, ordersSheet, OrderColumns, records, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	billNo := ""
	if wb.Bill != nil {
		billNo = wb.Bill.BillNo
	}
	e.logger.Info("Invoice workbook exported",
		zap.String("bill_no", billNo),
		zap.Int("rows", len(wb.Rows)),
		zap.Int("orders", len(wb.Orders)))
	return nil
}

func (e *Exporter) writeTable(f *excelize.File, sheet string, columns []Column, records []Record, headerStyle int) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns of %s: %w", sheet, err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := record.Values(columns)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

// writeTotals appends the bill totals under the summary table
func (e *Exporter) writeTotals(f *excelize.File, wb Workbook, tableRows int) error {
	s := wb.Summary
	start := tableRows + 3
	lines := [][]interface{}{
		{"应开票总额", s.ShouldInvoiceAmount().StringFixed(2), ChineseAmount(entity.ToCents(s.ShouldInvoiceAmount()))},
		{"已开票总额", s.InvoicedAmount().StringFixed(2), ChineseAmount(entity.ToCents(s.InvoicedAmount()))},
		{"待开票总额", s.RemainingAmount().StringFixed(2), ChineseAmount(entity.ToCents(s.RemainingAmount()))},
	}
	if wb.Bill != nil {
		lines = append([][]interface{}{{"账单号", wb.Bill.BillNo, wb.Bill.CompanyName}}, lines...)
	}

	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &line); err != nil {
			return fmt.Errorf("failed to write totals: %w", err)
		}
	}
	return nil
}
