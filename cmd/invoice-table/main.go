// Command invoice-table prints the invoice rows generated for a set of orders.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/garyjia/bill-invoicing/internal/allocation"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/internal/export"
	"github.com/garyjia/bill-invoicing/internal/fixture"
	"github.com/garyjia/bill-invoicing/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "1.0.0"

type options struct {
	ordersPath   string
	dimensions   []string
	generalRatio float64
	xlsxPath     string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "invoice-table",
		Short: "Generate invoice rows for the orders of a fixture file",
		Long: `Classify orders into invoice categories, split each category by up to two
dimensions and print the resulting invoice rows.

Supported dimensions: businessLine, legalEntity, paymentAccount, department.`,
		Example: `  # One row per category
  invoice-table --orders configs/fixtures.yaml

  # Split by department, then legal entity, and write a workbook
  invoice-table --orders configs/fixtures.yaml -d department -d legalEntity --xlsx rows.xlsx`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ordersPath, "orders", "o", "", "fixture YAML file with bills and orders")
	cmd.Flags().StringArrayVarP(&opts.dimensions, "dimension", "d", nil, "partition dimension, repeatable (max 2)")
	cmd.Flags().Float64Var(&opts.generalRatio, "general-ratio", allocation.DefaultGeneralRatio, "share of hotel and car business billed as general VAT invoices")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "also write the rows to this xlsx file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level")
	_ = cmd.MarkFlagRequired("orders")

	return cmd
}

func run(out io.Writer, opts *options) error {
	logger, err := utils.NewLogger(utils.LoggerConfig{Level: opts.logLevel, OutputPath: "stderr", Format: "console"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	policy, err := allocation.NewPolicy(opts.generalRatio)
	if err != nil {
		return err
	}
	dims, err := allocation.ParseDimensions(opts.dimensions)
	if err != nil {
		return err
	}

	file, err := fixture.LoadFile(opts.ordersPath)
	if err != nil {
		return err
	}
	orders, err := file.AllOrders()
	if err != nil {
		return err
	}

	rows, err := allocation.Generate(orders, dims, policy)
	if err != nil {
		return err
	}
	logger.Info("Invoice rows generated", zap.Int("orders", len(orders)), zap.Int("rows", len(rows)))

	if err := printRows(out, rows); err != nil {
		return err
	}

	if opts.xlsxPath != "" {
		f, err := os.Create(opts.xlsxPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.xlsxPath, err)
		}
		wb := export.Workbook{Rows: rows, Orders: orders}
		if err := writeWorkbook(f, export.NewExporter("", logger), wb); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.xlsxPath, err)
		}
		fmt.Fprintf(out, "\nworkbook written to %s\n", opts.xlsxPath)
	}
	return nil
}

// writeWorkbook writes wb to w and closes it. A failed close is reported
// since buffered bytes may not have reached the file.
func writeWorkbook(w io.WriteCloser, exporter *export.Exporter, wb export.Workbook) error {
	if err := exporter.Write(w, wb); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func printRows(out io.Writer, rows []entity.InvoiceRow) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join([]string{"CATEGORY", "BUSINESS", "SUMMARY", "AMOUNT", "ORDERS", "QTY"}, "\t"))
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			r.CategoryName, r.BusinessType.Name(), r.Summary, r.Amount.StringFixed(2), r.OrderCount, r.Quantity)
	}
	return w.Flush()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
