// Package fixture loads demo bills and orders from YAML
package fixture

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the on-disk fixture layout
type File struct {
	InvoiceTitles []InvoiceTitle `yaml:"invoice_titles"`
	Bills         []Bill         `yaml:"bills"`
}

// InvoiceTitle is one saved buyer header
type InvoiceTitle struct {
	TitleID     string `yaml:"title_id"`
	TitleName   string `yaml:"title_name"`
	TaxNumber   string `yaml:"tax_number"`
	Address     string `yaml:"address"`
	Phone       string `yaml:"phone"`
	BankName    string `yaml:"bank_name"`
	BankAccount string `yaml:"bank_account"`
	IsDefault   bool   `yaml:"is_default"`
}

// ToEntity converts the fixture title
func (t *InvoiceTitle) ToEntity() (*entity.TitleProfile, error) {
	if t.TitleID == "" || t.TitleName == "" || t.TaxNumber == "" {
		return nil, fmt.Errorf("invoice title %q: title_id, title_name and tax_number are required", t.TitleID)
	}
	return &entity.TitleProfile{
		TitleID:     t.TitleID,
		TitleName:   t.TitleName,
		TaxNumber:   t.TaxNumber,
		Address:     t.Address,
		Phone:       t.Phone,
		BankName:    t.BankName,
		BankAccount: t.BankAccount,
		IsDefault:   t.IsDefault,
	}, nil
}

// Bill is one bill with its orders
type Bill struct {
	BillNo          string  `yaml:"bill_no"`
	CompanyName     string  `yaml:"company_name"`
	SettlementCycle string  `yaml:"settlement_cycle"`
	Status          string  `yaml:"status"`
	Orders          []Order `yaml:"orders"`
}

// Order is one order; pay_amount is a decimal string
type Order struct {
	OrderNo        string `yaml:"order_no"`
	BusinessType   string `yaml:"business_type"`
	TravelerName   string `yaml:"traveler_name"`
	PayAmount      string `yaml:"pay_amount"`
	BusinessLine   string `yaml:"business_line"`
	LegalEntity    string `yaml:"legal_entity"`
	PaymentAccount string `yaml:"payment_account"`
	Department     string `yaml:"department"`
}

// LoadFile reads a fixture file from disk
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a fixture document
func Parse(r io.Reader) (*File, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &file, nil
}

// ToEntities converts the fixture into a bill and its orders. The bill total is derived from the orders.
func (b *Bill) ToEntities() (*entity.Bill, []entity.Order, error) {
	bill := &entity.Bill{
		BillNo:          b.BillNo,
		CompanyName:     b.CompanyName,
		SettlementCycle: b.SettlementCycle,
		Status:          b.Status,
		TotalAmount:     decimal.Zero,
	}
	if bill.Status == "" {
		bill.Status = entity.BillStatusPendingConfirm
	}

	orders := make([]entity.Order, 0, len(b.Orders))
	for _, o := range b.Orders {
		amount, err := decimal.NewFromString(o.PayAmount)
		if err != nil {
			return nil, nil, fmt.Errorf("order %s: invalid pay_amount %q: %w", o.OrderNo, o.PayAmount, err)
		}
		if amount.IsNegative() {
			return nil, nil, fmt.Errorf("order %s: pay_amount must not be negative", o.OrderNo)
		}
		orders = append(orders, entity.Order{
			OrderNo:        o.OrderNo,
			BillNo:         b.BillNo,
			BusinessType:   entity.BusinessType(o.BusinessType),
			TravelerName:   o.TravelerName,
			PayAmount:      amount,
			BusinessLine:   o.BusinessLine,
			LegalEntity:    o.LegalEntity,
			PaymentAccount: o.PaymentAccount,
			Department:     o.Department,
			CheckStatus:    entity.CheckStatusUnchecked,
		})
		bill.TotalAmount = bill.TotalAmount.Add(amount)
	}
	bill.OrderCount = len(orders)

	return bill, orders, nil
}

// AllOrders flattens every bill's orders in file order
func (f *File) AllOrders() ([]entity.Order, error) {
	var all []entity.Order
	for i := range f.Bills {
		_, orders, err := f.Bills[i].ToEntities()
		if err != nil {
			return nil, err
		}
		all = append(all, orders...)
	}
	return all, nil
}

// Seeder inserts fixture bills and invoice titles into an empty database
type Seeder struct {
	bills     port.BillRepository
	orders    port.OrderRepository
	titles    port.TitleRepository
	txManager port.TransactionManager
	logger    *zap.Logger
}

// NewSeeder creates a seeder
func NewSeeder(
	bills port.BillRepository,
	orders port.OrderRepository,
	titles port.TitleRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{bills: bills, orders: orders, titles: titles, txManager: txManager, logger: logger}
}

// Seed inserts every bill of file unless the database already has bills, and
// every invoice title unless titles exist. It returns the number of bills inserted.
func (s *Seeder) Seed(ctx context.Context, file *File) (int, error) {
	existingBills, err := s.bills.Count(ctx)
	if err != nil {
		return 0, err
	}
	existingTitles, err := s.titles.Count(ctx)
	if err != nil {
		return 0, err
	}

	seedBills := existingBills == 0
	seedTitles := existingTitles == 0 && len(file.InvoiceTitles) > 0
	if !seedBills {
		s.logger.Info("Skipping fixture bills, database already has bills", zap.Int("bills", existingBills))
	}
	if !seedBills && !seedTitles {
		return 0, nil
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if seedTitles {
			for i := range file.InvoiceTitles {
				title, err := file.InvoiceTitles[i].ToEntity()
				if err != nil {
					return err
				}
				if err := s.titles.Create(ctx, title); err != nil {
					return err
				}
			}
		}
		if !seedBills {
			return nil
		}
		for i := range file.Bills {
			bill, orders, err := file.Bills[i].ToEntities()
			if err != nil {
				return err
			}
			if err := s.bills.Create(ctx, bill); err != nil {
				return err
			}
			if err := s.orders.CreateBatch(ctx, orders); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed fixtures: %w", err)
	}

	if !seedBills {
		s.logger.Info("Fixture titles seeded", zap.Int("titles", len(file.InvoiceTitles)))
		return 0, nil
	}
	s.logger.Info("Fixtures seeded",
		zap.Int("bills", len(file.Bills)),
		zap.Int("titles", len(file.InvoiceTitles)))
	return len(file.Bills), nil
}
