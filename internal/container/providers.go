// Package container provides dependency injection and lifecycle management
// for the bill invoicing service.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/garyjia/bill-invoicing/internal/allocation"
	"github.com/garyjia/bill-invoicing/internal/application/port"
	"github.com/garyjia/bill-invoicing/internal/application/service"
	"github.com/garyjia/bill-invoicing/internal/config"
	"github.com/garyjia/bill-invoicing/internal/export"
	"github.com/garyjia/bill-invoicing/internal/fixture"
	"github.com/garyjia/bill-invoicing/internal/infrastructure/persistence/repository"
	"github.com/garyjia/bill-invoicing/internal/infrastructure/persistence/sqlite"
	httpapi "github.com/garyjia/bill-invoicing/internal/interfaces/http"
	"github.com/garyjia/bill-invoicing/internal/ledger"
	"github.com/garyjia/bill-invoicing/migrations"
	"github.com/garyjia/bill-invoicing/pkg/database"
	"github.com/garyjia/bill-invoicing/pkg/utils"
	"go.uber.org/zap"
)

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Bill        port.BillRepository
	Order       port.OrderRepository
	Summary     port.SummaryRepository
	Application port.ApplicationRepository
	Title       port.TitleRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Bill      service.BillService
	Invoicing service.InvoicingService
}

// ProvideDatabase opens the database and runs pending migrations.
func ProvideDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*database.DB, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// ProvideRepositories creates all sqlite repositories.
func ProvideRepositories(db *sql.DB, logger *zap.Logger) *RepositoryBundle {
	return &RepositoryBundle{
		Bill:        repository.NewBillRepository(db, logger),
		Order:       repository.NewOrderRepository(db, logger),
		Summary:     repository.NewSummaryRepository(db, logger),
		Application: repository.NewApplicationRepository(db, logger),
		Title:       repository.NewTitleRepository(db, logger),
	}
}

// ProvideLedger creates the invoicing ledger backed by the summary repository.
func ProvideLedger(repos *RepositoryBundle, logger *zap.Logger) *ledger.Ledger {
	return ledger.New(repos.Summary, logger.Named("ledger"))
}

// ProvideServices creates application services.
func ProvideServices(
	cfg *config.Config,
	repos *RepositoryBundle,
	l *ledger.Ledger,
	txManager port.TransactionManager,
	logger *zap.Logger,
) (*ServiceBundle, error) {
	policy, err := allocation.NewPolicy(cfg.Invoicing.GeneralRatio)
	if err != nil {
		return nil, err
	}

	svcLogger := utils.NewKeyValueLogger(logger)
	exporter := export.NewExporter(cfg.Export.SheetName, logger.Named("export"))

	return &ServiceBundle{
		Bill: service.NewBillService(repos.Bill, repos.Order, l, txManager, svcLogger),
		Invoicing: service.NewInvoicingService(
			repos.Bill,
			repos.Order,
			repos.Application,
			repos.Title,
			l,
			exporter,
			txManager,
			service.InvoicingOptions{Policy: policy, MaxDimensions: cfg.Invoicing.MaxDimensions},
			svcLogger,
		),
	}, nil
}

// ProvideHTTPServer creates the admin API server.
func ProvideHTTPServer(cfg config.ServerConfig, services *ServiceBundle, logger *zap.Logger) *httpapi.Server {
	return httpapi.NewServer(httpapi.ServerConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		AllowedOrigins:  cfg.AllowedOrigins,
	}, services.Bill, services.Invoicing, utils.NewKeyValueLogger(logger.Named("http")))
}

// SeedFixtures loads the fixture file into an empty database.
func SeedFixtures(
	ctx context.Context,
	cfg config.FixturesConfig,
	repos *RepositoryBundle,
	txManager port.TransactionManager,
	logger *zap.Logger,
) (int, error) {
	file, err := fixture.LoadFile(cfg.Path)
	if err != nil {
		return 0, err
	}
	return fixture.NewSeeder(repos.Bill, repos.Order, repos.Title, txManager, logger).Seed(ctx, file)
}

// ProvideTxManager creates the transaction manager shared by services and repositories.
func ProvideTxManager(db *sql.DB, logger *zap.Logger) *sqlite.TxManager {
	return sqlite.NewTxManager(db, logger)
}
