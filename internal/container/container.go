package container

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/garyjia/bill-invoicing/internal/config"
	"github.com/garyjia/bill-invoicing/internal/infrastructure/persistence/sqlite"
	httpapi "github.com/garyjia/bill-invoicing/internal/interfaces/http"
	"github.com/garyjia/bill-invoicing/internal/ledger"
	"github.com/garyjia/bill-invoicing/pkg/database"
	"go.uber.org/zap"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure - Data
	db           *database.DB
	txManager    *sqlite.TxManager
	repositories *RepositoryBundle

	// Application
	ledger   *ledger.Ledger
	services *ServiceBundle

	// Interfaces
	httpServer *httpapi.Server

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{config: cfg, logger: logger}, nil
}

// Start initializes all components:
// 1. Database, migrations and repositories
// 2. Ledger and application services
// 3. Fixtures, when enabled
// 4. HTTP server (not started; see HTTPServer)
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	db, err := ProvideDatabase(ctx, c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db
	c.txManager = ProvideTxManager(db.DB, c.logger)
	c.repositories = ProvideRepositories(db.DB, c.logger)
	c.logger.Info("Database initialized")

	c.ledger = ProvideLedger(c.repositories, c.logger)
	services, err := ProvideServices(c.config, c.repositories, c.ledger, c.txManager, c.logger)
	if err != nil {
		_ = c.db.Close()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services
	c.logger.Info("Services initialized")

	if c.config.Fixtures.SeedOnStart {
		seeded, err := SeedFixtures(ctx, c.config.Fixtures, c.repositories, c.txManager, c.logger)
		if err != nil {
			_ = c.db.Close()
			return fmt.Errorf("failed to seed fixtures: %w", err)
		}
		c.logger.Info("Fixtures processed", zap.Int("bills_seeded", seeded))
	}

	c.httpServer = ProvideHTTPServer(c.config.Server, c.services, c.logger)

	c.ready.Store(true)
	c.logger.Info("Container started")
	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	var errs []error
	if c.httpServer != nil {
		if err := c.httpServer.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop http server: %w", err))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	c.logger.Info("Container closed successfully")
	return nil
}

// Ready reports whether Start completed.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{Overall: true, Components: make(map[string]ComponentHealth)}

	if c.db == nil {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := c.db.PingContext(pingCtx); err != nil {
			status.Components["database"] = ComponentHealth{Healthy: false, Message: err.Error()}
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	}

	if c.services == nil {
		status.Components["services"] = ComponentHealth{Healthy: false, Message: "not initialized"}
	} else {
		status.Components["services"] = ComponentHealth{Healthy: true}
	}

	for _, comp := range status.Components {
		if !comp.Healthy {
			status.Overall = false
		}
	}
	return status
}

// Services returns the application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Repositories returns the repository bundle.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Ledger returns the invoicing ledger.
func (c *Container) Ledger() *ledger.Ledger {
	return c.ledger
}

// HTTPServer returns the admin API server.
func (c *Container) HTTPServer() *httpapi.Server {
	return c.httpServer
}

// Logger returns the root logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
