package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Invoicing InvoicingConfig `mapstructure:"invoicing"`
	Fixtures  FixturesConfig  `mapstructure:"fixtures"`
	Export    ExportConfig    `mapstructure:"export"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// InvoicingConfig tunes invoice row generation
type InvoicingConfig struct {
	// GeneralRatio is the share of non-itinerary business billed as general VAT invoices
	GeneralRatio  float64 `mapstructure:"general_ratio"`
	MaxDimensions int     `mapstructure:"max_dimensions"`
}

// FixturesConfig points at demo bills loaded into an empty database
type FixturesConfig struct {
	Path        string `mapstructure:"path"`
	SeedOnStart bool   `mapstructure:"seed_on_start"`
}

// ExportConfig holds workbook export settings
type ExportConfig struct {
	SheetName string `mapstructure:"sheet_name"`
}

// Load reads configuration from configPath, then the environment.
// An empty configPath uses defaults and the environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.path", "data/bill_invoicing.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("invoicing.general_ratio", 0.6)
	v.SetDefault("invoicing.max_dimensions", 2)

	v.SetDefault("fixtures.path", "configs/fixtures.yaml")
	v.SetDefault("fixtures.seed_on_start", false)

	v.SetDefault("export.sheet_name", "开票信息")
}

func bindEnvVars(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
	_ = v.BindEnv("logger.level", "LOG_LEVEL")
	_ = v.BindEnv("invoicing.general_ratio", "INVOICING_GENERAL_RATIO")
	_ = v.BindEnv("fixtures.seed_on_start", "FIXTURES_SEED_ON_START")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Invoicing.GeneralRatio < 0 || c.Invoicing.GeneralRatio > 1 {
		return fmt.Errorf("invoicing.general_ratio must be between 0 and 1")
	}
	if c.Invoicing.MaxDimensions < 0 || c.Invoicing.MaxDimensions > 2 {
		return fmt.Errorf("invoicing.max_dimensions must be between 0 and 2")
	}
	if c.Fixtures.SeedOnStart && c.Fixtures.Path == "" {
		return fmt.Errorf("fixtures.path is required when fixtures.seed_on_start is set")
	}
	return nil
}

// Address returns the host:port the server listens on
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
