package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Scorer   ScorerConfig
	Chat     ChatConfig
	Intake   IntakeConfig
	Report   ReportConfig
	Catalog  CatalogConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Database string `env:"DB_NAME" envDefault:"maternal_triage"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// RedisConfig holds Redis configuration. Redis is optional; when disabled
// alert fan-out is off and intake locks are process-local.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// ScorerConfig configures the external risk-scoring collaborator
type ScorerConfig struct {
	URL              string        `env:"SCORER_URL" envDefault:"http://localhost:5000"`
	Timeout          time.Duration `env:"SCORER_TIMEOUT" envDefault:"15s"`
	BreakerFailures  uint32        `env:"SCORER_BREAKER_FAILURES" envDefault:"5"`
	BreakerOpenDelay time.Duration `env:"SCORER_BREAKER_OPEN_DELAY" envDefault:"30s"`
}

// ChatConfig holds chat session settings
type ChatConfig struct {
	ReplyDelay    time.Duration `env:"CHAT_REPLY_DELAY" envDefault:"1500ms"`
	SessionTTL    time.Duration `env:"CHAT_SESSION_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"CHAT_SWEEP_INTERVAL" envDefault:"1m"`
}

// IntakeConfig holds intake submission settings
type IntakeConfig struct {
	LockTTL     time.Duration `env:"INTAKE_LOCK_TTL" envDefault:"1m"`
	HistoryDays int           `env:"INTAKE_HISTORY_DAYS" envDefault:"7"`
}

// ReportConfig selects the report exporter. An empty ExportURL renders PDFs locally.
type ReportConfig struct {
	ExportURL string        `env:"REPORT_EXPORT_URL"`
	Timeout   time.Duration `env:"REPORT_EXPORT_TIMEOUT" envDefault:"30s"`
}

// CatalogConfig points at an optional lexicon override file
type CatalogConfig struct {
	Path string `env:"CATALOG_PATH"`
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"maternal-triage"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION" envDefault:"1.0.0"`
	Endpoint       string `env:"OTEL_ENDPOINT"`
	Enabled        bool   `env:"OTEL_ENABLED" envDefault:"false"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Scorer.Timeout <= 0 {
		return nil, fmt.Errorf("parse config: SCORER_TIMEOUT must be positive")
	}
	if cfg.Chat.SweepInterval <= 0 {
		return nil, fmt.Errorf("parse config: CHAT_SWEEP_INTERVAL must be positive")
	}
	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
