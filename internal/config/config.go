package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"BudgetFlow"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"budgetflow"`
	}

	Store struct {
		Driver  string        `envconfig:"STORE_DRIVER" default:"postgres"`
		Timeout time.Duration `envconfig:"STORE_TIMEOUT" default:"3s"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		MaxInFlight int           `envconfig:"SERVER_MAX_IN_FLIGHT" default:"100"`
		PageSize    int           `envconfig:"PAGE_SIZE" default:"20"`
		CORSOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	JWT struct {
		Secret string        `envconfig:"JWT_SECRET"`
		Issuer string        `envconfig:"JWT_ISSUER" default:"budgetflow"`
		TTL    time.Duration `envconfig:"JWT_TTL" default:"60m"`
	}

	Sync struct {
		Interval time.Duration `envconfig:"SYNC_INTERVAL" default:"1m"`
		Workers  int           `envconfig:"SYNC_WORKERS" default:"4"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	TUI struct {
		UserID int64 `envconfig:"TUI_USER_ID" default:"1"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// LogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", c.Store.Driver, DriverPostgres, DriverMemory)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want text or json", c.Log.Format)
	}

	if c.Store.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.Store.Timeout)
	}

	return nil
}
