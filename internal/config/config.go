package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Addr             string        `envconfig:"ADDR" default:":8080"`
	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	Storage          string        `envconfig:"STORAGE"`
	PerPage          int           `envconfig:"PER_PAGE" default:"3"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string        `envconfig:"LOG_FORMAT" default:"json"`
	CORSAllowOrigins string        `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads the process environment. Call godotenv first to pick up a .env file.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UsePostgres reports the storage backend. Without an explicit STORAGE the
// presence of DATABASE_URL decides.
func (c Config) UsePostgres() bool {
	if c.Storage == "" {
		return c.DatabaseURL != ""
	}
	return c.Storage == StoragePostgres
}

func (c Config) validate() error {
	switch c.Storage {
	case "", StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: STORAGE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE %q", c.Storage)
	}
	if c.PerPage < 1 {
		return fmt.Errorf("config: PER_PAGE must be positive, got %d", c.PerPage)
	}
	return nil
}
