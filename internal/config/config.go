// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. BILLING_DB_DRIVER.
// LOG_LEVEL and LOG_FORMAT are also read without it.
const Prefix = "BILLING"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type App struct {
	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// DB
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/billing.db"`
	DBDSN    string `envconfig:"DB_DSN"`
	// Export
	ExportDir string `envconfig:"EXPORT_DIR" default:"./exports"`
	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads a .env file from the working directory if present, then the
// process environment.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return App{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var c App
	if err := envconfig.Process(Prefix, &c); err != nil {
		return App{}, err
	}
	if err := c.validate(); err != nil {
		return App{}, err
	}
	return c, nil
}

func (c App) validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("%s_DB_DSN is required when the driver is %s", Prefix, DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown %s_DB_DRIVER %q", Prefix, c.DBDriver)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}
