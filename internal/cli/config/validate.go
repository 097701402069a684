package config

import (
	"fmt"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" && c.Database.Name == "" {
			return fmt.Errorf("database.name or database.dsn is required for the postgres driver")
		}
		if c.Database.Port < 0 {
			return fmt.Errorf("database.port must be positive, got %d", c.Database.Port)
		}
	default:
		return fmt.Errorf("unknown database driver %q (available: %s, %s)", c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	if c.UI.Port <= 0 || c.UI.Port > 65535 {
		return fmt.Errorf("ui.port must be between 1 and 65535, got %d", c.UI.Port)
	}

	switch c.OutputFormat {
	case "table", "json":
	default:
		return fmt.Errorf("unknown output format %q (available: table, json)", c.OutputFormat)
	}

	if c.LogLevel != "" {
		switch strings.ToLower(c.LogLevel) {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("unknown log_level %q", c.LogLevel)
		}
	}
	return nil
}
