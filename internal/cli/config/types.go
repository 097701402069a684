// Package config provides configuration management for the incomeshare CLI.
package config

// DatabaseConfig selects and addresses the record store.
type DatabaseConfig struct {
	Driver   string `koanf:"driver"`
	Path     string `koanf:"path"`
	DSN      string `koanf:"dsn"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"sslmode"`
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	AutoOpen      bool   `koanf:"auto_open"`
	Dev           bool   `koanf:"dev"`
}

// Config holds all CLI configuration options.
type Config struct {
	Database       DatabaseConfig `koanf:"database"`
	BaselinePeriod int            `koanf:"baseline_period"`
	Verbose        bool           `koanf:"verbose"`
	LogLevel       string         `koanf:"log_level"`
	OutputFormat   string         `koanf:"output"`
	UI             UIConfig       `koanf:"ui"`
}

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Default configuration values.
const (
	DefaultDriver         = DriverSQLite
	DefaultDatabasePath   = ".incomeshare/data.db"
	DefaultBaselinePeriod = 2024
	DefaultOutput         = "table"
	DefaultUIPort         = 8765
	DefaultSessionSecret  = "incomeshare-dev-secret-change-in-production" //nolint:gosec
)

// Default returns the configuration used before any file, env or flag is applied.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DefaultDriver,
			Path:   DefaultDatabasePath,
		},
		BaselinePeriod: DefaultBaselinePeriod,
		OutputFormat:   DefaultOutput,
		UI: UIConfig{
			Port:          DefaultUIPort,
			SessionSecret: DefaultSessionSecret,
			AutoOpen:      true,
		},
	}
}
