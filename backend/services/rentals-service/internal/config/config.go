package config

import (
	"errors"
	"fmt"
	"strings"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/libs/db"
)

const defaultPort = "8084"

// Config defines rentals service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"RENTALS_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		Driver     string `yaml:"driver" env:"RENTALS_DB_DRIVER"`
		DSN        string `yaml:"dsn" env:"RENTALS_POSTGRES_DSN"`
		SQLitePath string `yaml:"sqlitePath" env:"RENTALS_SQLITE_PATH"`
	} `yaml:"database"`
}

// Load configuration from file/env.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = defaultPort
	cfg.Database.Driver = db.DriverPostgres

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Database.Driver)) {
	case db.DriverPostgres:
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return nil, errors.New("config: database dsn required")
		}
	case db.DriverSQLite:
		if strings.TrimSpace(cfg.Database.SQLitePath) == "" {
			return nil, errors.New("config: sqlite path required")
		}
	default:
		return nil, fmt.Errorf("config: unsupported database driver %q", cfg.Database.Driver)
	}
	return cfg, nil
}

// HTTPAddress returns :port style string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// DB returns the database settings.
func (c *Config) DB() db.Config {
	return db.Config{Driver: c.Database.Driver, DSN: c.Database.DSN, SQLitePath: c.Database.SQLitePath}
}
