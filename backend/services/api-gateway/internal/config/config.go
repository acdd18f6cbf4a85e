package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "powerbank/backend/libs/config"
)

const (
	defaultPort    = "8080"
	defaultTimeout = 15 * time.Second
)

// Config defines gateway configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"API_GATEWAY_HTTP_PORT"`
	} `yaml:"http"`
	JWT struct {
		Secret string `yaml:"secret" env:"API_GATEWAY_JWT_SECRET"`
	} `yaml:"jwt"`
	Services struct {
		StationsURL string `yaml:"stationsUrl" env:"STATIONS_SERVICE_URL"`
		RentalsURL  string `yaml:"rentalsUrl" env:"RENTALS_SERVICE_URL"`
	} `yaml:"services"`
	HTTPClient struct {
		TimeoutSeconds int `yaml:"timeoutSeconds" env:"API_GATEWAY_HTTP_TIMEOUT"`
	} `yaml:"httpClient"`
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = defaultPort
	cfg.Services.StationsURL = "http://localhost:8083"
	cfg.Services.RentalsURL = "http://localhost:8084"

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
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

// HTTPTimeout returns the upstream client timeout. The default sits above the 10s vendor timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPClient.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.HTTPClient.TimeoutSeconds) * time.Second
}
