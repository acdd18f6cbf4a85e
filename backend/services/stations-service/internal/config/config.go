package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/libs/db"
	libredis "powerbank/backend/libs/redis"
	"powerbank/backend/services/stations-service/internal/notify"
	"powerbank/backend/services/stations-service/internal/vendors"
)

const defaultPort = "8083"

// Config defines stations service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"STATIONS_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		Driver     string `yaml:"driver" env:"STATIONS_DB_DRIVER"`
		DSN        string `yaml:"dsn" env:"STATIONS_POSTGRES_DSN"`
		SQLitePath string `yaml:"sqlitePath" env:"STATIONS_SQLITE_PATH"`
	} `yaml:"database"`
	Redis struct {
		URL        string `yaml:"url" env:"STATIONS_REDIS_URL"`
		Addr       string `yaml:"addr" env:"STATIONS_REDIS_ADDR"`
		Password   string `yaml:"password" env:"STATIONS_REDIS_PASSWORD"`
		DB         int    `yaml:"db" env:"STATIONS_REDIS_DB"`
		TTLSeconds int    `yaml:"telemetryTtlSeconds" env:"STATIONS_TELEMETRY_TTL"`
	} `yaml:"redis"`
	Zapp struct {
		BaseURL   string `yaml:"baseUrl" env:"ZAPP_BASE_URL"`
		AccountID string `yaml:"accountId" env:"ZAPP_ACCOUNT_ID"`
	} `yaml:"zapp"`
	Nexy struct {
		BaseURL   string `yaml:"baseUrl" env:"NEXY_BASE_URL"`
		Token     string `yaml:"token" env:"NEXY_TOKEN"`
		PushToken string `yaml:"pushToken" env:"NEXY_PUSH_TOKEN"`
	} `yaml:"nexy"`
	Cron struct {
		Secret string `yaml:"secret" env:"CRON_SECRET"`
	} `yaml:"cron"`
	Notify struct {
		Driver     string   `yaml:"driver" env:"NOTIFY_DRIVER"`
		Recipients []string `yaml:"recipients" env:"NOTIFY_RECIPIENTS"`
		Webhook    struct {
			URL   string `yaml:"url" env:"NOTIFY_WEBHOOK_URL"`
			Token string `yaml:"token" env:"NOTIFY_WEBHOOK_TOKEN"`
		} `yaml:"webhook"`
		MQTT struct {
			Broker   string `yaml:"broker" env:"NOTIFY_MQTT_BROKER"`
			ClientID string `yaml:"clientId" env:"NOTIFY_MQTT_CLIENT_ID"`
			Username string `yaml:"username" env:"NOTIFY_MQTT_USERNAME"`
			Password string `yaml:"password" env:"NOTIFY_MQTT_PASSWORD"`
			Topic    string `yaml:"topic" env:"NOTIFY_MQTT_TOPIC"`
		} `yaml:"mqtt"`
		Kafka struct {
			Brokers []string `yaml:"brokers" env:"NOTIFY_KAFKA_BROKERS"`
			Topic   string   `yaml:"topic" env:"NOTIFY_KAFKA_TOPIC"`
		} `yaml:"kafka"`
	} `yaml:"notify"`
	WS struct {
		WriteTimeoutSeconds int `yaml:"writeTimeoutSeconds" env:"STATIONS_WS_WRITE_TIMEOUT"`
	} `yaml:"ws"`
}

// Load reads configuration via shared helper. Only settings needed to boot are validated
// here; vendor, cache and cron settings fail per request.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = defaultPort
	cfg.Database.Driver = db.DriverPostgres
	cfg.Redis.TTLSeconds = 600
	cfg.Notify.Driver = notify.DriverLog
	cfg.Notify.MQTT.ClientID = "stations-service"
	cfg.WS.WriteTimeoutSeconds = 10

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

// DB returns the database settings.
func (c *Config) DB() db.Config {
	return db.Config{Driver: c.Database.Driver, DSN: c.Database.DSN, SQLitePath: c.Database.SQLitePath}
}

// RedisOptions returns the cache connection settings.
func (c *Config) RedisOptions() libredis.Options {
	return libredis.Options{URL: c.Redis.URL, Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB}
}

// TelemetryTTL is how long a pushed telemetry document stays in the cache.
func (c *Config) TelemetryTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

// WSWriteTimeout bounds each websocket write.
func (c *Config) WSWriteTimeout() time.Duration {
	return time.Duration(c.WS.WriteTimeoutSeconds) * time.Second
}

func (c *Config) ZappConfig() vendors.ZappConfig {
	return vendors.ZappConfig{BaseURL: c.Zapp.BaseURL, AccountID: c.Zapp.AccountID}
}

func (c *Config) NexyConfig() vendors.NexyConfig {
	return vendors.NexyConfig{BaseURL: c.Nexy.BaseURL, Token: c.Nexy.Token}
}

func (c *Config) NotifyConfig() notify.Config {
	n := c.Notify
	return notify.Config{
		Driver:     n.Driver,
		Recipients: n.Recipients,
		Webhook:    notify.WebhookConfig{URL: n.Webhook.URL, Token: n.Webhook.Token},
		MQTT: notify.MQTTConfig{
			Broker:   n.MQTT.Broker,
			ClientID: n.MQTT.ClientID,
			Username: n.MQTT.Username,
			Password: n.MQTT.Password,
			Topic:    n.MQTT.Topic,
		},
		Kafka: notify.KafkaConfig{Brokers: n.Kafka.Brokers, Topic: n.Kafka.Topic},
	}
}
