package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STATIONS_POSTGRES_DSN", "postgres://u:p@localhost/stations")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8083", cfg.HTTPAddress())
	assert.Equal(t, "postgres", cfg.DB().Driver)
	assert.Equal(t, 10*time.Minute, cfg.TelemetryTTL())
	assert.Equal(t, "log", cfg.NotifyConfig().Driver)
	assert.False(t, cfg.RedisOptions().Configured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STATIONS_DB_DRIVER", "sqlite")
	t.Setenv("STATIONS_SQLITE_PATH", "/tmp/stations.db")
	t.Setenv("STATIONS_REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("ZAPP_ACCOUNT_ID", "acct")
	t.Setenv("NEXY_TOKEN", "tok")
	t.Setenv("NEXY_PUSH_TOKEN", "push")
	t.Setenv("NOTIFY_RECIPIENTS", "ops@example.com, oncall@example.com")
	t.Setenv("NOTIFY_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/stations.db", cfg.DB().SQLitePath)
	assert.True(t, cfg.RedisOptions().Configured())
	assert.Equal(t, "acct", cfg.ZappConfig().AccountID)
	assert.Equal(t, "tok", cfg.NexyConfig().Token)
	assert.Equal(t, "push", cfg.Nexy.PushToken)
	assert.Equal(t, []string{"ops@example.com", "oncall@example.com"}, cfg.NotifyConfig().Recipients)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.NotifyConfig().Kafka.Brokers)
}

func TestLoad_RequiresDatabase(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STATIONS_POSTGRES_DSN", "")

	_, err := Load()
	assert.EqualError(t, err, "config: database dsn required")

	t.Setenv("STATIONS_DB_DRIVER", "mysql")
	_, err = Load()
	assert.EqualError(t, err, `config: unsupported database driver "mysql"`)
}
