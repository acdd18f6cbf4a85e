package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LOG_SAMPLING", "off")

	opts, err := OptionsFromEnv("stations-service")
	require.NoError(t, err)
	assert.Equal(t, Options{Service: "stations-service", Level: zapcore.DebugLevel, Format: FormatConsole}, opts)
}

func TestOptionsFromEnv_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_SAMPLING", "")

	opts, err := OptionsFromEnv("api-gateway")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, opts.Level)
	assert.Equal(t, FormatJSON, opts.Format)
	assert.True(t, opts.Sample)
}

func TestNewLogger_RejectsBadSettings(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_LEVEL", "loud")
	_, err := NewLogger("api-gateway")
	assert.ErrorContains(t, err, "LOG_LEVEL")

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "xml")
	_, err = NewLogger("api-gateway")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestNew_JSONEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Service: "rentals-service", Level: zapcore.InfoLevel, Format: FormatJSON}, zapcore.AddSync(&buf))

	logger.Debug("hidden")
	logger.Info("rent status changed", zap.String("rent_id", "r1"))
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "rent status changed", entry["msg"])
	assert.Equal(t, "rentals-service", entry["service"])
	assert.Equal(t, "r1", entry["rent_id"])
	assert.Contains(t, entry["ts"], "Z")
	assert.Contains(t, entry["caller"], "logging_test.go")
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: zapcore.WarnLevel, Format: FormatConsole}, zapcore.AddSync(&buf))

	logger.Info("skipped")
	logger.Warn("station check failed", zap.String("station_id", "NEXY1"))

	out := buf.String()
	assert.NotContains(t, out, "skipped")
	assert.Contains(t, out, "station check failed")
	assert.Contains(t, out, `{"station_id": "NEXY1"}`)
	assert.NotContains(t, out, "service")
}
