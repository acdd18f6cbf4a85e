// Package logging builds the zap loggers shared by the services and the stationctl tool.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats accepted in LOG_FORMAT.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options describes one service logger.
type Options struct {
	Service string
	Level   zapcore.Level
	Format  string
	// Sample keeps the first 100 entries per message and second, then every 100th.
	Sample bool
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_SAMPLING. Unset values mean info, json
// and sampling on.
func OptionsFromEnv(service string) (Options, error) {
	opts := Options{Service: service, Level: zapcore.InfoLevel, Format: FormatJSON, Sample: true}
	if raw := env("LOG_LEVEL"); raw != "" {
		level, err := zapcore.ParseLevel(raw)
		if err != nil {
			return opts, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		opts.Level = level
	}
	switch raw := env("LOG_FORMAT"); raw {
	case "", FormatJSON:
	case FormatConsole:
		opts.Format = FormatConsole
	default:
		return opts, fmt.Errorf("LOG_FORMAT: unknown format %q", raw)
	}
	switch env("LOG_SAMPLING") {
	case "off", "false", "0":
		opts.Sample = false
	}
	return opts, nil
}

// NewLogger builds the process logger for service from the environment, writing to stdout.
func NewLogger(service string) (*zap.Logger, error) {
	opts, err := OptionsFromEnv(service)
	if err != nil {
		return nil, err
	}
	return New(opts, zapcore.Lock(os.Stdout)), nil
}

// New builds a logger writing entries to sink. Internal zap errors go to stderr.
func New(opts Options, sink zapcore.WriteSyncer) *zap.Logger {
	var core zapcore.Core = zapcore.NewCore(encoder(opts.Format), sink, zap.NewAtomicLevelAt(opts.Level))
	if opts.Sample {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}

	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	)
	if opts.Service != "" {
		logger = logger.With(zap.String("service", opts.Service))
	}
	return logger
}

func encoder(format string) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     utcTime,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == FormatConsole {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func utcTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339Nano))
}

func env(key string) string {
	return strings.ToLower(strings.TrimSpace(os.Getenv(key)))
}
