// Package notify delivers offline-station reports.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"powerbank/backend/services/stations-service/internal/models"
)

// Drivers.
const (
	DriverLog     = "log"
	DriverWebhook = "webhook"
	DriverMQTT    = "mqtt"
	DriverKafka   = "kafka"
)

// Sink sends one report per monitor run.
type Sink interface {
	NotifyOffline(ctx context.Context, result *models.StationCheckResult) error
	Close() error
}

// Config selects and configures a driver.
type Config struct {
	Driver     string
	Recipients []string
	Webhook    WebhookConfig
	MQTT       MQTTConfig
	Kafka      KafkaConfig
}

// New builds the configured sink. An empty driver means log.
func New(cfg Config, logger *zap.Logger) (Sink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverLog:
		return NewLogSink(cfg.Recipients, logger), nil
	case DriverWebhook:
		return NewWebhookSink(cfg.Webhook, cfg.Recipients, logger)
	case DriverMQTT:
		return NewMQTTSink(cfg.MQTT, cfg.Recipients, logger)
	case DriverKafka:
		return NewKafkaSink(cfg.Kafka, cfg.Recipients, logger)
	default:
		return nil, fmt.Errorf("notify: unknown driver %q", cfg.Driver)
	}
}

// LogSink writes the report to the service log.
type LogSink struct {
	recipients []string
	logger     *zap.Logger
}

func NewLogSink(recipients []string, logger *zap.Logger) *LogSink {
	return &LogSink{recipients: recipients, logger: logger}
}

func (s *LogSink) NotifyOffline(_ context.Context, result *models.StationCheckResult) error {
	report := FormatReport(result, s.recipients)
	s.logger.Warn(report.Subject,
		zap.String("run_id", report.RunID),
		zap.Strings("recipients", report.Recipients),
		zap.Int("offline", len(report.OfflineStations)),
		zap.Int("errors", len(report.Errors)),
		zap.String("body", report.Body),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
