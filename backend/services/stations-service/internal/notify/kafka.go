package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/models"
)

// KafkaConfig targets a topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes one message per report keyed by run id.
type KafkaSink struct {
	writer     messageWriter
	recipients []string
	logger     *zap.Logger
}

func NewKafkaSink(cfg KafkaConfig, recipients []string, logger *zap.Logger) (*KafkaSink, error) {
	if err := libconfig.Require("NOTIFY_KAFKA_BROKERS", strings.Join(cfg.Brokers, ",")); err != nil {
		return nil, err
	}
	if err := libconfig.Require("NOTIFY_KAFKA_TOPIC", cfg.Topic); err != nil {
		return nil, err
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaSink(w, recipients, logger), nil
}

func newKafkaSink(w messageWriter, recipients []string, logger *zap.Logger) *KafkaSink {
	return &KafkaSink{writer: w, recipients: recipients, logger: logger}
}

func (s *KafkaSink) NotifyOffline(ctx context.Context, result *models.StationCheckResult) error {
	payload, err := json.Marshal(FormatReport(result, s.recipients))
	if err != nil {
		return fmt.Errorf("notify kafka: encode: %w", err)
	}
	msg := kafka.Message{Key: []byte(result.RunID), Value: payload}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("notify kafka: write: %w", err)
	}
	s.logger.Info("offline report produced", zap.String("run_id", result.RunID))
	return nil
}

func (s *KafkaSink) Close() error { return s.writer.Close() }
