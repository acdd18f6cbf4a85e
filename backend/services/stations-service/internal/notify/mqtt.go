package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/models"
)

const (
	mqttQoS            = 1
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 10 * time.Second
)

// MQTTConfig targets a broker topic.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes the report as JSON with QoS 1.
type MQTTSink struct {
	client     mqttPublisher
	topic      string
	recipients []string
	logger     *zap.Logger
}

// NewMQTTSink connects to the broker. Reconnects are left to the paho client.
func NewMQTTSink(cfg MQTTConfig, recipients []string, logger *zap.Logger) (*MQTTSink, error) {
	if err := libconfig.Require("NOTIFY_MQTT_BROKER", cfg.Broker); err != nil {
		return nil, err
	}
	if err := libconfig.Require("NOTIFY_MQTT_TOPIC", cfg.Topic); err != nil {
		return nil, err
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(mqttConnectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("notify mqtt: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("notify mqtt: connect: %w", err)
	}
	return newMQTTSink(client, cfg.Topic, recipients, logger), nil
}

func newMQTTSink(client mqttPublisher, topic string, recipients []string, logger *zap.Logger) *MQTTSink {
	return &MQTTSink{client: client, topic: topic, recipients: recipients, logger: logger}
}

func (s *MQTTSink) NotifyOffline(ctx context.Context, result *models.StationCheckResult) error {
	payload, err := json.Marshal(FormatReport(result, s.recipients))
	if err != nil {
		return fmt.Errorf("notify mqtt: encode: %w", err)
	}
	token := s.client.Publish(s.topic, mqttQoS, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(mqttPublishTimeout):
		return fmt.Errorf("notify mqtt: publish to %s timed out", s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("notify mqtt: publish to %s: %w", s.topic, err)
	}
	s.logger.Info("offline report published", zap.String("topic", s.topic), zap.String("run_id", result.RunID))
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
