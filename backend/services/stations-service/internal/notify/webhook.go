package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/models"
)

const webhookTimeout = 10 * time.Second

// WebhookConfig posts reports as JSON to URL.
type WebhookConfig struct {
	URL   string
	Token string
}

// WebhookSink posts the report to an HTTP endpoint.
type WebhookSink struct {
	cfg        WebhookConfig
	recipients []string
	client     *resty.Client
	logger     *zap.Logger
}

func NewWebhookSink(cfg WebhookConfig, recipients []string, logger *zap.Logger) (*WebhookSink, error) {
	if err := libconfig.Require("NOTIFY_WEBHOOK_URL", cfg.URL); err != nil {
		return nil, err
	}
	client := resty.New().
		SetTimeout(webhookTimeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &WebhookSink{cfg: cfg, recipients: recipients, client: client, logger: logger}, nil
}

func (s *WebhookSink) NotifyOffline(ctx context.Context, result *models.StationCheckResult) error {
	report := FormatReport(result, s.recipients)
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(report).
		Post(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("notify webhook: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("notify webhook: unexpected status %d", resp.StatusCode())
	}
	s.logger.Info("offline report posted", zap.String("run_id", report.RunID))
	return nil
}

func (s *WebhookSink) Close() error { return nil }
