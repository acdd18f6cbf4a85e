package cachebridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	libconfig "powerbank/backend/libs/config"
)

// CacheSetting names the configuration that enables the bridge.
const CacheSetting = "STATIONS_REDIS_URL"

// ErrCacheMiss means the key is absent: the vendor's push has not landed yet.
var ErrCacheMiss = errors.New("cache miss: telemetry not yet available")

// UnavailableError is an infrastructure fault talking to the cache.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("cache unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// StationKey is the fixed key vendors push station telemetry under.
func StationKey(stationID string) string {
	return fmt.Sprintf("stations:%s", stationID)
}

// Bridge reads vendor-pushed telemetry from redis. The client is owned by the caller
// that constructed it and released through Close.
type Bridge struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBridge returns a bridge over client. A nil client yields a bridge whose every call
// fails with a ConfigurationError. ttl <= 0 stores pushed telemetry without expiry.
func NewBridge(client *redis.Client, ttl time.Duration) *Bridge {
	return &Bridge{client: client, ttl: ttl}
}

// Get returns the raw value under key.
func (b *Bridge) Get(ctx context.Context, key string) (string, error) {
	if b.client == nil {
		return "", &libconfig.ConfigurationError{Setting: CacheSetting}
	}
	val, err := b.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", &UnavailableError{Err: err}
	}
	return val, nil
}

// Ingest stores a vendor push for stationID after checking it carries a batteries array.
func (b *Bridge) Ingest(ctx context.Context, stationID string, payload []byte) error {
	if b.client == nil {
		return &libconfig.ConfigurationError{Setting: CacheSetting}
	}
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return errors.New("ingest: station id is required")
	}
	var doc struct {
		Batteries json.RawMessage `json:"batteries"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("ingest: invalid json: %w", err)
	}
	var slots []json.RawMessage
	if len(doc.Batteries) == 0 || json.Unmarshal(doc.Batteries, &slots) != nil {
		return errors.New("ingest: batteries array is required")
	}
	if err := b.client.Set(ctx, StationKey(stationID), payload, b.ttl).Err(); err != nil {
		return &UnavailableError{Err: err}
	}
	return nil
}

// Close releases the underlying connection pool.
func (b *Bridge) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}
