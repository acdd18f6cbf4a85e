package vendors

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/cachebridge"
	"powerbank/backend/services/stations-service/internal/models"
)

// Settings required by the trigger-then-poll vendor.
const (
	NexyBaseURLSetting = "NEXY_BASE_URL"
	NexyTokenSetting   = "NEXY_TOKEN"
)

// Operation codes understood by the vendor endpoint.
const (
	opQueryStatus = "64"
	opReleaseSlot = "65"
)

const ackOK = 200

// NexyConfig holds the trigger-then-poll vendor endpoint and token.
type NexyConfig struct {
	BaseURL string
	Token   string
}

// CacheReader is the read side of the cache bridge.
type CacheReader interface {
	Get(ctx context.Context, key string) (string, error)
}

type nexyAck struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type nexyTelemetry struct {
	Batteries []nexySlot `json:"batteries"`
}

type nexySlot struct {
	Slot            int    `json:"slot"`
	BatteryID       string `json:"batteryId"`
	Capacity        int    `json:"capacity"`
	Lock            int    `json:"lock"`
	BatteryAbnormal int    `json:"batteryAbnormal"`
	CableAbnormal   int    `json:"cableAbnormal"`
	ContactAbnormal int    `json:"contactAbnormal"`
}

// NexyAdapter triggers a telemetry push and then reads the pushed document from the cache.
// The vendor's reply only acknowledges the trigger.
type NexyAdapter struct {
	cfg    NexyConfig
	client *resty.Client
	cache  CacheReader
	logger *zap.Logger
}

// NewNexyAdapter builds the adapter over cache.
func NewNexyAdapter(cfg NexyConfig, cache CacheReader, logger *zap.Logger) *NexyAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NexyAdapter{cfg: cfg, client: newHTTPClient(), cache: cache, logger: logger}
}

func (a *NexyAdapter) validate() error {
	if err := libconfig.Require(NexyBaseURLSetting, a.cfg.BaseURL); err != nil {
		return err
	}
	return libconfig.Require(NexyTokenSetting, a.cfg.Token)
}

func (a *NexyAdapter) call(ctx context.Context, params map[string]string) (*resty.Response, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	params["token"] = a.cfg.Token
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(a.cfg.BaseURL)
	if err != nil {
		a.logger.Warn("nexy request failed",
			zap.String("station_id", params["E"]),
			zap.String("op", params["I"]),
			zap.Error(err),
		)
		return nil, &TimeoutError{Err: err}
	}
	return resp, nil
}

// trigger sends an operation and requires a positive ack.
func (a *NexyAdapter) trigger(ctx context.Context, params map[string]string) error {
	resp, err := a.call(ctx, params)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &ProtocolError{Status: resp.StatusCode(), Message: responseMessage(resp.StatusCode(), resp.Body())}
	}
	var ack nexyAck
	if err := json.Unmarshal(resp.Body(), &ack); err != nil {
		return &ProtocolError{Status: resp.StatusCode(), Message: "malformed ack: " + err.Error()}
	}
	if ack.Code != ackOK {
		msg := ack.Msg
		if msg == "" {
			msg = "trigger rejected"
		}
		return &ProtocolError{Status: ack.Code, Message: msg}
	}
	return nil
}

// FetchBatteries triggers a status push, then reads the cache exactly once.
func (a *NexyAdapter) FetchBatteries(ctx context.Context, stationID string) ([]models.BatterySlot, error) {
	if a.cache == nil {
		return nil, &libconfig.ConfigurationError{Setting: cachebridge.CacheSetting}
	}
	if err := a.trigger(ctx, map[string]string{"I": opQueryStatus, "E": stationID}); err != nil {
		return nil, err
	}

	raw, err := a.cache.Get(ctx, cachebridge.StationKey(stationID))
	if err != nil {
		return nil, err
	}

	var doc nexyTelemetry
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &ProtocolError{Message: "malformed cached telemetry: " + err.Error()}
	}
	if len(doc.Batteries) == 0 {
		return nil, cachebridge.ErrCacheMiss
	}

	slots := make([]models.BatterySlot, 0, len(doc.Batteries))
	for _, b := range doc.Batteries {
		slots = append(slots, models.BatterySlot{
			SlotID:          b.Slot,
			BatteryID:       b.BatteryID,
			CapacityPercent: b.Capacity,
			LockStatus:      b.Lock,
			BatteryAbnormal: b.BatteryAbnormal != 0,
			CableAbnormal:   b.CableAbnormal != 0,
			ContactAbnormal: b.ContactAbnormal != 0,
		})
	}
	return slots, nil
}

// Ack relays the vendor's acknowledgement of a status trigger. The cache is not read.
func (a *NexyAdapter) Ack(ctx context.Context, stationID string) (*RawResponse, error) {
	resp, err := a.call(ctx, map[string]string{"I": opQueryStatus, "E": stationID})
	if err != nil {
		return nil, err
	}
	return rawFrom(resp), nil
}

// ReleaseSlot asks the station to unlock slotID.
func (a *NexyAdapter) ReleaseSlot(ctx context.Context, stationID string, slotID int) error {
	if slotID <= 0 {
		return errors.New("release: slot id must be positive")
	}
	err := a.trigger(ctx, map[string]string{
		"I": opReleaseSlot,
		"E": stationID,
		"L": strconv.Itoa(slotID),
	})
	if err != nil {
		return err
	}
	a.logger.Info("nexy slot release accepted", zap.String("station_id", stationID), zap.Int("slot_id", slotID))
	return nil
}
