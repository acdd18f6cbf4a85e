package vendors

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/models"
)

// Settings required by the synchronous vendor.
const (
	ZappBaseURLSetting   = "ZAPP_BASE_URL"
	ZappAccountIDSetting = "ZAPP_ACCOUNT_ID"
)

// ZappConfig holds the synchronous vendor credentials.
type ZappConfig struct {
	BaseURL   string
	AccountID string
}

type zappStation struct {
	Batteries []zappSlot `json:"batteries"`
}

type zappSlot struct {
	SlotNum         int    `json:"slotNum"`
	BatteryID       string `json:"batteryId"`
	BatteryCapacity int    `json:"batteryCapacity"`
	LockStatus      int    `json:"lockStatus"`
	BatteryAbnormal bool   `json:"batteryAbnormal"`
	CableAbnormal   bool   `json:"cableAbnormal"`
	ContactAbnormal bool   `json:"contactAbnormal"`
}

// ZappAdapter queries the synchronous vendor, which answers with slot data directly.
type ZappAdapter struct {
	cfg    ZappConfig
	client *resty.Client
	logger *zap.Logger
}

// NewZappAdapter builds the adapter. Settings are checked per call.
func NewZappAdapter(cfg ZappConfig, logger *zap.Logger) *ZappAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZappAdapter{cfg: cfg, client: newHTTPClient(), logger: logger}
}

func (a *ZappAdapter) validate() error {
	if err := libconfig.Require(ZappBaseURLSetting, a.cfg.BaseURL); err != nil {
		return err
	}
	return libconfig.Require(ZappAccountIDSetting, a.cfg.AccountID)
}

func (a *ZappAdapter) get(ctx context.Context, stationID string) (*resty.Response, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(a.cfg.BaseURL, "/") + "/station/" + url.PathEscape(stationID)
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Authorization", basicCredentials(a.cfg.AccountID)).
		Get(endpoint)
	if err != nil {
		a.logger.Warn("zapp request failed", zap.String("station_id", stationID), zap.Error(err))
		return nil, &TimeoutError{Err: err}
	}
	return resp, nil
}

// FetchBatteries performs one authenticated GET and maps the slots.
func (a *ZappAdapter) FetchBatteries(ctx context.Context, stationID string) ([]models.BatterySlot, error) {
	resp, err := a.get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		a.logger.Warn("zapp returned error status",
			zap.String("station_id", stationID),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, &ProtocolError{Status: resp.StatusCode(), Message: responseMessage(resp.StatusCode(), resp.Body())}
	}

	var payload zappStation
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, &ProtocolError{Status: resp.StatusCode(), Message: "malformed station payload: " + err.Error()}
	}

	slots := make([]models.BatterySlot, 0, len(payload.Batteries))
	for _, b := range payload.Batteries {
		slots = append(slots, models.BatterySlot{
			SlotID:          b.SlotNum,
			BatteryID:       b.BatteryID,
			CapacityPercent: b.BatteryCapacity,
			LockStatus:      b.LockStatus,
			BatteryAbnormal: b.BatteryAbnormal,
			CableAbnormal:   b.CableAbnormal,
			ContactAbnormal: b.ContactAbnormal,
		})
	}
	return slots, nil
}

// Passthrough relays the vendor's station response unchanged.
func (a *ZappAdapter) Passthrough(ctx context.Context, stationID string) (*RawResponse, error) {
	resp, err := a.get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return rawFrom(resp), nil
}

// basicCredentials encodes the account id with an empty password.
func basicCredentials(accountID string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(accountID+":"))
}
