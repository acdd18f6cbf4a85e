package vendors

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"powerbank/backend/services/stations-service/internal/models"
)

// RequestTimeout bounds every vendor HTTP call.
const RequestTimeout = 10 * time.Second

// Adapter fetches the current battery slots of a station.
type Adapter interface {
	FetchBatteries(ctx context.Context, stationID string) ([]models.BatterySlot, error)
}

// RawResponse is a vendor reply relayed without interpretation.
type RawResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// Registry dispatches to the adapter of the station's vendor.
type Registry struct {
	adapters map[Vendor]Adapter
}

// NewRegistry builds a registry. Unset vendors behave like unsupported ones.
func NewRegistry(zapp, nexy Adapter) *Registry {
	r := &Registry{adapters: make(map[Vendor]Adapter, 2)}
	if zapp != nil {
		r.adapters[VendorZapp] = zapp
	}
	if nexy != nil {
		r.adapters[VendorNexy] = nexy
	}
	return r
}

// FetchBatteries resolves the vendor and delegates.
func (r *Registry) FetchBatteries(ctx context.Context, stationID string) ([]models.BatterySlot, error) {
	adapter, ok := r.adapters[Resolve(stationID)]
	if !ok {
		return nil, unsupported(stationID)
	}
	return adapter.FetchBatteries(ctx, stationID)
}

func newHTTPClient() *resty.Client {
	return resty.New().
		SetTimeout(RequestTimeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
}

func rawFrom(resp *resty.Response) *RawResponse {
	return &RawResponse{
		Status:      resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}
}
