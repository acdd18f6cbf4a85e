package clients

import (
	"context"
	"net/http"
)

// StationsClient calls stations-service.
type StationsClient struct {
	base *BaseClient
}

// NewStationsClient returns client.
func NewStationsClient(baseURL string, httpClient HTTPDoer) *StationsClient {
	return &StationsClient{base: NewBaseClient(baseURL, httpClient)}
}

// BatteryStatus fetches normalized battery slots; rawQuery carries stationId.
func (c *StationsClient) BatteryStatus(ctx context.Context, rawQuery, requestID string) (*Response, error) {
	return c.base.Do(ctx, http.MethodGet, "/battery/status", rawQuery, nil, map[string]string{
		"X-Request-ID": requestID,
	})
}
