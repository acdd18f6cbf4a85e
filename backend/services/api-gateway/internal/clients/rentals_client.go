package clients

import (
	"context"
	"net/http"
	"net/url"
)

// RentalsClient calls rentals-service on behalf of an authenticated user.
type RentalsClient struct {
	base *BaseClient
}

// NewRentalsClient returns client.
func NewRentalsClient(baseURL string, httpClient HTTPDoer) *RentalsClient {
	return &RentalsClient{base: NewBaseClient(baseURL, httpClient)}
}

// Caller identifies who a proxied request runs for.
type Caller struct {
	UserID    string
	RequestID string
}

func (c Caller) headers() map[string]string {
	return map[string]string{"X-User-ID": c.UserID, "X-Request-ID": c.RequestID}
}

func rentPath(rentID string) string {
	return "/rent/" + url.PathEscape(rentID)
}

// CompleteRent relays PUT /rent/{rentId}.
func (c *RentalsClient) CompleteRent(ctx context.Context, caller Caller, rentID string, body []byte) (*Response, error) {
	return c.base.Do(ctx, http.MethodPut, rentPath(rentID), "", body, caller.headers())
}

// TransitionRent relays PUT /rent/{rentId}/status.
func (c *RentalsClient) TransitionRent(ctx context.Context, caller Caller, rentID string, body []byte) (*Response, error) {
	return c.base.Do(ctx, http.MethodPut, rentPath(rentID)+"/status", "", body, caller.headers())
}

// RentStatus relays GET /rent/{rentId}/status.
func (c *RentalsClient) RentStatus(ctx context.Context, caller Caller, rentID, rawQuery string) (*Response, error) {
	return c.base.Do(ctx, http.MethodGet, rentPath(rentID)+"/status", rawQuery, nil, caller.headers())
}

// ListRents relays GET /rents.
func (c *RentalsClient) ListRents(ctx context.Context, caller Caller, rawQuery string) (*Response, error) {
	return c.base.Do(ctx, http.MethodGet, "/rents", rawQuery, nil, caller.headers())
}
