package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"powerbank/backend/services/api-gateway/internal/clients"
	httpserver "powerbank/backend/services/api-gateway/internal/http"
	"powerbank/backend/services/api-gateway/internal/http/handlers"
	"powerbank/backend/services/api-gateway/internal/http/middleware"
)

const secret = "gateway-secret"

type upstreamCall struct {
	Method, Path, Query, Body, UserID string
}

type recorder struct {
	mu    sync.Mutex
	calls []upstreamCall
}

func (rc *recorder) server(t *testing.T, status int, reply string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rc.mu.Lock()
		rc.calls = append(rc.calls, upstreamCall{
			Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery, Body: string(body), UserID: r.Header.Get("X-User-ID"),
		})
		rc.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (rc *recorder) last() upstreamCall {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.calls[len(rc.calls)-1]
}

func newGateway(stationsURL, rentalsURL string) http.Handler {
	httpClient := clients.NewDefaultHTTPClient(2 * time.Second)
	logger := zap.NewNop()
	router := httpserver.NewRouter(httpserver.RouterDeps{
		StationsHandlers: handlers.NewStationsHandlers(clients.NewStationsClient(stationsURL, httpClient), logger),
		RentalsHandlers:  handlers.NewRentalsHandlers(clients.NewRentalsClient(rentalsURL, httpClient), logger),
		HealthHandler:    handlers.NewHealthHandler(),
	}, middleware.AuthMiddleware(secret))
	return middleware.Chain(router, middleware.RecoveryMiddleware(logger), middleware.RequestID, middleware.LoggingMiddleware(logger))
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + token
}

func do(h http.Handler, method, path, body, auth string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBatteryStatusIsPublic(t *testing.T) {
	stations := &recorder{}
	upstream := stations.server(t, http.StatusOK, `{"batteries":[]}`)
	gw := newGateway(upstream.URL, "http://127.0.0.1:1")

	rec := do(gw, http.MethodGet, "/api/battery/status?stationId=ZAPP0001", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"batteries":[]}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	call := stations.last()
	assert.Equal(t, "/battery/status", call.Path)
	assert.Equal(t, "stationId=ZAPP0001", call.Query)
}

func TestRentRoutesRequireToken(t *testing.T) {
	rentals := &recorder{}
	upstream := rentals.server(t, http.StatusOK, `{}`)
	gw := newGateway("http://127.0.0.1:1", upstream.URL)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/rent/r1"},
		{http.MethodPut, "/api/rent/r1/status"},
		{http.MethodGet, "/api/rent/r1/status"},
		{http.MethodGet, "/api/rents"},
	} {
		rec := do(gw, tc.method, tc.path, `{}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
	assert.Empty(t, rentals.calls)
}

func TestRentRoutesRelayUpstream(t *testing.T) {
	rentals := &recorder{}
	upstream := rentals.server(t, http.StatusBadRequest, `{"error":"invalid transition","allowedTransitions":["rented","cancelled"]}`)
	gw := newGateway("http://127.0.0.1:1", upstream.URL)
	auth := bearer(t)

	rec := do(gw, http.MethodPut, "/api/rent/r%2F1/status", `{"status":"paid"}`, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "allowedTransitions")
	call := rentals.last()
	assert.Equal(t, http.MethodPut, call.Method)
	assert.Equal(t, "/rent/r%2F1/status", call.Path)
	assert.Equal(t, `{"status":"paid"}`, call.Body)
	assert.Equal(t, "u-1", call.UserID)

	do(gw, http.MethodPut, "/api/rent/r1", `{"endStationId":"NEXY1"}`, auth)
	assert.Equal(t, "/rent/r1", rentals.last().Path)

	do(gw, http.MethodGet, "/api/rent/r1/status?rentId=r1", "", auth)
	assert.Equal(t, "rentId=r1", rentals.last().Query)

	do(gw, http.MethodGet, "/api/rents?status=renting&limit=5", "", auth)
	assert.Equal(t, "/rents", rentals.last().Path)
	assert.Equal(t, "status=renting&limit=5", rentals.last().Query)
}

func TestUpstreamUnreachableIsBadGateway(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	gw := newGateway(dead.URL, dead.URL)

	rec := do(gw, http.MethodGet, "/api/battery/status?stationId=ZAPP0001", "", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = do(gw, http.MethodGet, "/api/rents", "", bearer(t))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = do(gw, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
