package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"powerbank/backend/services/api-gateway/internal/clients"
	"powerbank/backend/services/api-gateway/internal/http/middleware"
)

// StationsHandlers proxies station endpoints.
type StationsHandlers struct {
	client *clients.StationsClient
	logger *zap.Logger
}

// NewStationsHandlers returns handler.
func NewStationsHandlers(client *clients.StationsClient, logger *zap.Logger) *StationsHandlers {
	return &StationsHandlers{client: client, logger: logger}
}

// BatteryStatus handles GET /api/battery/status.
func (h *StationsHandlers) BatteryStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.client.BatteryStatus(r.Context(), r.URL.RawQuery, middleware.RequestIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("stations proxy failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "stations service unavailable")
		return
	}
	writeUpstream(w, resp)
}
