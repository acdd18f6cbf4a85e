package httpserver

import (
	"net/http"

	"powerbank/backend/services/api-gateway/internal/http/handlers"
	"powerbank/backend/services/api-gateway/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	StationsHandlers *handlers.StationsHandlers
	RentalsHandlers  *handlers.RentalsHandlers
	HealthHandler    http.HandlerFunc
}

// NewRouter wires HTTP routes. Battery status is public; rent endpoints require a token.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /health", deps.HealthHandler)
	mux.HandleFunc("GET /api/battery/status", deps.StationsHandlers.BatteryStatus)

	authenticated := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(handler, authMiddleware)
	}

	mux.Handle("PUT /api/rent/{rentId}", authenticated(deps.RentalsHandlers.Complete))
	mux.Handle("PUT /api/rent/{rentId}/status", authenticated(deps.RentalsHandlers.Transition))
	mux.Handle("GET /api/rent/{rentId}/status", authenticated(deps.RentalsHandlers.Status))
	mux.Handle("GET /api/rents", authenticated(deps.RentalsHandlers.List))

	return mux
}
