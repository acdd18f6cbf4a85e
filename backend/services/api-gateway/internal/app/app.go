package app

import (
	"context"

	"go.uber.org/zap"

	"powerbank/backend/services/api-gateway/internal/clients"
	"powerbank/backend/services/api-gateway/internal/config"
	httpserver "powerbank/backend/services/api-gateway/internal/http"
	"powerbank/backend/services/api-gateway/internal/http/handlers"
	"powerbank/backend/services/api-gateway/internal/http/middleware"
)

// App wires API gateway dependencies.
type App struct {
	server *httpserver.Server
	logger *zap.Logger
}

// New constructs application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	httpClient := clients.NewDefaultHTTPClient(cfg.HTTPTimeout())

	stationsClient := clients.NewStationsClient(cfg.Services.StationsURL, httpClient)
	rentalsClient := clients.NewRentalsClient(cfg.Services.RentalsURL, httpClient)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		StationsHandlers: handlers.NewStationsHandlers(stationsClient, logger),
		RentalsHandlers:  handlers.NewRentalsHandlers(rentalsClient, logger),
		HealthHandler:    handlers.NewHealthHandler(),
	}, middleware.AuthMiddleware(cfg.JWT.Secret))

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.RequestID,
		middleware.LoggingMiddleware(logger),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources (none yet).
func (a *App) Close() {}
