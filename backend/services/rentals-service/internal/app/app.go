package app

import (
	"context"

	"go.uber.org/zap"

	"powerbank/backend/libs/db"
	"powerbank/backend/services/rentals-service/internal/config"
	httpserver "powerbank/backend/services/rentals-service/internal/http"
	"powerbank/backend/services/rentals-service/internal/http/handlers"
	"powerbank/backend/services/rentals-service/internal/repository"
	"powerbank/backend/services/rentals-service/internal/service"
)

// App wires rentals service dependencies.
type App struct {
	server *httpserver.Server
	db     *db.DB
	logger *zap.Logger
}

// New constructs application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	database, err := db.Open(cfg.DB())
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	rents := repository.NewRentRepository(database)
	rentService := service.NewRentService(rents, logger)
	rentHandler := handlers.NewRentHandler(rentService, logger)

	routes := httpserver.Routes{
		CompleteRent:   rentHandler.HandleComplete,
		TransitionRent: rentHandler.HandleTransition,
		RentStatus:     rentHandler.HandleStatus,
		ListRents:      rentHandler.HandleList,
		Health:         handlers.NewHealthHandler(database.PingContext),
	}

	router := httpserver.NewRouter(routes, logger)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		db:     database,
		logger: logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
