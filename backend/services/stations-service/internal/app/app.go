package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"powerbank/backend/libs/db"
	libredis "powerbank/backend/libs/redis"
	"powerbank/backend/services/stations-service/internal/cachebridge"
	"powerbank/backend/services/stations-service/internal/config"
	httpserver "powerbank/backend/services/stations-service/internal/http"
	"powerbank/backend/services/stations-service/internal/http/handlers"
	"powerbank/backend/services/stations-service/internal/monitor"
	"powerbank/backend/services/stations-service/internal/notify"
	"powerbank/backend/services/stations-service/internal/repository"
	"powerbank/backend/services/stations-service/internal/vendors"
	"powerbank/backend/services/stations-service/internal/ws"
)

// Components is the service graph shared by the HTTP server and stationctl.
type Components struct {
	DB       *db.DB
	Stations *repository.StationRepository
	Cache    *cachebridge.Bridge
	Zapp     *vendors.ZappAdapter
	Nexy     *vendors.NexyAdapter
	Registry *vendors.Registry
	Notifier notify.Sink
	Monitor  *monitor.Monitor

	redisClient *redis.Client
	logger      *zap.Logger
}

// NewComponents opens storage and builds adapters. A missing or unreachable cache is not
// fatal: calls that need it fail on their own.
func NewComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	database, err := db.Open(cfg.DB())
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	var redisClient *redis.Client
	if opts := cfg.RedisOptions(); opts.Configured() {
		redisClient, err = libredis.NewClient(opts)
		if err != nil {
			database.Close()
			return nil, err
		}
		if err := libredis.Ping(ctx, redisClient); err != nil {
			logger.Warn("cache not reachable at startup, continuing", zap.Error(err))
		}
	} else {
		logger.Warn("no cache configured, NEXY telemetry unavailable", zap.String("setting", cachebridge.CacheSetting))
	}

	sink, err := notify.New(cfg.NotifyConfig(), logger)
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		database.Close()
		return nil, err
	}

	stations := repository.NewStationRepository(database)
	bridge := cachebridge.NewBridge(redisClient, cfg.TelemetryTTL())
	zapp := vendors.NewZappAdapter(cfg.ZappConfig(), logger)
	nexy := vendors.NewNexyAdapter(cfg.NexyConfig(), bridge, logger)
	registry := vendors.NewRegistry(zapp, nexy)

	return &Components{
		DB:          database,
		Stations:    stations,
		Cache:       bridge,
		Zapp:        zapp,
		Nexy:        nexy,
		Registry:    registry,
		Notifier:    sink,
		Monitor:     monitor.New(stations, registry, sink, logger),
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// CachePing returns a health probe, or nil when no cache is configured.
func (c *Components) CachePing() func(context.Context) error {
	if c.redisClient == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return libredis.Ping(ctx, c.redisClient)
	}
}

// Close releases resources.
func (c *Components) Close() {
	if err := c.Notifier.Close(); err != nil {
		c.logger.Warn("failed to close notifier", zap.Error(err))
	}
	if err := c.Cache.Close(); err != nil {
		c.logger.Warn("failed to close redis", zap.Error(err))
	}
	if err := c.DB.Close(); err != nil {
		c.logger.Warn("failed to close db", zap.Error(err))
	}
}

// App wires stations-service dependencies.
type App struct {
	*Components
	server *httpserver.Server
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	comps, err := NewComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	wsManager := ws.NewManager()
	wsServer := ws.NewServer(wsManager, comps.Cache, cfg.Nexy.PushToken, cfg.WSWriteTimeout(), logger)
	cron := handlers.NewCronHandler(comps.Monitor, cfg.Cron.Secret, logger)

	routes := httpserver.Routes{
		BatteryStatus:   handlers.NewBatteryStatusHandler(comps.Registry, logger),
		ZappStation:     handlers.NewZappStationHandler(comps.Zapp, logger),
		NexyStation:     handlers.NewNexyStationHandler(comps.Nexy, logger),
		NexySlotRelease: handlers.NewSlotReleaseHandler(comps.Nexy, logger),
		NexyCallback:    handlers.NewNexyCallbackHandler(comps.Cache, cfg.Nexy.PushToken, logger),
		NexyPush:        wsServer.HandleWS,
		CheckStations:   cron.HandleCheckStations,
		RecheckStations: cron.HandleRecheckStations,
		Health:          handlers.NewHealthHandler(comps.CachePing()),
	}

	router := httpserver.NewRouter(routes, logger)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger, wsManager.CloseAll)

	return &App{Components: comps, server: server}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		a.logger.Info("stations-service stopped", zap.Duration("uptime", time.Since(start)))
	}()
	return a.server.Run(ctx)
}
