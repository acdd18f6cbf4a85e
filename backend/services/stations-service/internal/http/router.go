package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Routes groups handlers.
type Routes struct {
	BatteryStatus   http.HandlerFunc
	ZappStation     http.HandlerFunc
	NexyStation     http.HandlerFunc
	NexySlotRelease http.HandlerFunc
	NexyCallback    http.HandlerFunc
	NexyPush        http.HandlerFunc
	CheckStations   http.HandlerFunc
	RecheckStations http.HandlerFunc
	Health          http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	if routes.BatteryStatus != nil {
		r.Get("/battery/status", routes.BatteryStatus)
	}
	if routes.ZappStation != nil {
		r.Get("/zapp/station/{stationId}", routes.ZappStation)
	}
	r.Route("/nexy", func(r chi.Router) {
		if routes.NexyStation != nil {
			r.Get("/station/{stationId}", routes.NexyStation)
		}
		if routes.NexySlotRelease != nil {
			r.Post("/station/{stationId}/slots/{slotId}/release", routes.NexySlotRelease)
		}
		if routes.NexyCallback != nil {
			r.Post("/callback/{stationId}", routes.NexyCallback)
		}
		if routes.NexyPush != nil {
			r.Get("/ws", routes.NexyPush)
		}
	})
	if routes.CheckStations != nil {
		r.Get("/cron/check-stations", routes.CheckStations)
	}
	if routes.RecheckStations != nil {
		r.Post("/cron/recheck-stations", routes.RecheckStations)
	}
	if routes.Health != nil {
		r.Get("/health", routes.Health)
	}
	return r
}
