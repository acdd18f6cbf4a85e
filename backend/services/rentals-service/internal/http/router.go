package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Routes groups handlers.
type Routes struct {
	CompleteRent   http.HandlerFunc
	TransitionRent http.HandlerFunc
	RentStatus     http.HandlerFunc
	ListRents      http.HandlerFunc
	Health         http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	if routes.CompleteRent != nil {
		r.Put("/rent/{rentId}", routes.CompleteRent)
	}
	if routes.TransitionRent != nil {
		r.Put("/rent/{rentId}/status", routes.TransitionRent)
	}
	if routes.RentStatus != nil {
		r.Get("/rent/{rentId}/status", routes.RentStatus)
	}
	if routes.ListRents != nil {
		r.Get("/rents", routes.ListRents)
	}
	if routes.Health != nil {
		r.Get("/health", routes.Health)
	}
	return r
}
