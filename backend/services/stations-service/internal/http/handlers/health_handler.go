package handlers

import (
	"context"
	"net/http"
)

// NewHealthHandler returns GET /health handler. cachePing may be nil when no cache is configured.
func NewHealthHandler(cachePing func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cache := "disabled"
		if cachePing != nil {
			cache = "ok"
			if err := cachePing(r.Context()); err != nil {
				cache = "unavailable"
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "cache": cache})
	}
}
