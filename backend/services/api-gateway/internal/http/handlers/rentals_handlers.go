package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"powerbank/backend/services/api-gateway/internal/clients"
	"powerbank/backend/services/api-gateway/internal/http/middleware"
)

// RentalsHandlers proxies rent endpoints for authenticated users.
type RentalsHandlers struct {
	client *clients.RentalsClient
	logger *zap.Logger
}

// NewRentalsHandlers returns handler.
func NewRentalsHandlers(client *clients.RentalsClient, logger *zap.Logger) *RentalsHandlers {
	return &RentalsHandlers{client: client, logger: logger}
}

func (h *RentalsHandlers) caller(w http.ResponseWriter, r *http.Request) (clients.Caller, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return clients.Caller{}, false
	}
	return clients.Caller{UserID: userID, RequestID: middleware.RequestIDFromContext(r.Context())}, true
}

func (h *RentalsHandlers) relay(w http.ResponseWriter, resp *clients.Response, err error) {
	if err != nil {
		h.logger.Error("rentals proxy failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "rentals service unavailable")
		return
	}
	writeUpstream(w, resp)
}

// Complete handles PUT /api/rent/{rentId}.
func (h *RentalsHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	resp, err := h.client.CompleteRent(r.Context(), caller, r.PathValue("rentId"), body)
	h.relay(w, resp, err)
}

// Transition handles PUT /api/rent/{rentId}/status.
func (h *RentalsHandlers) Transition(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	resp, err := h.client.TransitionRent(r.Context(), caller, r.PathValue("rentId"), body)
	h.relay(w, resp, err)
}

// Status handles GET /api/rent/{rentId}/status.
func (h *RentalsHandlers) Status(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	resp, err := h.client.RentStatus(r.Context(), caller, r.PathValue("rentId"), r.URL.RawQuery)
	h.relay(w, resp, err)
}

// List handles GET /api/rents.
func (h *RentalsHandlers) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	resp, err := h.client.ListRents(r.Context(), caller, r.URL.RawQuery)
	h.relay(w, resp, err)
}
