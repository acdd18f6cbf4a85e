package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"powerbank/backend/services/rentals-service/internal/models"
	"powerbank/backend/services/rentals-service/internal/service"
)

const maxBodyBytes = 64 << 10

// RentService is the subset of the rent service used over HTTP.
type RentService interface {
	Transition(ctx context.Context, in service.TransitionInput) (*service.TransitionResult, error)
	CompleteRenting(ctx context.Context, rentID, endStationID string, endDate time.Time) (*service.TransitionResult, error)
	Status(ctx context.Context, rentID string) (*service.StatusView, error)
	List(ctx context.Context, status string, limit int) ([]models.Rent, error)
}

// RentHandler serves the /rent endpoints.
type RentHandler struct {
	service RentService
	logger  *zap.Logger
}

// NewRentHandler builds handler.
func NewRentHandler(svc RentService, logger *zap.Logger) *RentHandler {
	return &RentHandler{service: svc, logger: logger}
}

type completeRequest struct {
	RentID       string     `json:"rentId"`
	EndStationID string     `json:"endStationId"`
	EndDate      *time.Time `json:"endDate"`
}

type transitionRequest struct {
	RentID       string     `json:"rentId"`
	Status       string     `json:"status"`
	EndStationID *string    `json:"endStationId"`
	EndDate      *time.Time `json:"endDate"`
}

// HandleComplete handles PUT /rent/{rentId}.
func (h *RentHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	rentID := chi.URLParam(r, "rentId")
	var req completeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RentID != "" && req.RentID != rentID {
		writeError(w, http.StatusBadRequest, "rentId does not match path")
		return
	}
	if strings.TrimSpace(req.EndStationID) == "" {
		writeError(w, http.StatusBadRequest, "endStationId required")
		return
	}
	if req.EndDate == nil || req.EndDate.IsZero() {
		writeError(w, http.StatusBadRequest, "endDate required")
		return
	}

	res, err := h.service.CompleteRenting(r.Context(), rentID, req.EndStationID, *req.EndDate)
	if err != nil {
		h.writeServiceError(w, rentID, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleTransition handles PUT /rent/{rentId}/status.
func (h *RentHandler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	rentID := chi.URLParam(r, "rentId")
	var req transitionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RentID != "" && req.RentID != rentID {
		writeError(w, http.StatusBadRequest, "rentId does not match path")
		return
	}
	status, err := service.ParseStatus(req.Status)
	if err != nil {
		h.writeServiceError(w, rentID, err)
		return
	}

	res, err := h.service.Transition(r.Context(), service.TransitionInput{
		RentID:       rentID,
		Status:       status,
		EndStationID: req.EndStationID,
		EndDate:      req.EndDate,
	})
	if err != nil {
		h.writeServiceError(w, rentID, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleStatus handles GET /rent/{rentId}/status.
func (h *RentHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	rentID := chi.URLParam(r, "rentId")
	if q := r.URL.Query().Get("rentId"); q != "" && q != rentID {
		writeError(w, http.StatusBadRequest, "rentId does not match path")
		return
	}
	view, err := h.service.Status(r.Context(), rentID)
	if err != nil {
		h.writeServiceError(w, rentID, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleList handles GET /rents?status=&limit=.
func (h *RentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	rents, err := h.service.List(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		h.writeServiceError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rents": rents})
}

func (h *RentHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func (h *RentHandler) writeServiceError(w http.ResponseWriter, rentID string, err error) {
	var (
		invalidTransition *service.InvalidTransitionError
		invalidStatus     *service.InvalidStatusError
	)
	switch {
	case errors.Is(err, service.ErrRentNotFound):
		writeError(w, http.StatusNotFound, "rent not found")
	case errors.As(err, &invalidTransition):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":              invalidTransition.Error(),
			"currentStatus":      invalidTransition.From,
			"requestedStatus":    invalidTransition.To,
			"allowedTransitions": invalidTransition.Allowed,
		})
	case errors.As(err, &invalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":         invalidStatus.Error(),
			"validStatuses": service.ValidStatuses(),
		})
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "rent was modified concurrently, retry")
	default:
		h.logger.Error("rent request failed", zap.String("rent_id", rentID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
