package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"powerbank/backend/services/stations-service/internal/models"
	"powerbank/backend/services/stations-service/internal/vendors"
)

// BatteryFetcher returns normalized slots for any supported station.
type BatteryFetcher interface {
	FetchBatteries(ctx context.Context, stationID string) ([]models.BatterySlot, error)
}

// ZappPassthrough relays the synchronous vendor's raw station response.
type ZappPassthrough interface {
	Passthrough(ctx context.Context, stationID string) (*vendors.RawResponse, error)
}

// NexyControl exposes the trigger-then-poll vendor's synchronous endpoint.
type NexyControl interface {
	Ack(ctx context.Context, stationID string) (*vendors.RawResponse, error)
	ReleaseSlot(ctx context.Context, stationID string, slotID int) error
}

// NewBatteryStatusHandler returns GET /battery/status?stationId= handler.
func NewBatteryStatusHandler(fetcher BatteryFetcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := strings.TrimSpace(r.URL.Query().Get("stationId"))
		if stationID == "" {
			writeError(w, http.StatusBadRequest, "stationId is required")
			return
		}

		slots, err := fetcher.FetchBatteries(r.Context(), stationID)
		if err != nil {
			logger.Warn("battery status failed",
				zap.String("station_id", stationID),
				zap.String("kind", vendors.ErrorKind(err)),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"batteries": slots})
	}
}

// NewZappStationHandler returns GET /zapp/station/{stationId} handler.
func NewZappStationHandler(zapp ZappPassthrough, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := chi.URLParam(r, "stationId")
		raw, err := zapp.Passthrough(r.Context(), stationID)
		if err != nil {
			logger.Warn("zapp passthrough failed", zap.String("station_id", stationID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeRaw(w, raw.Status, raw.ContentType, raw.Body)
	}
}

// NewNexyStationHandler returns GET /nexy/station/{stationId} handler. It relays the ack only.
func NewNexyStationHandler(nexy NexyControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := chi.URLParam(r, "stationId")
		raw, err := nexy.Ack(r.Context(), stationID)
		if err != nil {
			logger.Warn("nexy ack failed", zap.String("station_id", stationID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeRaw(w, raw.Status, raw.ContentType, raw.Body)
	}
}

// NewSlotReleaseHandler returns POST /nexy/station/{stationId}/slots/{slotId}/release handler.
func NewSlotReleaseHandler(nexy NexyControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := chi.URLParam(r, "stationId")
		if vendors.Resolve(stationID) != vendors.VendorNexy {
			writeError(w, http.StatusBadRequest, "slot release is only supported for NEXY stations")
			return
		}
		slotID, err := strconv.Atoi(chi.URLParam(r, "slotId"))
		if err != nil || slotID <= 0 {
			writeError(w, http.StatusBadRequest, "slotId must be a positive integer")
			return
		}

		if err := nexy.ReleaseSlot(r.Context(), stationID, slotID); err != nil {
			logger.Warn("slot release failed",
				zap.String("station_id", stationID),
				zap.Int("slot_id", slotID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"stationId": stationID,
			"slotId":    slotID,
			"status":    "release requested",
		})
	}
}
