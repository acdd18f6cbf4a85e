package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/cachebridge"
	"powerbank/backend/services/stations-service/internal/vendors"
)

const maxPushBody = 1 << 20

// TelemetryIngestor stores vendor-pushed telemetry.
type TelemetryIngestor interface {
	Ingest(ctx context.Context, stationID string, payload []byte) error
}

// NewNexyCallbackHandler returns POST /nexy/callback/{stationId} handler, the HTTP form of the
// vendor's asynchronous push. Pushes must carry the shared push token as a bearer token.
func NewNexyCallbackHandler(ingestor TelemetryIngestor, pushToken string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := chi.URLParam(r, "stationId")
		if err := vendors.AuthorizePush(r, pushToken); err != nil {
			if libconfig.IsConfigurationError(err) {
				logger.Error("telemetry push refused", zap.String("station_id", stationID), zap.Error(err))
			}
			writeError(w, vendors.PushAuthStatus(err), err.Error())
			return
		}
		if vendors.Resolve(stationID) != vendors.VendorNexy {
			writeError(w, http.StatusBadRequest, "station does not push telemetry")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPushBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}

		if err := ingestor.Ingest(r.Context(), stationID, body); err != nil {
			var unavailable *cachebridge.UnavailableError
			if errors.As(err, &unavailable) || libconfig.IsConfigurationError(err) {
				logger.Error("telemetry push not stored", zap.String("station_id", stationID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"code": 200, "msg": "ok"})
	}
}
