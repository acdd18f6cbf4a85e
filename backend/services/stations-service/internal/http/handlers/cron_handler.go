package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/models"
)

// CronSecretSetting names the shared secret protecting the cron endpoints.
const CronSecretSetting = "CRON_SECRET"

// StationChecker runs the monitor.
type StationChecker interface {
	Run(ctx context.Context) (*models.StationCheckResult, error)
	RecheckAll(ctx context.Context) (*models.StationCheckResult, error)
}

// CronHandler serves the scheduled and manual station checks.
type CronHandler struct {
	checker StationChecker
	secret  string
	logger  *zap.Logger
}

// NewCronHandler builds handler set.
func NewCronHandler(checker StationChecker, secret string, logger *zap.Logger) *CronHandler {
	return &CronHandler{checker: checker, secret: secret, logger: logger}
}

// HandleCheckStations handles GET /cron/check-stations.
func (h *CronHandler) HandleCheckStations(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.checker.Run)
}

// HandleRecheckStations handles POST /cron/recheck-stations.
func (h *CronHandler) HandleRecheckStations(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.checker.RecheckAll)
}

func (h *CronHandler) serve(w http.ResponseWriter, r *http.Request, run func(context.Context) (*models.StationCheckResult, error)) {
	if !h.authorize(w, r) {
		return
	}
	result, err := run(r.Context())
	if err != nil {
		h.logger.Error("station check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CronHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	if err := libconfig.Require(CronSecretSetting, h.secret); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(h.secret)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}
