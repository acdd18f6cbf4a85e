package vendors

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	libconfig "powerbank/backend/libs/config"
)

// NexyPushTokenSetting is the shared secret stations present when pushing telemetry.
const NexyPushTokenSetting = "NEXY_PUSH_TOKEN"

// ErrPushUnauthorized means a push carried no token or the wrong one.
var ErrPushUnauthorized = errors.New("unauthorized")

// AuthorizePush checks the bearer token of a telemetry push against secret.
// An empty secret is a configuration error, never an open door.
func AuthorizePush(r *http.Request, secret string) error {
	if err := libconfig.Require(NexyPushTokenSetting, secret); err != nil {
		return err
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(secret)) != 1 {
		return ErrPushUnauthorized
	}
	return nil
}

// PushAuthStatus maps an AuthorizePush error to its HTTP status.
func PushAuthStatus(err error) int {
	if libconfig.IsConfigurationError(err) {
		return http.StatusInternalServerError
	}
	return http.StatusUnauthorized
}
