package vendors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/cachebridge"
)

// ErrUnsupportedStation means the station id carries no known vendor prefix.
var ErrUnsupportedStation = errors.New("unsupported station id format")

// ProtocolError is a vendor-side failure: bad status, negative ack or unreadable payload.
type ProtocolError struct {
	Status  int
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("vendor protocol error: %s", e.Message)
	}
	return fmt.Sprintf("vendor protocol error (status %d): %s", e.Status, e.Message)
}

// TimeoutError means the vendor produced no response.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("vendor timeout: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func unsupported(stationID string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedStation, stationID)
}

// Error kinds reported per station by the monitor.
const (
	KindTimeout            = "timeout"
	KindProtocol           = "protocol"
	KindCacheMiss          = "cache_miss"
	KindCacheUnavailable   = "cache_unavailable"
	KindConfiguration      = "configuration"
	KindUnsupportedStation = "unsupported_station"
	KindUnknown            = "unknown"
)

// ErrorKind classifies an adapter error.
func ErrorKind(err error) string {
	var (
		protoErr   *ProtocolError
		timeoutErr *TimeoutError
		unavailErr *cachebridge.UnavailableError
	)
	switch {
	case errors.Is(err, ErrUnsupportedStation):
		return KindUnsupportedStation
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &protoErr):
		return KindProtocol
	case errors.Is(err, cachebridge.ErrCacheMiss):
		return KindCacheMiss
	case errors.As(err, &unavailErr):
		return KindCacheUnavailable
	case libconfig.IsConfigurationError(err):
		return KindConfiguration
	default:
		return KindUnknown
	}
}

const maxMessageLen = 200

// responseMessage extracts a readable message from a vendor error body.
func responseMessage(status int, body []byte) string {
	var doc struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &doc) == nil {
		for _, m := range []string{doc.Message, doc.Msg, doc.Error} {
			if m != "" {
				return m
			}
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen]
	}
	return text
}
