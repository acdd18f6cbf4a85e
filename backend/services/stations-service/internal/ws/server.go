// Package ws accepts vendor telemetry pushed over a websocket and feeds it to the cache.
package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"powerbank/backend/services/stations-service/internal/vendors"
)

// Server upgrades station push connections.
type Server struct {
	manager      *Manager
	ingestor     Ingestor
	pushToken    string
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server. Stations authenticate the handshake with pushToken as a bearer token.
func NewServer(manager *Manager, ingestor Ingestor, pushToken string, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		manager:      manager,
		ingestor:     ingestor,
		pushToken:    pushToken,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// HandleWS serves GET /nexy/ws?station_id=.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	stationID := strings.TrimSpace(r.URL.Query().Get("station_id"))
	if stationID == "" {
		http.Error(w, "station_id is required", http.StatusBadRequest)
		return
	}
	if vendors.Resolve(stationID) != vendors.VendorNexy {
		http.Error(w, "station does not push telemetry", http.StatusBadRequest)
		return
	}
	if err := vendors.AuthorizePush(r, s.pushToken); err != nil {
		s.logger.Warn("station push channel refused", zap.String("station_id", stationID), zap.Error(err))
		http.Error(w, err.Error(), vendors.PushAuthStatus(err))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("station_id", stationID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	connection := newConnection(stationID, conn, s.ingestor, s.writeTimeout, s.logger, func(c *Connection) {
		s.manager.Remove(c)
		cancel()
		s.logger.Info("station push channel closed",
			zap.String("station_id", c.StationID()),
			zap.Int("connections", s.manager.Count()),
		)
	})
	s.manager.Add(connection)

	go connection.Start(ctx)
	s.logger.Info("station push channel opened",
		zap.String("station_id", stationID),
		zap.Int("connections", s.manager.Count()),
	)
}
