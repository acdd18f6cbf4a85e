package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	libconfig "powerbank/backend/libs/config"
	"powerbank/backend/services/stations-service/internal/cachebridge"
)

const (
	readLimit    = 1 << 20
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 16
)

// Ingestor stores one telemetry push for a station.
type Ingestor interface {
	Ingest(ctx context.Context, stationID string, payload []byte) error
}

// ack mirrors the vendor's own acknowledgement shape.
type ack struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
}

// Connection is one station's push channel.
type Connection struct {
	stationID    string
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	ingestor     Ingestor
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(*Connection)
}

func newConnection(stationID string, conn *websocket.Conn, ingestor Ingestor, writeTimeout time.Duration, logger *zap.Logger, onClose func(*Connection)) *Connection {
	return &Connection{
		stationID:    stationID,
		ws:           conn,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		ingestor:     ingestor,
		writeTimeout: writeTimeout,
		logger:       logger.With(zap.String("station_id", stationID)),
		onClose:      onClose,
	}
}

// StationID returns identifier.
func (c *Connection) StationID() string {
	return c.stationID
}

// Start runs the pumps until the socket closes or ctx ends.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Connection) readPump(ctx context.Context) {
	defer c.Close()
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("push channel read failed", zap.Error(err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		out, _ := json.Marshal(c.ingest(ctx, message))
		c.Send(out)
	}
}

func (c *Connection) ingest(ctx context.Context, message []byte) ack {
	err := c.ingestor.Ingest(ctx, c.stationID, message)
	if err == nil {
		return ack{Code: 200}
	}
	var unavailable *cachebridge.UnavailableError
	if errors.As(err, &unavailable) || libconfig.IsConfigurationError(err) {
		c.logger.Error("push not stored", zap.Error(err))
		return ack{Code: 500, Msg: err.Error()}
	}
	c.logger.Warn("push rejected", zap.Error(err))
	return ack{Code: 400, Msg: err.Error()}
}

func (c *Connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Close()
			return
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Send enqueues a message. It never blocks and is a no-op after Close.
func (c *Connection) Send(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping outgoing message, buffer full")
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

// Close tears the connection down once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}
