package bridge

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Config configures a Handler.
type Config struct {
	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// HandshakeTimeout bounds the wait for the browser's hello.
	// Default: 10s.
	HandshakeTimeout time.Duration

	// ReadTimeout closes connections idle for longer. Zero disables it.
	ReadTimeout time.Duration

	// WriteTimeout bounds each write. Default: 10s.
	WriteTimeout time.Duration

	// CheckOrigin validates the upgrade request origin. Nil uses the
	// gorilla/websocket same-origin check.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// ConnectFunc sets up a connection after its handshake, typically by
// creating a router on c.History() and mounting route elements on
// c.Target(id). A returned error closes the connection.
type ConnectFunc func(c *Conn) error

// Handler upgrades requests to bridge connections.
type Handler struct {
	config   *Config
	upgrader websocket.Upgrader
	connect  ConnectFunc
	logger   *slog.Logger
	active   atomic.Int64
}

// NewHandler creates a Handler. A nil config uses DefaultConfig; a nil
// logger uses slog.Default().
func NewHandler(config *Config, connect ConnectFunc, logger *slog.Logger) *Handler {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	} else {
		c := *config
		if c.ReadBufferSize == 0 {
			c.ReadBufferSize = defaults.ReadBufferSize
		}
		if c.WriteBufferSize == 0 {
			c.WriteBufferSize = defaults.WriteBufferSize
		}
		if c.HandshakeTimeout == 0 {
			c.HandshakeTimeout = defaults.HandshakeTimeout
		}
		if c.WriteTimeout == 0 {
			c.WriteTimeout = defaults.WriteTimeout
		}
		config = &c
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		connect: connect,
		logger:  logger.With("component", "bridge"),
	}
}

// Connections returns the number of open connections.
func (h *Handler) Connections() int {
	return int(h.active.Load())
}

// ServeHTTP upgrades the request and serves the connection until it
// closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "error", err)
		return
	}

	c := newConn(ws, h.config, h.logger)
	if err := c.handshake(); err != nil {
		c.logger.Warn("bridge handshake failed", "error", err)
		c.Close()
		return
	}

	h.active.Add(1)
	defer h.active.Add(-1)

	if h.connect != nil {
		if err := h.connect(c); err != nil {
			c.logger.Error("bridge connect failed", "error", err)
			c.Close()
			return
		}
	}

	c.logger.Info("bridge connection opened", "location", c.history.Location().String())
	c.readLoop()
}
