package bridge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	rerrors "github.com/vango-dev/pagerouter/internal/errors"
	"github.com/vango-dev/pagerouter/pkg/history"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// ErrClosed is returned when sending on a closed connection.
var ErrClosed = errors.New("bridge: connection closed")

// Conn is one connected browser tab.
type Conn struct {
	id      string
	ws      *websocket.Conn
	config  *Config
	logger  *slog.Logger
	history *History

	writeMu sync.Mutex

	mu      sync.Mutex
	onClick func(href string)
	onClose []func()

	closed    atomic.Bool
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, config *Config, logger *slog.Logger) *Conn {
	id := uuid.NewString()
	return &Conn{
		id:     id,
		ws:     ws,
		config: config,
		logger: logger.With("conn_id", id),
	}
}

// ID returns the connection's unique ID.
func (c *Conn) ID() string {
	return c.id
}

// History returns the tab's history.
func (c *Conn) History() *History {
	return c.history
}

// Logger returns the connection-scoped logger.
func (c *Conn) Logger() *slog.Logger {
	return c.logger
}

// Target returns a render target for the browser element with the given
// id.
func (c *Conn) Target(id string) *Target {
	return &Target{conn: c, id: id}
}

// OnClick sets the handler for intercepted link clicks. Hrefs that are
// not same-origin paths are rejected before it is called.
func (c *Conn) OnClick(fn func(href string)) {
	c.mu.Lock()
	c.onClick = fn
	c.mu.Unlock()
}

// OnClose registers fn to run when the connection closes. Functions run
// in reverse registration order.
func (c *Conn) OnClose(fn func()) {
	c.mu.Lock()
	c.onClose = append(c.onClose, fn)
	c.mu.Unlock()
}

// IsClosed reports whether the connection is closed.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Close closes the connection and runs the OnClose functions.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		c.writeMu.Lock()
		c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.writeMu.Unlock()
		c.ws.Close()

		c.mu.Lock()
		fns := c.onClose
		c.onClose = nil
		c.mu.Unlock()
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}

		c.logger.Info("bridge connection closed")
	})
}

func (c *Conn) send(msg Message) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.config.WriteTimeout > 0 {
		c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	return c.ws.WriteJSON(msg)
}

// handshake reads the hello message and builds the History from it.
func (c *Conn) handshake() error {
	if c.config.HandshakeTimeout > 0 {
		c.ws.SetReadDeadline(time.Now().Add(c.config.HandshakeTimeout))
	}

	msg, err := c.read()
	if err != nil {
		return err
	}
	if msg.Type != TypeHello {
		return rerrors.New("R009").WithDetailf("expected %q, got %q", TypeHello, msg.Type)
	}

	loc, err := parseLocation(msg.Location)
	if err != nil {
		return err
	}
	c.history = newHistory(c, loc, msg.Title)
	return nil
}

func (c *Conn) read() (Message, error) {
	var msg Message
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, rerrors.New("R009").Wrap(err)
	}
	return msg, nil
}

// readLoop processes browser messages until the connection fails.
func (c *Conn) readLoop() {
	defer c.Close()

	for {
		if c.config.ReadTimeout > 0 {
			c.ws.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		} else {
			c.ws.SetReadDeadline(time.Time{})
		}

		msg, err := c.read()
		if err != nil {
			var re *rerrors.RouterError
			if errors.As(err, &re) {
				c.reject(re)
				continue
			}
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}

		c.handle(msg)
	}
}

func (c *Conn) handle(msg Message) {
	switch msg.Type {
	case TypePopState, TypeHashChange:
		loc, err := parseLocation(msg.Location)
		if err != nil {
			c.reject(rerrors.FromError(err, "R009"))
			return
		}
		event := history.PopState
		if msg.Type == TypeHashChange {
			event = history.HashChange
		}
		c.history.receive(event, loc, msg.State)

	case TypeClick:
		if err := routepath.ValidateNavPath(msg.Href); err != nil {
			c.reject(rerrors.New("R009").WithDetailf("click href %q", msg.Href).Wrap(err))
			return
		}
		c.mu.Lock()
		fn := c.onClick
		c.mu.Unlock()
		if fn != nil {
			fn(msg.Href)
		}

	default:
		c.reject(rerrors.New("R009").WithDetailf("unknown message type %q", msg.Type))
	}
}

// reject logs a protocol error and reports it to the browser.
func (c *Conn) reject(err *rerrors.RouterError) {
	c.logger.Warn("bridge protocol error", "error", err)
	if sendErr := c.send(Message{Type: TypeError, Code: err.Code, Error: err.Error()}); sendErr != nil {
		c.logger.Debug("send error failed", "error", sendErr)
	}
}

// parseLocation validates a browser-reported URL and converts it.
func parseLocation(raw string) (history.Location, error) {
	if raw == "" {
		raw = "/"
	}
	if err := routepath.ValidateNavPath(raw); err != nil {
		return history.Location{}, rerrors.New("R009").WithDetailf("location %q", raw).Wrap(err)
	}
	return history.ParseLocation(raw)
}
