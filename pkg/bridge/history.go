package bridge

import (
	"sync"

	"github.com/vango-dev/pagerouter/pkg/history"
)

// History is a history.History mirroring one browser tab. Writes update
// the mirror and are sent to the browser; traversal is requested from the
// browser, whose popstate report updates the mirror and notifies
// listeners.
type History struct {
	conn *Conn

	mu        sync.Mutex
	loc       history.Location
	state     history.State
	title     string
	listeners []*listener
}

type listener struct{ fn func(history.Event) }

func newHistory(conn *Conn, loc history.Location, title string) *History {
	return &History{conn: conn, loc: loc, title: title}
}

// Location implements history.History.
func (h *History) Location() history.Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loc
}

// State implements history.History.
func (h *History) State() history.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Title implements history.History.
func (h *History) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title
}

// SetTitle implements history.History.
func (h *History) SetTitle(title string) {
	h.mu.Lock()
	h.title = title
	h.mu.Unlock()

	if err := h.conn.send(Message{Type: TypeTitle, Title: title}); err != nil {
		h.conn.logger.Debug("send title failed", "error", err)
	}
}

// PushState implements history.History.
func (h *History) PushState(state history.State, title, url string) error {
	return h.write(TypePush, state, title, url)
}

// ReplaceState implements history.History.
func (h *History) ReplaceState(state history.State, title, url string) error {
	return h.write(TypeReplace, state, title, url)
}

func (h *History) write(kind string, state history.State, title, url string) error {
	h.mu.Lock()
	loc, err := h.loc.Resolve(url)
	h.mu.Unlock()
	if err != nil {
		return err
	}

	if err := h.conn.send(Message{Type: kind, URL: loc.String(), State: state, Title: title}); err != nil {
		return err
	}

	h.mu.Lock()
	h.loc = loc
	h.state = state
	h.mu.Unlock()
	return nil
}

// Back implements history.History.
func (h *History) Back() { h.traverse(-1) }

// Forward implements history.History.
func (h *History) Forward() { h.traverse(1) }

func (h *History) traverse(delta int) {
	if err := h.conn.send(Message{Type: TypeGo, Delta: delta}); err != nil {
		h.conn.logger.Debug("send traversal failed", "error", err)
	}
}

// Listen implements history.History.
func (h *History) Listen(fn func(history.Event)) func() {
	l := &listener{fn: fn}
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, existing := range h.listeners {
				if existing == l {
					h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Dispatch implements history.History by forwarding the notification to
// the browser, which re-dispatches it as a DOM event.
func (h *History) Dispatch(name string, detail any) {
	if err := h.conn.send(Message{Type: TypeDispatch, Name: name, Detail: detail}); err != nil {
		h.conn.logger.Debug("send dispatch failed", "name", name, "error", err)
	}
}

// receive applies a browser-reported traversal or fragment change and
// notifies listeners outside the lock.
func (h *History) receive(event history.Event, loc history.Location, state history.State) {
	h.mu.Lock()
	hashChanged := loc.Hash != h.loc.Hash
	h.loc = loc
	if event == history.PopState {
		h.state = state
	}
	listeners := append([]*listener(nil), h.listeners...)
	h.mu.Unlock()

	emit := func(e history.Event) {
		for _, l := range listeners {
			l.fn(e)
		}
	}

	switch event {
	case history.PopState:
		emit(history.PopState)
		if hashChanged {
			emit(history.HashChange)
		}
	case history.HashChange:
		if hashChanged {
			emit(history.HashChange)
		}
	}
}

var _ history.History = (*History)(nil)
