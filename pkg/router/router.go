package router

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/pagerouter/pkg/history"
)

const tracerName = "github.com/vango-dev/pagerouter/pkg/router"

// Router is a routing context: registry, guards, subscribers and mode
// bound to one History. It is safe for concurrent use.
type Router struct {
	history  history.History
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
	schedule func(func())

	mu        sync.RWMutex
	mode      Mode
	routes    routeTable
	guards    guardSet
	listeners []*subscription

	// snapMu pairs each location read with its sequence number.
	snapMu sync.Mutex
	seq    uint64

	pendingBroadcast atomic.Bool
	unlisten         func()
	closeOnce        sync.Once
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for guard failures, redirect loops and
// listener panics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMode sets the initial routing mode. Defaults to ModeHistory.
func WithMode(mode Mode) Option {
	return func(r *Router) {
		if mode.valid() {
			r.mode = mode
		}
	}
}

// WithObserver sets the observer notified of navigations and broadcasts.
func WithObserver(o Observer) Option {
	return func(r *Router) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithTracerProvider sets the provider for navigation spans. Defaults to
// the global otel provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Router) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithScheduler sets how deferred broadcasts (after RegisterRoute) are
// run. The default starts a goroutine. The scheduler must not run fn
// synchronously.
func WithScheduler(schedule func(fn func())) Option {
	return func(r *Router) {
		if schedule != nil {
			r.schedule = schedule
		}
	}
}

// New creates a Router over h and starts listening for its popstate and
// hashchange notifications. Call Close to stop listening.
func New(h history.History, opts ...Option) *Router {
	r := &Router{
		history:  h,
		logger:   slog.Default(),
		observer: nopObserver{},
		tracer:   otel.Tracer(tracerName),
		schedule: func(fn func()) { go fn() },
		mode:     ModeHistory,
		routes:   newRouteTable(),
		guards:   newGuardSet(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.unlisten = h.Listen(r.handleHistoryEvent)
	return r
}

// History returns the History the router drives.
func (r *Router) History() history.History {
	return r.history
}

// Logger returns the router's logger.
func (r *Router) Logger() *slog.Logger {
	return r.logger
}

// Close detaches the router from its History. Subscribers stay
// registered but no longer receive popstate or hashchange broadcasts.
func (r *Router) Close() {
	r.closeOnce.Do(func() {
		if r.unlisten != nil {
			r.unlisten()
		}
	})
}

func (r *Router) handleHistoryEvent(e history.Event) {
	switch e {
	case history.PopState:
		r.broadcast()
	case history.HashChange:
		if r.RoutingMode() == ModeHash {
			r.broadcast()
		}
	}
}

// Title returns the document title.
func (r *Router) Title() string {
	return r.history.Title()
}

// SetTitle sets the document title when it differs from the current one.
func (r *Router) SetTitle(title string) {
	if title != r.history.Title() {
		r.history.SetTitle(title)
	}
}
