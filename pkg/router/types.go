package router

import (
	"time"

	"github.com/vango-dev/pagerouter/pkg/history"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// State is the key-value object attached to the current history entry.
type State = history.State

// Params are the parameters captured from the current path.
type Params = routepath.Params

// Query is the decoded view of the current search string. Values that
// parse as JSON are decoded (numbers become float64, objects
// map[string]any); other values stay strings; empty values are nil.
type Query map[string]any

// Meta is open route metadata.
type Meta map[string]any

// Snapshot is what subscribers receive on every broadcast.
type Snapshot struct {
	// Pathname is the routed pathname, normalized.
	Pathname string

	// Search is the routed search string with its leading "?", or "".
	Search string

	// Query is Search decoded.
	Query Query

	// State is the state of the current history entry.
	State State

	// Seq orders snapshots of one router: a snapshot read later has a
	// larger Seq.
	Seq uint64
}

// Listener receives path-change snapshots.
type Listener func(Snapshot)

// ChangeEvent is the name of the notification dispatched through
// History.Dispatch after every broadcast. Its detail is the Snapshot.
const ChangeEvent = "router:change"

// RegisteredRoute is an entry of the route registry.
type RegisteredRoute struct {
	// Pathname is the normalized route template.
	Pathname string

	// Exact records whether the route was registered as exact.
	Exact bool

	// Meta is the route metadata, if any.
	Meta Meta
}

// Outcome describes how a navigation ended.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeBlocked   Outcome = "blocked"
	OutcomeLoop      Outcome = "loop"
	OutcomeCanceled  Outcome = "canceled"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeFailed    Outcome = "failed"
)

// NavigationEvent reports a finished GoToPage or ReplacePage call.
type NavigationEvent struct {
	// Replace is true for ReplacePage.
	Replace bool

	// Target is the path the caller asked for.
	Target string

	// Final is the path committed (or last evaluated) after redirects.
	Final string

	// Redirects counts the guard redirects followed.
	Redirects int

	Outcome  Outcome
	Duration time.Duration
}

// Observer receives router events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	ObserveNavigation(NavigationEvent)
	ObserveBroadcast(listeners int)

	// ObserveSubscribers reports +1 on Subscribe and -1 on unsubscribe.
	ObserveSubscribers(delta int)
}

type nopObserver struct{}

func (nopObserver) ObserveNavigation(NavigationEvent) {}
func (nopObserver) ObserveBroadcast(int)              {}
func (nopObserver) ObserveSubscribers(int)            {}
