// Package history defines the browser surface the router drives: a
// location, a state object per entry, the document title, push/replace
// writes, traversal, and the popstate/hashchange notifications that follow
// traversal.
//
// Memory is a complete in-process implementation used by tests and by
// headless callers. The bridge package provides one backed by a live
// browser tab.
package history

import (
	"net/url"
	"strings"
)

// State is the opaque key-value object attached to a history entry.
type State map[string]any

// Clone returns a shallow copy of s. A nil State clones to an empty one.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Location is the part of the URL the router reads.
type Location struct {
	// Pathname is the path portion, always starting with "/".
	Pathname string

	// Search is the query string including its leading "?", or "".
	Search string

	// Hash is the fragment including its leading "#", or "".
	Hash string
}

// String returns the location as a same-origin URL reference.
func (l Location) String() string {
	return l.Pathname + l.Search + l.Hash
}

// Resolve resolves ref against l the way a browser resolves the URL
// argument of pushState: "#x" keeps path and search, "?q" keeps the path,
// "/p" replaces everything.
func (l Location) Resolve(ref string) (Location, error) {
	base, err := url.Parse(l.String())
	if err != nil {
		return Location{}, err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return Location{}, err
	}
	return FromURL(base.ResolveReference(u)), nil
}

// FromURL converts a parsed URL into a Location.
func FromURL(u *url.URL) Location {
	loc := Location{Pathname: u.EscapedPath()}
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	if u.RawQuery != "" || u.ForceQuery {
		loc.Search = "?" + u.RawQuery
	}
	if frag := u.EscapedFragment(); frag != "" {
		loc.Hash = "#" + frag
	}
	return loc
}

// ParseLocation parses a same-origin URL reference such as "/a?b=1#c".
func ParseLocation(ref string) (Location, error) {
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return Location{Pathname: "/"}.Resolve(ref)
}

// Event identifies a browser notification delivered to listeners.
type Event string

const (
	// PopState fires after back/forward traversal.
	PopState Event = "popstate"

	// HashChange fires when traversal lands on an entry with a
	// different fragment.
	HashChange Event = "hashchange"
)

// History is the browser history surface.
//
// PushState and ReplaceState resolve url against the current location and
// never emit PopState or HashChange, matching the browser. Back and
// Forward move through the stack and emit the notifications.
type History interface {
	Location() Location
	State() State
	Title() string
	SetTitle(title string)

	PushState(state State, title, url string) error
	ReplaceState(state State, title, url string) error
	Back()
	Forward()

	// Listen registers fn for PopState and HashChange. The returned
	// function removes it.
	Listen(fn func(Event)) (unlisten func())

	// Dispatch publishes a named notification (e.g. "router:change") to
	// observers that are not router subscribers.
	Dispatch(name string, detail any)
}
