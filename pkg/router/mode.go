package router

import (
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// Mode selects where the routed path lives.
type Mode string

const (
	// ModeHistory routes on the real pathname and search.
	ModeHistory Mode = "history"

	// ModeHash routes on the fragment, formatted "#/path?query".
	ModeHash Mode = "hash"
)

func (m Mode) valid() bool {
	return m == ModeHistory || m == ModeHash
}

// ParseMode parses "history" or "hash".
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.valid() {
		return "", ErrInvalidMode
	}
	return m, nil
}

// SetRoutingMode switches the routing mode and rebroadcasts immediately
// so subscribers re-resolve against the new mode's location.
func (r *Router) SetRoutingMode(mode Mode) error {
	if !mode.valid() {
		return ErrInvalidMode
	}

	r.mu.Lock()
	r.mode = mode
	r.mu.Unlock()

	r.broadcast()
	return nil
}

// RoutingMode returns the current routing mode.
func (r *Router) RoutingMode() Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// CurrentPathname returns the routed pathname, normalized.
func (r *Router) CurrentPathname() string {
	loc := r.history.Location()
	if r.RoutingMode() == ModeHash {
		return routepath.HashPathname(loc.Hash)
	}
	return routepath.CleanPathname(loc.Pathname)
}

// CurrentSearch returns the routed search string with its leading "?",
// or "".
func (r *Router) CurrentSearch() string {
	loc := r.history.Location()
	if r.RoutingMode() == ModeHash {
		return routepath.HashSearch(loc.Hash)
	}
	return loc.Search
}

// ExternalPath formats pathname and search (with or without its leading
// "?") as the URL written to history in the current mode.
func (r *Router) ExternalPath(pathname, search string) string {
	if search != "" && search[0] != '?' {
		search = "?" + search
	}
	if search == "?" {
		search = ""
	}
	return r.externalURL(pathname + search)
}

func (r *Router) externalURL(path string) string {
	if r.RoutingMode() == ModeHash {
		return routepath.PathToHash(path)
	}
	return path
}
