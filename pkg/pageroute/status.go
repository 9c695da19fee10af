package pageroute

import (
	"github.com/vango-dev/pagerouter/pkg/content"
)

// Status is the content-loading state of a route.
type Status int

const (
	Idle          Status = iota // inactive, content cleared
	Loading                     // fetch or render in progress
	Loaded                      // content mounted (or nothing to load)
	LoadingFailed               // fetch or render failed; show the fallback
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadingFailed:
		return "loading-failed"
	default:
		return "unknown"
	}
}

// Target is the surface a route renders on. SetStatus selects which slot
// is visible: the content when Loaded, the loading slot when Loading, the
// fallback when LoadingFailed and the hidden slot when Idle.
type Target interface {
	content.Target
	SetHidden(hidden bool)
	SetStatus(s Status)
}
