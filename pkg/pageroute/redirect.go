package pageroute

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/vango-dev/pagerouter/pkg/router"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// RedirectType selects when a Redirect fires.
type RedirectType string

const (
	// RedirectUnknown fires on paths under the parent that match no
	// registered route.
	RedirectUnknown RedirectType = "unknown"

	// RedirectAlways fires when the location is exactly the parent path.
	RedirectAlways RedirectType = "always"
)

// RedirectOptions configures a Redirect.
type RedirectOptions struct {
	// Path is the destination, resolved like LinkOptions.Path.
	Path string

	// Type defaults to RedirectUnknown.
	Type RedirectType

	Title   string
	Payload map[string]any
	Parent  *Route
	Logger  *slog.Logger
}

// Redirect replaces unknown or bare parent locations with Path.
type Redirect struct {
	router *router.Router
	link   *Link
	opts   RedirectOptions
	logger *slog.Logger

	mu          sync.Mutex
	redirecting string
	unsubscribe func()
}

// NewRedirect creates a redirect.
func NewRedirect(r *router.Router, opts RedirectOptions) *Redirect {
	if opts.Type == "" {
		opts.Type = RedirectUnknown
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger()
	}
	return &Redirect{
		router: r,
		link: NewLink(r, LinkOptions{
			Path:    opts.Path,
			Title:   opts.Title,
			Payload: opts.Payload,
			Parent:  opts.Parent,
		}),
		opts:   opts,
		logger: logger,
	}
}

// Mount starts watching navigation.
func (rd *Redirect) Mount() {
	rd.unsubscribe = rd.router.Subscribe(rd.handleChange)
}

// Unmount stops watching navigation.
func (rd *Redirect) Unmount() {
	if rd.unsubscribe != nil {
		rd.unsubscribe()
	}
}

func (rd *Redirect) handleChange(snap router.Snapshot) {
	pathname := snap.Pathname

	parent := "/"
	if rd.opts.Parent != nil {
		parent, _ = routepath.SplitPathAndQuery(rd.opts.Parent.FullPath())
		parent = routepath.CleanPathname(parent)
	}
	if !underPath(pathname, parent) {
		return
	}

	switch rd.opts.Type {
	case RedirectAlways:
		if pathname+snap.Search != parent {
			return
		}
	default:
		if rd.router.IsRegistered(pathname) {
			return
		}
	}

	rd.mu.Lock()
	if rd.redirecting == pathname {
		rd.mu.Unlock()
		return
	}
	rd.redirecting = pathname
	rd.mu.Unlock()

	err := rd.link.Click(context.Background())

	rd.mu.Lock()
	rd.redirecting = ""
	rd.mu.Unlock()

	if err != nil {
		rd.logger.Error("redirect failed", "from", pathname, "to", rd.link.Target(), "error", err)
	}
}

// underPath reports whether pathname is base or nested below it.
func underPath(pathname, base string) bool {
	if base == "/" {
		return true
	}
	return pathname == base || strings.HasPrefix(pathname, base+"/")
}
