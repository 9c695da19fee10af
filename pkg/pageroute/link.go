package pageroute

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/vango-dev/pagerouter/pkg/router"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// LinkOptions configures a Link.
type LinkOptions struct {
	// Path is the destination. Empty means the current path. A leading
	// "$" stands for the parent's full path with its params filled from
	// the current location; a leading "~" stands for the current path.
	Path string

	// Search is merged into the destination query.
	Search string

	// KeepCurrentSearch copies the current query into the destination
	// before Search is applied.
	KeepCurrentSearch bool

	// Prefix makes the link active on nested paths as well.
	Prefix bool

	// Title and Payload are passed to the navigation.
	Title   string
	Payload map[string]any

	// Parent resolves "$" paths.
	Parent *Route

	// OnActive is called when the link becomes active or inactive.
	OnActive func(active bool)
}

// Link navigates to a path and tracks whether that path is the current
// page.
type Link struct {
	router *router.Router
	opts   LinkOptions

	mu          sync.Mutex
	active      bool
	unsubscribe func()
}

// NewLink creates a link.
func NewLink(r *router.Router, opts LinkOptions) *Link {
	return &Link{router: r, opts: opts}
}

func (l *Link) parentFullPath() string {
	if l.opts.Parent == nil {
		return "/"
	}
	return l.opts.Parent.FullPath()
}

// Target resolves the destination path and query, unformatted for the
// routing mode.
func (l *Link) Target() string {
	path := l.opts.Path
	current := l.router.CurrentPathname()

	switch {
	case path == "":
		path = current
	case strings.HasPrefix(path, "$"):
		path = routepath.Clean(joinPath(l.router.ParsePathname(l.parentFullPath()), path[1:]))
	case strings.HasPrefix(path, "~"):
		path = routepath.Clean(joinPath(current, path[1:]))
	}

	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	query := routepath.ParseSearch(u.RawQuery)

	if l.opts.KeepCurrentSearch {
		query = mergeQuery(query, routepath.ParseSearch(l.router.CurrentSearch()))
	}
	if l.opts.Search != "" {
		query = mergeQuery(query, routepath.ParseSearch(l.opts.Search))
	}

	out := u.EscapedPath()
	if out == "" {
		out = "/"
	}
	if len(query) > 0 {
		out += "?" + query.Encode()
	}
	return out
}

// mergeQuery sets every pair of src on dst in order, so for repeated
// keys the last value wins.
func mergeQuery(dst, src routepath.SearchParams) routepath.SearchParams {
	for _, kv := range src {
		dst = dst.Set(kv.Key, kv.Value)
	}
	return dst
}

// Href is Target formatted for the routing mode ("#/path" in hash mode).
func (l *Link) Href() string {
	pathname, search := routepath.SplitPathAndQuery(l.Target())
	return l.router.ExternalPath(pathname, search)
}

// Click navigates to Target.
func (l *Link) Click(ctx context.Context) error {
	opts := []router.NavigateOption{router.WithState(l.opts.Payload)}
	if l.opts.Title != "" {
		opts = append(opts, router.WithTitle(l.opts.Title))
	}
	return l.router.GoToPage(ctx, l.Target(), opts...)
}

// Active reports whether the link points at the current page.
func (l *Link) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Mount starts tracking the active state.
func (l *Link) Mount() {
	l.unsubscribe = l.router.Subscribe(l.handleChange)
}

// Unmount stops tracking the active state.
func (l *Link) Unmount() {
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
}

func (l *Link) handleChange(router.Snapshot) {
	active := l.router.IsOnPage(l.Target(), !l.opts.Prefix)

	l.mu.Lock()
	changed := active != l.active
	l.active = active
	l.mu.Unlock()

	if changed && l.opts.OnActive != nil {
		l.opts.OnActive(active)
	}
}
