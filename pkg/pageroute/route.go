package pageroute

import (
	"log/slog"
	"strings"

	"github.com/vango-dev/pagerouter/pkg/content"
	"github.com/vango-dev/pagerouter/pkg/router"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// Options configures a Route.
type Options struct {
	// Path is the route template relative to Parent. It may carry a
	// query ("/list?view=grid"), which must then match literally.
	Path string

	// Prefix makes the route match nested paths as well.
	Prefix bool

	// Src names the content to load (see content.Loader).
	Src string

	// Component is content to show instead of loading Src.
	Component content.Content

	// Title becomes the document title while the route is active.
	Title string

	// Meta is registered with the route, along with Title under "title".
	Meta router.Meta

	// Parent is the enclosing route, if any.
	Parent *Route

	// Logger receives load and render failures. Defaults to the
	// router's logger.
	Logger *slog.Logger
}

// Route shows content while the current location matches its full path.
type Route struct {
	machine

	opts        Options
	pattern     *routepath.Pattern
	search      string
	unsubscribe func()
}

// New creates a route. A nil loader gets a private Loader.
func New(r *router.Router, loader *content.Loader, target Target, opts Options) *Route {
	rt := &Route{opts: opts}
	rt.machine.init(r, loader, target, opts.Logger, opts.Src, opts.Component)
	return rt
}

// FullPath is the parent's full path joined with Path.
func (rt *Route) FullPath() string {
	if rt.opts.Parent == nil {
		if rt.opts.Path == "" {
			return "/"
		}
		return rt.opts.Path
	}
	return joinPath(rt.opts.Parent.FullPath(), rt.opts.Path)
}

// Exact reports whether the route must match the whole path.
func (rt *Route) Exact() bool {
	return !rt.opts.Prefix
}

// Mount registers the route (and "/") and starts following navigation.
func (rt *Route) Mount() error {
	full := rt.FullPath()
	pattern, err := routepath.Compile(full, rt.Exact())
	if err != nil {
		return err
	}
	pathname, search := routepath.SplitPathAndQuery(full)

	rt.pattern = pattern
	rt.search = search

	rt.router.RegisterRoute("/")
	routeOpts := []router.RouteOption{router.Exact(rt.Exact())}
	if meta := rt.meta(); meta != nil {
		routeOpts = append(routeOpts, router.WithMeta(meta))
	}
	rt.router.RegisterRoute(pathname, routeOpts...)

	rt.start()
	rt.unsubscribe = rt.router.Subscribe(rt.handleChange)
	return nil
}

func (rt *Route) meta() router.Meta {
	if rt.opts.Meta == nil && rt.opts.Title == "" {
		return nil
	}
	meta := make(router.Meta, len(rt.opts.Meta)+1)
	for k, v := range rt.opts.Meta {
		meta[k] = v
	}
	if rt.opts.Title != "" {
		meta["title"] = rt.opts.Title
	}
	return meta
}

// Unmount stops following navigation, drops any pending load and clears
// the content.
func (rt *Route) Unmount() {
	if rt.unsubscribe != nil {
		rt.unsubscribe()
	}
	rt.stop()
}

func (rt *Route) handleChange(snap router.Snapshot) {
	path := snap.Pathname
	if rt.search != "" {
		path += snap.Search
	}

	params, ok := rt.pattern.Match(path)
	if !ok {
		rt.deactivate()
		rt.target.SetHidden(true)
		return
	}

	rt.activate(params, snap)
	if rt.opts.Title != "" {
		rt.router.SetTitle(rt.opts.Title)
	}
	rt.target.SetHidden(false)
}

// joinPath appends a child path to a parent's full path.
func joinPath(parent, child string) string {
	parent, _ = routepath.SplitPathAndQuery(parent)
	if child == "" {
		return parent
	}
	if !strings.HasPrefix(child, "/") {
		child = "/" + child
	}
	return strings.TrimSuffix(parent, "/") + child
}
