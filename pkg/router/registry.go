package router

import (
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// RouteOption configures route registration.
type RouteOption func(*routeOptions)

type routeOptions struct {
	exact bool
	meta  Meta
}

// Exact sets whether the route must match the whole path. Routes are
// exact unless registered with Exact(false).
func Exact(exact bool) RouteOption {
	return func(o *routeOptions) {
		o.exact = exact
	}
}

// WithMeta attaches metadata to the route. Registering the same template
// again with new metadata replaces it; registering without metadata keeps
// what was there.
func WithMeta(meta Meta) RouteOption {
	return func(o *routeOptions) {
		o.meta = meta
	}
}

type routeEntry struct {
	route   RegisteredRoute
	pattern *routepath.Pattern
}

// routeTable is an insertion-ordered map from template to route.
type routeTable struct {
	order   []string
	entries map[string]*routeEntry
}

func newRouteTable() routeTable {
	return routeTable{entries: make(map[string]*routeEntry)}
}

func (t *routeTable) set(template string, opts routeOptions) {
	if e, ok := t.entries[template]; ok {
		e.route.Exact = opts.exact
		if opts.meta != nil {
			e.route.Meta = opts.meta
		}
		return
	}

	t.order = append(t.order, template)
	t.entries[template] = &routeEntry{
		route: RegisteredRoute{
			Pathname: template,
			Exact:    opts.exact,
			Meta:     opts.meta,
		},
		// Registry lookups always match exactly: a non-exact parent must
		// not shadow the child routes registered after it.
		pattern: routepath.MustCompile(template, true),
	}
}

// first returns the first route, in registration order, matching path.
func (t *routeTable) first(path string) (*routeEntry, Params, bool) {
	for _, template := range t.order {
		e := t.entries[template]
		if params, ok := e.pattern.Match(path); ok {
			return e, params, true
		}
	}
	return nil, nil, false
}

// RegisterRoute adds template to the registry. Registration order matters:
// lookups return the first registered route that matches. A broadcast is
// scheduled (never run synchronously) so active subscribers re-evaluate
// against the new route table.
func (r *Router) RegisterRoute(template string, opts ...RouteOption) {
	options := routeOptions{exact: true}
	for _, opt := range opts {
		opt(&options)
	}

	template = routepath.Clean(template)

	r.mu.Lock()
	r.routes.set(template, options)
	r.mu.Unlock()

	r.scheduleBroadcast()
}

// IsRegistered reports whether any registered route matches pathname.
func (r *Router) IsRegistered(pathname string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, _, ok := r.routes.first(pathname)
	return ok
}

// MatchRoute returns the first registered route matching pathname and the
// parameters it captured.
func (r *Router) MatchRoute(pathname string) (RegisteredRoute, Params, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, params, ok := r.routes.first(pathname)
	if !ok {
		return RegisteredRoute{}, nil, false
	}
	return e.route, params, true
}

// CurrentParams returns the parameters of the first registered route
// matching the current pathname, or an empty map.
func (r *Router) CurrentParams() Params {
	_, params, ok := r.MatchRoute(r.CurrentPathname())
	if !ok {
		return Params{}
	}
	return params
}

// RouteMeta returns the metadata registered for template.
func (r *Router) RouteMeta(template string) (Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.routes.entries[routepath.Clean(template)]
	if !ok || e.route.Meta == nil {
		return nil, false
	}
	return e.route.Meta, true
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []RegisteredRoute {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RegisteredRoute, 0, len(r.routes.order))
	for _, template := range r.routes.order {
		out = append(out, r.routes.entries[template].route)
	}
	return out
}
