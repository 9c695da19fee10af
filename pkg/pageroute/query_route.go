package pageroute

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/vango-dev/pagerouter/pkg/content"
	"github.com/vango-dev/pagerouter/pkg/router"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// QueryOptions configures a QueryRoute.
type QueryOptions struct {
	// Parent is the route whose path must match. Without one the route
	// is active on every path.
	Parent *Route

	// Key and Value select the query parameter. The raw (undecoded)
	// value is compared.
	Key   string
	Value string

	Src       string
	Component content.Content
	Logger    *slog.Logger
}

// QueryRoute shows content while its parent matches and the query
// parameter Key equals Value. While the parent does not match it keeps
// its state.
type QueryRoute struct {
	machine

	opts        QueryOptions
	pattern     *routepath.Pattern
	unsubscribe func()
}

// NewQuery creates a query route. A nil loader gets a private Loader.
func NewQuery(r *router.Router, loader *content.Loader, target Target, opts QueryOptions) *QueryRoute {
	q := &QueryRoute{opts: opts}
	q.machine.init(r, loader, target, opts.Logger, opts.Src, opts.Component)
	return q
}

// Mount starts following navigation.
func (q *QueryRoute) Mount() error {
	full, exact := "/", false
	if q.opts.Parent != nil {
		full = q.opts.Parent.FullPath()
		exact = q.opts.Parent.Exact()
	}
	pathname, _ := routepath.SplitPathAndQuery(full)
	pattern, err := routepath.Compile(pathname, exact)
	if err != nil {
		return err
	}
	q.pattern = pattern

	q.start()
	q.unsubscribe = q.router.Subscribe(q.handleChange)
	return nil
}

// Unmount stops following navigation and clears the content.
func (q *QueryRoute) Unmount() {
	if q.unsubscribe != nil {
		q.unsubscribe()
	}
	q.stop()
}

func (q *QueryRoute) handleChange(snap router.Snapshot) {
	params, ok := q.pattern.Match(snap.Pathname)
	if !ok {
		return
	}

	values, _ := url.ParseQuery(strings.TrimPrefix(snap.Search, "?"))
	if values.Has(q.opts.Key) && values.Get(q.opts.Key) == q.opts.Value {
		q.activate(params, snap)
		q.target.SetHidden(false)
		return
	}

	q.deactivate()
	q.target.SetHidden(true)
}
