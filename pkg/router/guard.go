package router

import (
	"context"
	"fmt"

	rerrors "github.com/vango-dev/pagerouter/internal/errors"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// AllRoutes is the wildcard guard pattern. Guards registered for it run
// with the global guards, after the ones added by RegisterGlobalGuard.
const AllRoutes = "*"

type decisionKind uint8

const (
	decisionAllow decisionKind = iota
	decisionBlock
	decisionRedirect
)

// Decision is the result of a guard. The zero value allows.
type Decision struct {
	kind decisionKind
	path string
}

// Allow lets the navigation continue to the next guard.
func Allow() Decision { return Decision{} }

// Block cancels the navigation without touching history.
func Block() Decision { return Decision{kind: decisionBlock} }

// Redirect restarts the navigation with path as the new target.
func Redirect(path string) Decision { return Decision{kind: decisionRedirect, path: path} }

// Allowed reports whether d lets the navigation continue.
func (d Decision) Allowed() bool { return d.kind == decisionAllow }

// Blocked reports whether d cancels the navigation.
func (d Decision) Blocked() bool { return d.kind == decisionBlock }

// RedirectTo returns the redirect target, if d is a redirect.
func (d Decision) RedirectTo() (string, bool) {
	return d.path, d.kind == decisionRedirect
}

func (d Decision) String() string {
	switch d.kind {
	case decisionBlock:
		return "block"
	case decisionRedirect:
		return "redirect(" + d.path + ")"
	default:
		return "allow"
	}
}

// Navigation is what a guard is asked to approve.
type Navigation struct {
	// Target is the path as requested, possibly with a query string.
	Target string

	// Pathname is the normalized pathname portion of Target.
	Pathname string

	// Query is the query of the current location, before navigating.
	Query Query

	// State is the state the navigation would write.
	State State

	// Replace is true for ReplacePage.
	Replace bool
}

// Guard approves, blocks or redirects a navigation. Check may block; it
// runs on the navigating goroutine and should honor ctx.
type Guard interface {
	Check(ctx context.Context, nav Navigation) (Decision, error)
}

// GuardFunc is a function adapter for Guard.
type GuardFunc func(ctx context.Context, nav Navigation) (Decision, error)

// Check implements Guard.
func (f GuardFunc) Check(ctx context.Context, nav Navigation) (Decision, error) {
	return f(ctx, nav)
}

// Predicate adapts a boolean check: true allows, false blocks.
func Predicate(fn func(nav Navigation) bool) Guard {
	return GuardFunc(func(_ context.Context, nav Navigation) (Decision, error) {
		if fn(nav) {
			return Allow(), nil
		}
		return Block(), nil
	})
}

// RedirectIf redirects to path whenever cond holds.
func RedirectIf(cond func(nav Navigation) bool, path string) Guard {
	return GuardFunc(func(_ context.Context, nav Navigation) (Decision, error) {
		if cond(nav) {
			return Redirect(path), nil
		}
		return Allow(), nil
	})
}

// ChainGuards combines guards into one that runs them in order and stops
// at the first decision that is not Allow.
func ChainGuards(guards ...Guard) Guard {
	return GuardFunc(func(ctx context.Context, nav Navigation) (Decision, error) {
		for _, g := range guards {
			d, err := g.Check(ctx, nav)
			if err != nil || !d.Allowed() {
				return d, err
			}
		}
		return Allow(), nil
	})
}

// GuardWhen runs g only when cond holds; otherwise it allows.
func GuardWhen(cond func(nav Navigation) bool, g Guard) Guard {
	return GuardFunc(func(ctx context.Context, nav Navigation) (Decision, error) {
		if !cond(nav) {
			return Allow(), nil
		}
		return g.Check(ctx, nav)
	})
}

// GuardUnless skips g when cond holds.
func GuardUnless(cond func(nav Navigation) bool, g Guard) Guard {
	return GuardFunc(func(ctx context.Context, nav Navigation) (Decision, error) {
		if cond(nav) {
			return Allow(), nil
		}
		return g.Check(ctx, nav)
	})
}

type patternGuards struct {
	pattern  string
	compiled *routepath.Pattern
	guards   []Guard
}

// guardSet holds the global guards and the per-pattern guards, the latter
// in pattern registration order.
type guardSet struct {
	global    []Guard
	wildcard  []Guard
	order     []string
	byPattern map[string]*patternGuards
}

func newGuardSet() guardSet {
	return guardSet{byPattern: make(map[string]*patternGuards)}
}

// RegisterRouteGuard adds guard for navigations whose target matches
// pattern exactly. Pattern AllRoutes makes it a global guard.
func (r *Router) RegisterRouteGuard(pattern string, guard Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pattern == AllRoutes {
		r.guards.wildcard = append(r.guards.wildcard, guard)
		return
	}

	pg, ok := r.guards.byPattern[pattern]
	if !ok {
		pg = &patternGuards{
			pattern:  pattern,
			compiled: routepath.MustCompile(pattern, true),
		}
		r.guards.byPattern[pattern] = pg
		r.guards.order = append(r.guards.order, pattern)
	}
	pg.guards = append(pg.guards, guard)
}

// RegisterGlobalGuard adds guard for every navigation.
func (r *Router) RegisterGlobalGuard(guard Guard) {
	r.mu.Lock()
	r.guards.global = append(r.guards.global, guard)
	r.mu.Unlock()
}

// guardsFor returns, in evaluation order, the guards that apply to target.
func (r *Router) guardsFor(target, pathname string) []Guard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Guard, 0, len(r.guards.global)+len(r.guards.wildcard))
	out = append(out, r.guards.global...)
	out = append(out, r.guards.wildcard...)

	for _, pattern := range r.guards.order {
		pg := r.guards.byPattern[pattern]
		if pattern == target || pattern == pathname || pg.compiled.Matches(pathname) {
			out = append(out, pg.guards...)
		}
	}
	return out
}

// evaluate runs the applicable guards in order and returns the first
// decision that is not Allow. Errors and panics block.
func (r *Router) evaluate(ctx context.Context, nav Navigation) (Decision, error) {
	for _, g := range r.guardsFor(nav.Target, nav.Pathname) {
		if err := ctx.Err(); err != nil {
			return Block(), err
		}

		d, err := r.runGuard(ctx, g, nav)
		if err != nil {
			r.logger.Error("guard failed",
				"target", nav.Target,
				"error", rerrors.New("R005").Wrap(err))
			return Block(), nil
		}
		if !d.Allowed() {
			return d, nil
		}
	}
	return Allow(), nil
}

func (r *Router) runGuard(ctx context.Context, g Guard, nav Navigation) (d Decision, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("guard panic: %v", p)
		}
	}()
	return g.Check(ctx, nav)
}
