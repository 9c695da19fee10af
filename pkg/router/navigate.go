package router

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	rerrors "github.com/vango-dev/pagerouter/internal/errors"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// NavigateOptions configures a navigation.
type NavigateOptions struct {
	// State is written to the new history entry. It must be nil or a map
	// keyed by strings.
	State any

	// Title is the document title after navigating. Empty keeps the
	// current title.
	Title string
}

// NavigateOption is a functional option for GoToPage and ReplacePage.
type NavigateOption func(*NavigateOptions)

// WithState sets the state written to the history entry.
func WithState(state any) NavigateOption {
	return func(o *NavigateOptions) {
		o.State = state
	}
}

// WithTitle sets the document title.
func WithTitle(title string) NavigateOption {
	return func(o *NavigateOptions) {
		o.Title = title
	}
}

// GoToPage pushes a history entry for path once the guards approve.
//
// A blocked navigation, a redirect loop or a failing guard returns nil
// and leaves history untouched. The only errors are ErrInvalidState,
// ctx.Err() when ctx ends between guards, and a History write failure.
func (r *Router) GoToPage(ctx context.Context, path string, opts ...NavigateOption) error {
	return r.navigate(ctx, path, false, opts)
}

// ReplacePage is GoToPage replacing the current history entry.
func (r *Router) ReplacePage(ctx context.Context, path string, opts ...NavigateOption) error {
	return r.navigate(ctx, path, true, opts)
}

// PreviousPage goes back one entry. The broadcast follows the History's
// popstate notification; guards do not run.
func (r *Router) PreviousPage() {
	r.history.Back()
}

// NextPage goes forward one entry. See PreviousPage.
func (r *Router) NextPage() {
	r.history.Forward()
}

func (r *Router) navigate(ctx context.Context, path string, replace bool, opts []NavigateOption) (err error) {
	started := time.Now()
	ev := NavigationEvent{Replace: replace, Target: path, Final: path}

	ctx, span := r.tracer.Start(ctx, "router.navigate")
	defer func() {
		ev.Duration = time.Since(started)
		span.SetAttributes(
			attribute.String("router.target", ev.Target),
			attribute.String("router.final", ev.Final),
			attribute.Bool("router.replace", replace),
			attribute.Int("router.redirects", ev.Redirects),
			attribute.String("router.outcome", string(ev.Outcome)),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		r.observer.ObserveNavigation(ev)
	}()

	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.Title == "" {
		options.Title = r.history.Title()
	}

	state, err := normalizeState(options.State)
	if err != nil {
		ev.Outcome = OutcomeInvalid
		return err
	}

	query := r.CurrentQuery()
	visited := make(map[string]struct{})
	target := path

	for {
		if _, seen := visited[target]; seen {
			r.logger.Warn("navigation abandoned",
				"target", path,
				"redirect", target,
				"error", rerrors.New("R004").WithDetailf("%q was already visited", target))
			ev.Outcome = OutcomeLoop
			return nil
		}
		visited[target] = struct{}{}
		ev.Final = target

		pathname, _ := routepath.SplitPathAndQuery(target)
		d, err := r.evaluate(ctx, Navigation{
			Target:   target,
			Pathname: routepath.CleanPathname(pathname),
			Query:    query,
			State:    state,
			Replace:  replace,
		})
		if err != nil {
			ev.Outcome = OutcomeCanceled
			return err
		}
		if d.Blocked() {
			ev.Outcome = OutcomeBlocked
			return nil
		}
		if next, ok := d.RedirectTo(); ok {
			ev.Redirects++
			target = next
			continue
		}
		break
	}

	url := r.externalURL(target)
	write := r.history.PushState
	if replace {
		write = r.history.ReplaceState
	}
	if err := write(state, options.Title, url); err != nil {
		ev.Outcome = OutcomeFailed
		return fmt.Errorf("router: write history %q: %w", url, err)
	}
	r.SetTitle(options.Title)

	ev.Outcome = OutcomeCommitted
	r.broadcast()
	return nil
}

// normalizeState accepts nil or a string-keyed map and returns it as a
// State. Slices, structs, pointers and scalars are rejected.
func normalizeState(v any) (State, error) {
	switch s := v.(type) {
	case nil:
		return State{}, nil
	case State:
		if s == nil {
			return State{}, nil
		}
		return s, nil
	case map[string]any:
		if s == nil {
			return State{}, nil
		}
		return State(s), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, rerrors.New("R001").WithDetailf("got %T", v)
	}

	out := make(State, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}
