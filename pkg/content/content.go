package content

import (
	"context"
	"fmt"

	rerrors "github.com/vango-dev/pagerouter/internal/errors"
	"github.com/vango-dev/pagerouter/pkg/history"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// maxCallbackDepth bounds callbacks that keep returning callbacks.
const maxCallbackDepth = 16

// Content is one of Text, Node, Component or Callback.
type Content interface {
	isContent()
}

// Text is markup set as the whole body of the target.
type Text string

// Node is a prebuilt fragment appended to the target.
type Node struct {
	Markup string
}

// Renderer draws itself onto a target and is told when it is taken down.
type Renderer interface {
	Render(t Target) error
	Unmount()
}

// Component wraps a Renderer.
type Component struct {
	Renderer Renderer
}

// Data is what callbacks receive about the current page.
type Data struct {
	State  history.State
	Params routepath.Params
	Query  map[string]any
}

// Callback computes content from the current page. It may return any
// variant, including another Callback.
type Callback func(ctx context.Context, data Data) (Content, error)

func (Text) isContent()      {}
func (Node) isContent()      {}
func (Component) isContent() {}
func (Callback) isContent()  {}

// Target is the surface content is mounted on.
type Target interface {
	// SetText replaces the target body.
	SetText(markup string)

	// Append adds a node after the current body.
	Append(n Node)

	// Clear empties the target body.
	Clear()
}

// Of converts a plain value into Content. Content passes through;
// strings become Text; Renderers become Components; functions with the
// Callback signature become Callbacks; anything else is formatted with
// fmt.Sprint.
func Of(v any) Content {
	switch c := v.(type) {
	case nil:
		return Text("")
	case Content:
		return c
	case string:
		return Text(c)
	case []byte:
		return Text(c)
	case Renderer:
		return Component{Renderer: c}
	case func(ctx context.Context, data Data) (Content, error):
		return Callback(c)
	case fmt.Stringer:
		return Text(c.String())
	default:
		return Text(fmt.Sprint(v))
	}
}

// Resolve runs c while it is a Callback and returns the first concrete
// variant. A failing or panicking callback yields an R003 error.
func Resolve(ctx context.Context, c Content, data Data) (Content, error) {
	for depth := 0; ; depth++ {
		cb, ok := c.(Callback)
		if !ok {
			if c == nil {
				return Text(""), nil
			}
			return c, nil
		}
		if depth == maxCallbackDepth {
			return nil, rerrors.New("R003").WithDetailf("callbacks nested deeper than %d", maxCallbackDepth)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := runCallback(ctx, cb, data)
		if err != nil {
			return nil, rerrors.New("R003").Wrap(err)
		}
		c = next
	}
}

func runCallback(ctx context.Context, cb Callback, data Data) (c Content, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("content callback panic: %v", p)
		}
	}()
	return cb(ctx, data)
}

// Mount puts a resolved variant on t, checking Component, then Node, then
// Text. It returns the Renderer when one was mounted so the caller can
// unmount it before mounting something else. Callbacks must be resolved
// first.
func Mount(t Target, c Content) (mounted Renderer, err error) {
	defer func() {
		if p := recover(); p != nil {
			mounted = nil
			err = rerrors.New("R003").WithDetailf("render panic: %v", p)
		}
	}()

	switch v := c.(type) {
	case Component:
		if v.Renderer == nil {
			return nil, rerrors.New("R003").WithDetail("component has no renderer")
		}
		if err := v.Renderer.Render(t); err != nil {
			return nil, rerrors.New("R003").Wrap(err)
		}
		return v.Renderer, nil
	case Node:
		t.Append(v)
		return nil, nil
	case Text:
		t.SetText(string(v))
		return nil, nil
	case Callback:
		return nil, rerrors.New("R003").WithDetail("callback content must be resolved before mounting")
	case nil:
		t.SetText("")
		return nil, nil
	default:
		t.SetText(fmt.Sprint(v))
		return nil, nil
	}
}
