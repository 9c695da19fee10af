package pageroute

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/vango-dev/pagerouter/pkg/content"
	"github.com/vango-dev/pagerouter/pkg/history"
	"github.com/vango-dev/pagerouter/pkg/router"
)

// DataOptions selects the value a Data element shows. Param wins over
// SearchParam, which wins over Key.
type DataOptions struct {
	// Param names a route parameter of the current path.
	Param string

	// SearchParam names a raw query parameter.
	SearchParam string

	// Key is a dotted path into the history state. Empty shows the whole
	// state. Walking stops at the first missing key.
	Key string
}

// Data renders a value from the current page and re-renders it on every
// navigation.
type Data struct {
	router      *router.Router
	target      content.Target
	opts        DataOptions
	unsubscribe func()
}

// NewData creates a data element.
func NewData(r *router.Router, target content.Target, opts DataOptions) *Data {
	return &Data{router: r, target: target, opts: opts}
}

// Value computes the current text.
func (d *Data) Value() string {
	if d.opts.Param != "" {
		return d.router.CurrentParams()[d.opts.Param]
	}
	if d.opts.SearchParam != "" {
		values, _ := url.ParseQuery(strings.TrimPrefix(d.router.CurrentSearch(), "?"))
		return values.Get(d.opts.SearchParam)
	}

	var data any = d.router.CurrentState()
	if d.opts.Key != "" {
		for _, k := range strings.Split(d.opts.Key, ".") {
			m, ok := asMap(data)
			if !ok {
				break
			}
			v, ok := m[k]
			if !ok {
				break
			}
			data = v
		}
	}
	return stringify(data)
}

// Mount renders the value and keeps it current.
func (d *Data) Mount() {
	d.unsubscribe = d.router.Subscribe(func(router.Snapshot) {
		d.target.SetText(d.Value())
	})
}

// Unmount stops updating.
func (d *Data) Unmount() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case history.State:
		return m, m != nil
	case map[string]any:
		return m, m != nil
	}
	return nil, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case history.State:
		if s == nil {
			return ""
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
