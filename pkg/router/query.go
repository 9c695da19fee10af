package router

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// CurrentQuery decodes the current search string.
func (r *Router) CurrentQuery() Query {
	return decodeQuery(r.CurrentSearch())
}

// CurrentState returns the state of the current history entry.
func (r *Router) CurrentState() State {
	return r.history.State()
}

// decodeQuery decodes search into a Query. For repeated keys the first
// value wins.
func decodeQuery(search string) Query {
	values, err := url.ParseQuery(strings.TrimPrefix(search, "?"))
	q := make(Query, len(values))
	if err != nil && len(values) == 0 {
		return q
	}
	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			q[key] = nil
			continue
		}
		q[key] = decodeQueryValue(vals[0])
	}
	return q
}

func decodeQueryValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// encodeQueryValue stores strings raw and everything else as JSON.
func encodeQueryValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UpdateSearchQuery merges query into the current search string and
// replaces the current entry, keeping its state. Existing keys keep their
// position and new keys are appended in sorted order. A nil value deletes
// its key; a nil query clears the search. Guards do not run.
func (r *Router) UpdateSearchQuery(query map[string]any) error {
	pathname := r.CurrentPathname()

	search := ""
	if query != nil {
		params := routepath.ParseSearch(r.CurrentSearch())
		keys := make([]string, 0, len(query))
		for key := range query {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			v := query[key]
			if v == nil {
				params = params.Del(key)
				continue
			}
			s, err := encodeQueryValue(v)
			if err != nil {
				return err
			}
			params = params.Set(key, s)
		}
		search = params.Encode()
	}

	if err := r.history.ReplaceState(r.history.State(), r.history.Title(), r.ExternalPath(pathname, search)); err != nil {
		return err
	}
	r.broadcast()
	return nil
}
