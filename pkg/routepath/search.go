package routepath

import (
	"net/url"
	"strings"
)

// SearchParams is a query string as an ordered list of key/value pairs.
// Unlike url.Values it keeps keys in the order they first appeared, so
// editing one key leaves the rest of the query as written.
type SearchParams []SearchParam

// SearchParam is one key/value pair of a query string.
type SearchParam struct {
	Key   string
	Value string
}

// ParseSearch parses a query string, with or without its leading "?".
// Pairs that fail to unescape are kept raw.
func ParseSearch(search string) SearchParams {
	search = strings.TrimPrefix(search, "?")
	var out SearchParams
	for _, part := range strings.Split(search, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		out = append(out, SearchParam{Key: unescape(key), Value: unescape(value)})
	}
	return out
}

func unescape(s string) string {
	u, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return u
}

// Get returns the first value for key.
func (p SearchParams) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Set replaces the first value for key in place and drops any later
// ones. A new key is appended.
func (p SearchParams) Set(key, value string) SearchParams {
	out := p[:0:0]
	found := false
	for _, kv := range p {
		if kv.Key != key {
			out = append(out, kv)
			continue
		}
		if !found {
			out = append(out, SearchParam{Key: key, Value: value})
			found = true
		}
	}
	if !found {
		out = append(out, SearchParam{Key: key, Value: value})
	}
	return out
}

// Del removes every value for key.
func (p SearchParams) Del(key string) SearchParams {
	out := p[:0:0]
	for _, kv := range p {
		if kv.Key != key {
			out = append(out, kv)
		}
	}
	return out
}

// Encode formats the pairs as "k=v&k2=v2" without a leading "?".
func (p SearchParams) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}
