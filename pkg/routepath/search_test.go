package routepath

import (
	"reflect"
	"testing"
)

func TestParseSearch(t *testing.T) {
	p := ParseSearch("?b=2&a=1&&c=x%20y&flag")
	want := SearchParams{
		{Key: "b", Value: "2"},
		{Key: "a", Value: "1"},
		{Key: "c", Value: "x y"},
		{Key: "flag", Value: ""},
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("ParseSearch = %v, want %v", p, want)
	}
	for _, empty := range []string{"", "?"} {
		if got := ParseSearch(empty); len(got) != 0 {
			t.Errorf("ParseSearch(%q) = %v, want empty", empty, got)
		}
	}
}

func TestSearchParamsKeepOrder(t *testing.T) {
	tests := []struct {
		name   string
		search string
		edit   func(SearchParams) SearchParams
		want   string
	}{
		{"set existing in place", "view=grid&page=1&sort=asc", func(p SearchParams) SearchParams { return p.Set("page", "2") }, "view=grid&page=2&sort=asc"},
		{"set appends new", "z=1&a=2", func(p SearchParams) SearchParams { return p.Set("m", "3") }, "z=1&a=2&m=3"},
		{"set drops repeats", "a=1&b=2&a=3", func(p SearchParams) SearchParams { return p.Set("a", "9") }, "a=9&b=2"},
		{"del", "a=1&b=2&a=3", func(p SearchParams) SearchParams { return p.Del("a") }, "b=2"},
		{"escaping", "", func(p SearchParams) SearchParams { return p.Set("q", `{"a":true}`) }, "q=%7B%22a%22%3Atrue%7D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.edit(ParseSearch(tt.search)).Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchParamsSetDoesNotAlias(t *testing.T) {
	p := ParseSearch("a=1&b=2")
	_ = p.Set("a", "9")
	if v, ok := p.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v; Set must not modify the receiver", v, ok)
	}
}
