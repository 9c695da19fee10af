package router

import (
	"strings"

	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// IsOnPage reports whether path (optionally carrying a query) is the
// current location. With exact false, the current pathname may also be
// nested below path. Query parameters in path must all be present with
// the same values, in the same order, at the start of the current query
// when exact is false, and the whole query must be equal when exact is
// true.
func (r *Router) IsOnPage(path string, exact bool) bool {
	path = strings.TrimSpace(path)
	if path == "" {
		return false
	}

	pathname, query := routepath.SplitPathAndQuery(path)
	current := r.CurrentPathname()
	currentQuery := strings.TrimPrefix(r.CurrentSearch(), "?")

	pattern := routepath.MustCompile(routepath.CleanPathname(pathname), true)
	if !exact && pattern.Template != "/" {
		pattern = routepath.MustCompile(pattern.Template, false)
	}
	if !pattern.Matches(current) {
		return false
	}

	if query == "" {
		return true
	}
	if exact {
		return query == currentQuery
	}
	return currentQuery == query || strings.HasPrefix(currentQuery, query+"&")
}

// ParsePathname fills the ":name" segments of pattern with the segments
// at the same position in the current pathname.
func (r *Router) ParsePathname(pattern string) string {
	current := strings.Split(r.CurrentPathname(), "/")
	parts := strings.Split(pattern, "/")
	for i, p := range parts {
		if len(p) > 1 && p[0] == ':' {
			if i < len(current) {
				parts[i] = current[i]
			} else {
				parts[i] = ""
			}
		}
	}
	return strings.Join(parts, "/")
}
