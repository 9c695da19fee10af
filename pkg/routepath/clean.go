package routepath

import (
	"errors"
	"strings"
)

// Navigation path errors.
var (
	ErrInvalidPath     = errors.New("invalid path")
	ErrBackslashInPath = errors.New("path contains backslash")
	ErrNullByteInPath  = errors.New("path contains null byte")
)

const indexSuffix = "/index.html"

// Clean normalizes the pathname portion of path. A trailing "/index.html"
// and a trailing slash are dropped; the root stays "/". An empty path is
// the root. Any query string is kept as is.
//
//	Clean("/foo/")            == "/foo"
//	Clean("/foo/index.html")  == "/foo"
//	Clean("/foo/?tab=one")    == "/foo?tab=one"
func Clean(path string) string {
	pathname, query, hasQuery := strings.Cut(path, "?")
	pathname = CleanPathname(pathname)
	if hasQuery {
		return pathname + "?" + query
	}
	return pathname
}

// CleanPathname is Clean for a value known to carry no query string.
func CleanPathname(pathname string) string {
	if pathname == "" || pathname == "/" {
		return "/"
	}
	pathname = strings.TrimSuffix(pathname, indexSuffix)
	pathname = strings.TrimSuffix(pathname, "/")
	if pathname == "" {
		return "/"
	}
	return pathname
}

// SplitPathAndQuery splits a path into path and query components.
// The query is returned without the leading "?".
func SplitPathAndQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// ValidateNavPath checks that path is a same-origin navigation target.
// Absolute URLs (including scheme-relative "//host"), backslashes and NUL
// bytes are rejected.
func ValidateNavPath(path string) error {
	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "//") {
		return ErrInvalidPath
	}
	if !strings.HasPrefix(path, "/") {
		return ErrInvalidPath
	}
	if strings.Contains(path, "\\") {
		return ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return ErrNullByteInPath
	}
	return nil
}
