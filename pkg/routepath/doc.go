// Package routepath compiles route templates into matchers and normalizes
// the paths they are matched against.
//
// A template is a path with optional ":name" placeholders:
//
//	/users/:id/edit
//
// Compile turns it into a Pattern. Exact patterns must consume the whole
// path; non-exact patterns also accept any "/..." continuation, which is
// how nested routes stay active below their parent:
//
//	p := routepath.MustCompile("/users/:id", false)
//	params, ok := p.Match("/users/42/edit")
//	// ok == true, params["id"] == "42"
//
// Trailing slashes and a trailing "/index.html" are optional on both sides
// of a match: "/foo/", "/foo/index.html" and "/foo" are the same path.
//
// The package also carries the helpers used by hash routing, where the
// routed path lives in the URL fragment as "#/path?query".
package routepath
