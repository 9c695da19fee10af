package routepath

import "strings"

// HashPathname extracts the routed pathname from a URL fragment.
//
//	HashPathname("#/team?tab=one") == "/team"
//	HashPathname("")               == "/"
func HashPathname(hash string) string {
	if hash == "" || hash == "#" {
		return "/"
	}
	pathname, _, _ := strings.Cut(strings.TrimPrefix(hash, "#"), "?")
	if pathname == "" {
		return "/"
	}
	return CleanPathname(pathname)
}

// HashSearch extracts the search string, with its leading "?", from a URL
// fragment. It returns "" when the fragment has no query.
func HashSearch(hash string) string {
	if hash == "" {
		return ""
	}
	rest := strings.TrimPrefix(hash, "#")
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		return rest[i:]
	}
	return ""
}

// PathToHash formats a path (optionally carrying a query) as a fragment.
//
//	PathToHash("/team")  == "#/team"
//	PathToHash("")       == "#/"
//	PathToHash("team")   == "#/team"
func PathToHash(path string) string {
	if path == "" || path == "/" {
		return "#/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "#" + path
}
