// Package pageroute provides the elements a page is assembled from: Route
// and QueryRoute show content while the current location matches them,
// Link navigates and tracks whether it points at the current page,
// Redirect sends unknown or bare parent paths elsewhere, and Data renders
// a value from the params, query or state.
//
// Elements render onto a Target supplied by the host (the bridge package
// provides one for a live browser). Every element subscribes to the router
// in Mount and must be released with Unmount.
package pageroute
