// Package content models what a route renders and how it is fetched.
//
// Content is a closed set of variants: Callback, Component, Node and Text.
// Resolve runs callbacks until a concrete variant remains; Mount puts that
// variant on a Target in the fixed order Component, Node, Text.
//
// A Loader fetches content by source identifier and caches it for its own
// lifetime. Sources are tried in this order:
//
//   - the module registry (RegisterModules)
//   - ".js" and ".ts" sources, which must come from the registry
//   - "s3://bucket/key", read with an S3 client
//   - "file:path", read from the configured fs.FS
//   - anything else, fetched over HTTP relative to the base URL
//
// Concurrent loads of one source share a single fetch.
package content
