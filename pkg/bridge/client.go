package bridge

import (
	_ "embed"
	"net/http"
)

//go:embed client.js
var clientScript []byte

// ClientScript serves the browser side of the bridge.
func ClientScript() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(clientScript)
	})
}
