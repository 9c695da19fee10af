// Package bridge drives a live browser tab over a WebSocket.
//
// The browser runs a thin client script (ClientScript) that reports its
// location, forwards link clicks and popstate/hashchange events, and
// applies history writes and render operations sent by the server. On the
// server each connection exposes a History for a router and Targets for
// route elements:
//
//	h := bridge.NewHandler(nil, func(c *bridge.Conn) error {
//		r := router.New(c.History())
//		c.OnClick(func(href string) { r.GoToPage(context.Background(), href) })
//		c.OnClose(r.Close)
//		return nil
//	}, logger)
//
// Messages are JSON text frames (see Message).
package bridge
