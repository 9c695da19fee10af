// Package telemetry exports router, content and bridge activity as
// Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	m := telemetry.New(telemetry.WithRegistry(reg))
//	r := router.New(h, router.WithObserver(m))
//	loader := content.NewLoader(content.WithObserver(m))
//	m.ObserveConnections(handler.Connections)
package telemetry
