package telemetry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/pagerouter/pkg/content"
	"github.com/vango-dev/pagerouter/pkg/history"
	"github.com/vango-dev/pagerouter/pkg/router"
)

func TestNavigationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg))

	r := router.New(history.NewMemory("/"), router.WithObserver(m), router.WithScheduler(func(func()) {}))
	defer r.Close()

	r.RegisterRouteGuard("/old", router.RedirectIf(func(router.Navigation) bool { return true }, "/new"))
	r.RegisterRouteGuard("/private", router.Predicate(func(router.Navigation) bool { return false }))

	ctx := context.Background()
	require.NoError(t, r.GoToPage(ctx, "/a"))
	require.NoError(t, r.GoToPage(ctx, "/old"))
	require.NoError(t, r.ReplacePage(ctx, "/private"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.navigations.WithLabelValues("committed", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.navigations.WithLabelValues("blocked", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.guardRedirects))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.broadcasts))
}

func TestBroadcastMetrics(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	r := router.New(history.NewMemory("/"), router.WithObserver(m))
	defer r.Close()

	stop1 := r.Subscribe(func(router.Snapshot) {})
	stop2 := r.Subscribe(func(router.Snapshot) {})
	defer stop1()
	defer stop2()

	r.Broadcast()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.broadcasts))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.subscribers))
}

func TestSubscribersSharedAcrossRouters(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	r1 := router.New(history.NewMemory("/"), router.WithObserver(m))
	defer r1.Close()
	r2 := router.New(history.NewMemory("/"), router.WithObserver(m))
	defer r2.Close()

	stop1 := r1.Subscribe(func(router.Snapshot) {})
	stop2 := r1.Subscribe(func(router.Snapshot) {})
	stop3 := r2.Subscribe(func(router.Snapshot) {})
	assert.Equal(t, 3.0, testutil.ToFloat64(m.subscribers))

	r2.Broadcast()
	assert.Equal(t, 3.0, testutil.ToFloat64(m.subscribers))

	stop3()
	stop3()
	stop1()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.subscribers))
	stop2()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.subscribers))
}

func TestContentMetrics(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	loader := content.NewLoader(content.WithObserver(m))
	loader.RegisterModules(map[string]content.ModuleLoader{
		"home":   func(context.Context) (content.Content, error) { return content.Text("home"), nil },
		"broken": func(context.Context) (content.Content, error) { return nil, errors.New("boom") },
	})

	ctx := context.Background()
	_, _ = loader.Load(ctx, "home")
	_, _ = loader.Load(ctx, "home")
	_, _ = loader.Load(ctx, "broken")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.contentLoads.WithLabelValues("module", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.contentLoads.WithLabelValues("module", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.contentLoads.WithLabelValues("module", "error")))
}

func TestObserveLoadDirect(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.ObserveLoad(content.LoadEvent{Kind: content.SourceHTTP, Shared: true, Duration: time.Millisecond})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.contentLoads.WithLabelValues("http", "shared")))
}

func TestConnectionsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("app"))

	open := 3
	m.ObserveConnections(func() int { return open })

	expected := `
# HELP app_bridge_connections Number of open bridge connections
# TYPE app_bridge_connections gauge
app_bridge_connections 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_bridge_connections"))
}

func TestMetricNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "docs"}))
	m.ObserveBroadcast(1)

	n, err := testutil.GatherAndCount(reg, "pagerouter_broadcasts_total", "pagerouter_subscribers")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
