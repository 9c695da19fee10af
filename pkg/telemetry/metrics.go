package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/pagerouter/pkg/content"
	"github.com/vango-dev/pagerouter/pkg/router"
)

// Config configures the metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "pagerouter").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "pagerouter",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records router and content events. It implements
// router.Observer and content.Observer.
type Metrics struct {
	config Config

	navigations        *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	guardRedirects     prometheus.Counter
	broadcasts         prometheus.Counter
	subscribers        prometheus.Gauge
	contentLoads       *prometheus.CounterVec
	contentDuration    *prometheus.HistogramVec
}

// New creates and registers the metrics. Metrics can be registered only
// once per registry.
//
// Metrics collected:
//   - pagerouter_navigations_total: navigations by outcome and kind
//   - pagerouter_navigation_duration_seconds: guard evaluation plus write
//   - pagerouter_guard_redirects_total: guard redirects followed
//   - pagerouter_broadcasts_total: change broadcasts
//   - pagerouter_subscribers: live subscriptions across all routers
//   - pagerouter_content_loads_total: content loads by source kind and result
//   - pagerouter_content_load_duration_seconds: uncached load duration
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		config: config,

		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome", "replace"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),

		guardRedirects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "guard_redirects_total",
			Help:        "Total number of guard redirects followed",
			ConstLabels: config.ConstLabels,
		}),

		broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "broadcasts_total",
			Help:        "Total number of path change broadcasts",
			ConstLabels: config.ConstLabels,
		}),

		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscribers",
			Help:        "Live route subscriptions across all routers",
			ConstLabels: config.ConstLabels,
		}),

		contentLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "content_loads_total",
			Help:        "Total number of content loads by source kind and result",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "result"}),

		contentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "content_load_duration_seconds",
			Help:        "Uncached content load duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),
	}
}

// ObserveNavigation implements router.Observer.
func (m *Metrics) ObserveNavigation(ev router.NavigationEvent) {
	outcome := string(ev.Outcome)
	m.navigations.WithLabelValues(outcome, strconv.FormatBool(ev.Replace)).Inc()
	m.navigationDuration.WithLabelValues(outcome).Observe(ev.Duration.Seconds())
	if ev.Redirects > 0 {
		m.guardRedirects.Add(float64(ev.Redirects))
	}
}

// ObserveBroadcast implements router.Observer.
func (m *Metrics) ObserveBroadcast(listeners int) {
	m.broadcasts.Inc()
}

// ObserveSubscribers implements router.Observer. Routers sharing m add
// to the same gauge.
func (m *Metrics) ObserveSubscribers(delta int) {
	m.subscribers.Add(float64(delta))
}

// ObserveLoad implements content.Observer.
func (m *Metrics) ObserveLoad(ev content.LoadEvent) {
	kind := string(ev.Kind)
	switch {
	case ev.Err != nil:
		m.contentLoads.WithLabelValues(kind, "error").Inc()
	case ev.Cached:
		m.contentLoads.WithLabelValues(kind, "hit").Inc()
		return
	case ev.Shared:
		m.contentLoads.WithLabelValues(kind, "shared").Inc()
	default:
		m.contentLoads.WithLabelValues(kind, "miss").Inc()
	}
	m.contentDuration.WithLabelValues(kind).Observe(ev.Duration.Seconds())
}

// ObserveConnections exports count as the bridge_connections gauge,
// read at scrape time. Call it at most once per Metrics.
func (m *Metrics) ObserveConnections(count func() int) {
	promauto.With(m.config.Registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   m.config.Namespace,
		Subsystem:   m.config.Subsystem,
		Name:        "bridge_connections",
		Help:        "Number of open bridge connections",
		ConstLabels: m.config.ConstLabels,
	}, func() float64 { return float64(count()) })
}

var (
	_ router.Observer  = (*Metrics)(nil)
	_ content.Observer = (*Metrics)(nil)
)
