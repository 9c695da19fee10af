package main

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/pagerouter/internal/config"
	"github.com/vango-dev/pagerouter/pkg/bridge"
	"github.com/vango-dev/pagerouter/pkg/content"
	"github.com/vango-dev/pagerouter/pkg/pageroute"
	"github.com/vango-dev/pagerouter/pkg/router"
	"github.com/vango-dev/pagerouter/pkg/telemetry"
)

// server wires one route table to browser tabs: every bridge connection
// gets its own Router and mounted routes, sharing one content Loader.
type server struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	loader   *content.Loader
	bridge   *bridge.Handler
}

func newServer(cfg *config.Config, logger *slog.Logger, loaderOpts ...content.LoaderOption) *server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.New(telemetry.WithRegistry(registry))

	opts := []content.LoaderOption{
		content.WithFS(os.DirFS(cfg.ContentPath())),
		content.WithLogger(logger),
		content.WithObserver(metrics),
	}
	if base := cfg.BaseURL(); base != nil {
		opts = append(opts, content.WithBaseURL(base))
	}
	opts = append(opts, loaderOpts...)

	s := &server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
		loader:   content.NewLoader(opts...),
	}
	s.bridge = bridge.NewHandler(cfg.BridgeConfig(), s.connect, logger)
	metrics.ObserveConnections(s.bridge.Connections)
	return s
}

// newS3Client builds the client for s3:// sources from the default AWS
// credential chain.
func newS3Client(ctx context.Context, c config.S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Handler returns the HTTP routes:
//
//	/ws             browser bridge
//	/pagerouter.js  bridge client
//	/content/*      files from the content directory
//	/metrics        Prometheus metrics (configurable)
//	/*              page shell
func (s *server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Handle("/ws", s.bridge)
	r.Handle("/pagerouter.js", bridge.ClientScript())
	r.Handle("/content/*", http.StripPrefix("/content/", http.FileServer(http.Dir(s.cfg.ContentPath()))))
	if s.cfg.MetricsEnabled() {
		r.Handle(s.cfg.Server.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Get("/*", s.shell)

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// connect mounts the route table on a new bridge connection.
func (s *server) connect(c *bridge.Conn) error {
	r := router.New(c.History(),
		router.WithMode(s.cfg.RoutingMode()),
		router.WithLogger(c.Logger()),
		router.WithObserver(s.metrics),
	)
	if s.cfg.Title != "" && c.History().Title() == "" {
		r.SetTitle(s.cfg.Title)
	}

	routes := make([]*pageroute.Route, 0, len(s.cfg.Routes))
	for i, rc := range s.cfg.Routes {
		rt := pageroute.New(r, s.loader, c.Target(targetID(i)), pageroute.Options{
			Path:   rc.Path,
			Prefix: !rc.IsExact(),
			Src:    rc.Src,
			Title:  rc.Title,
			Meta:   rc.Meta,
		})
		if err := rt.Mount(); err != nil {
			for _, mounted := range routes {
				mounted.Unmount()
			}
			r.Close()
			return fmt.Errorf("mount route %q: %w", rc.Path, err)
		}
		routes = append(routes, rt)
	}

	c.OnClick(func(href string) {
		if err := r.GoToPage(context.Background(), href); err != nil {
			c.Logger().Warn("navigation failed", "href", href, "error", err)
		}
	})
	c.OnClose(r.Close)
	for _, rt := range routes {
		c.OnClose(rt.Unmount)
	}
	return nil
}

func targetID(i int) string {
	return fmt.Sprintf("route-%d", i)
}

var shellTemplate = template.Must(template.New("shell").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{- range .Targets}}
<section id="{{.}}" hidden></section>
{{- end}}
</main>
<script src="/pagerouter.js" data-ws="/ws"></script>
</body>
</html>
`))

// shell serves the page every route renders into. Routing happens over
// the bridge, so every path gets the same document.
func (s *server) shell(w http.ResponseWriter, r *http.Request) {
	targets := make([]string, len(s.cfg.Routes))
	for i := range s.cfg.Routes {
		targets[i] = targetID(i)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := shellTemplate.Execute(w, struct {
		Title   string
		Targets []string
	}{s.cfg.Title, targets})
	if err != nil {
		s.logger.Error("shell render failed", "error", err)
	}
}
