package content

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/vango-dev/pagerouter/pkg/content"

// ModuleLoader produces the content registered for a source.
type ModuleLoader func(ctx context.Context) (Content, error)

// SourceKind names where a source was read from.
type SourceKind string

const (
	SourceModule SourceKind = "module"
	SourceS3     SourceKind = "s3"
	SourceFile   SourceKind = "file"
	SourceHTTP   SourceKind = "http"
)

// LoadEvent reports a finished Load or LoadFresh call.
type LoadEvent struct {
	Src      string
	Kind     SourceKind
	Cached   bool
	Shared   bool
	Err      error
	Duration time.Duration
}

// Observer receives load events. Implementations must not block.
type Observer interface {
	ObserveLoad(LoadEvent)
}

type nopObserver struct{}

func (nopObserver) ObserveLoad(LoadEvent) {}

// Loader fetches and caches content by source identifier. It is safe for
// concurrent use.
type Loader struct {
	client   *http.Client
	baseURL  *url.URL
	fsys     fs.FS
	s3       ObjectGetter
	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer

	mu      sync.RWMutex
	cache   map[string]Content
	modules map[string]ModuleLoader

	group singleflight.Group
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client for HTTP sources. Defaults to
// http.DefaultClient.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithBaseURL sets the URL relative HTTP sources resolve against.
func WithBaseURL(base *url.URL) LoaderOption {
	return func(l *Loader) {
		l.baseURL = base
	}
}

// WithFS sets the filesystem "file:" sources are read from.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fsys = fsys
	}
}

// WithS3 sets the client "s3://" sources are read with.
func WithS3(client ObjectGetter) LoaderOption {
	return func(l *Loader) {
		l.s3 = client
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTracerProvider sets the provider for load spans.
func WithTracerProvider(tp trace.TracerProvider) LoaderOption {
	return func(l *Loader) {
		if tp != nil {
			l.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithObserver sets the observer notified of every load.
func WithObserver(o Observer) LoaderOption {
	return func(l *Loader) {
		if o != nil {
			l.observer = o
		}
	}
}

// NewLoader creates a Loader with an empty cache and module registry.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:   http.DefaultClient,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		observer: nopObserver{},
		cache:    make(map[string]Content),
		modules:  make(map[string]ModuleLoader),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RegisterModules adds entries to the module registry. Registered
// sources are served without touching the network or filesystem. A key
// registered twice keeps the later loader.
func (l *Loader) RegisterModules(modules map[string]ModuleLoader) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for src, load := range modules {
		l.modules[src] = load
	}
}

// Load returns the content for src, fetching it on the first call.
// Failures are not cached.
func (l *Loader) Load(ctx context.Context, src string) (Content, error) {
	l.mu.RLock()
	c, ok := l.cache[src]
	l.mu.RUnlock()
	if ok {
		l.observer.ObserveLoad(LoadEvent{Src: src, Kind: l.kindOf(src), Cached: true})
		return c, nil
	}
	return l.load(ctx, src, false)
}

// LoadFresh fetches src even when it is cached and replaces the entry.
func (l *Loader) LoadFresh(ctx context.Context, src string) (Content, error) {
	return l.load(ctx, src, true)
}

// Cached returns the cached content for src, if any.
func (l *Loader) Cached(src string) (Content, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.cache[src]
	return c, ok
}

// Invalidate drops src from the cache.
func (l *Loader) Invalidate(src string) {
	l.mu.Lock()
	delete(l.cache, src)
	l.mu.Unlock()
}

func (l *Loader) load(ctx context.Context, src string, fresh bool) (c Content, err error) {
	started := time.Now()
	kind := l.kindOf(src)

	ctx, span := l.tracer.Start(ctx, "content.load", trace.WithAttributes(
		attribute.String("content.src", src),
		attribute.String("content.kind", string(kind)),
	))

	var shared bool
	defer func() {
		span.SetAttributes(attribute.Bool("content.shared", shared))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		l.observer.ObserveLoad(LoadEvent{
			Src:      src,
			Kind:     kind,
			Shared:   shared,
			Err:      err,
			Duration: time.Since(started),
		})
	}()

	// The shared fetch outlives any one caller: each caller stops waiting
	// when its own ctx ends, and the rest still get the result.
	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(src, func() (any, error) {
		if !fresh {
			// A fetch that finished since the cache check above.
			if c, ok := l.Cached(src); ok {
				return c, nil
			}
		}
		c, err := l.fetch(fetchCtx, src, kind)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[src] = c
		l.mu.Unlock()
		return c, nil
	})

	var v any
	select {
	case res := <-ch:
		v, err, shared = res.Val, res.Err, res.Shared
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		l.logger.Debug("content fetch failed", "src", src, "kind", kind, "error", err)
		return nil, err
	}
	return v.(Content), nil
}

func (l *Loader) kindOf(src string) SourceKind {
	l.mu.RLock()
	_, ok := l.modules[src]
	l.mu.RUnlock()

	switch {
	case ok:
		return SourceModule
	case isScript(src):
		return SourceModule
	case isS3(src):
		return SourceS3
	case isFile(src):
		return SourceFile
	default:
		return SourceHTTP
	}
}

func (l *Loader) fetch(ctx context.Context, src string, kind SourceKind) (Content, error) {
	switch kind {
	case SourceModule:
		return l.fetchModule(ctx, src)
	case SourceS3:
		return l.fetchS3(ctx, src)
	case SourceFile:
		return l.fetchFile(src)
	default:
		return l.fetchHTTP(ctx, src)
	}
}
