package pageroute

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/pagerouter/pkg/content"
	"github.com/vango-dev/pagerouter/pkg/history"
	"github.com/vango-dev/pagerouter/pkg/router"
)

type fakeTarget struct {
	mu       sync.Mutex
	body     string
	hidden   bool
	statuses []Status
}

func (t *fakeTarget) SetText(markup string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.body = markup
}

func (t *fakeTarget) Append(n content.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.body += n.Markup
}

func (t *fakeTarget) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.body = ""
}

func (t *fakeTarget) SetHidden(hidden bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hidden = hidden
}

func (t *fakeTarget) SetStatus(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses = append(t.statuses, s)
}

func (t *fakeTarget) Body() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.body
}

func (t *fakeTarget) Hidden() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hidden
}

func (t *fakeTarget) Statuses() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Status(nil), t.statuses...)
}

type testEnv struct {
	router *router.Router
	mem    *history.Memory
	logs   *syncBuffer
}

// syncBuffer is a bytes.Buffer safe for the load goroutines' log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newEnv(t *testing.T, initial string, opts ...router.Option) *testEnv {
	t.Helper()
	logs := &syncBuffer{}
	mem := history.NewMemory(initial)
	opts = append([]router.Option{
		router.WithLogger(slog.New(slog.NewTextHandler(logs, nil))),
		router.WithScheduler(func(func()) {}),
	}, opts...)
	r := router.New(mem, opts...)
	t.Cleanup(r.Close)
	return &testEnv{router: r, mem: mem, logs: logs}
}

func (e *testEnv) goTo(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, e.router.GoToPage(context.Background(), path))
}

func mountRoute(t *testing.T, e *testEnv, loader *content.Loader, opts Options) (*Route, *fakeTarget) {
	t.Helper()
	target := &fakeTarget{}
	rt := New(e.router, loader, target, opts)
	require.NoError(t, rt.Mount())
	t.Cleanup(rt.Unmount)
	return rt, target
}

func TestRouteLoadFailsOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)

	e := newEnv(t, "/")
	loader := content.NewLoader(content.WithBaseURL(base))
	rt, target := mountRoute(t, e, loader, Options{Path: "/test", Src: "/test"})

	assert.Equal(t, Idle, rt.Status())
	assert.True(t, target.Hidden())

	e.goTo(t, "/test")
	rt.Wait()

	assert.Equal(t, LoadingFailed, rt.Status())
	assert.Equal(t, []Status{Loading, LoadingFailed}, target.Statuses())
	assert.False(t, target.Hidden())
	assert.Contains(t, e.logs.String(), "404")
	assert.Contains(t, e.logs.String(), "content load failed")
}

func userLoader() *content.Loader {
	loader := content.NewLoader()
	loader.RegisterModules(map[string]content.ModuleLoader{
		"/pages/user.js": func(context.Context) (content.Content, error) {
			return content.Callback(func(_ context.Context, d content.Data) (content.Content, error) {
				return content.Text("user " + d.Params["id"]), nil
			}), nil
		},
	})
	return loader
}

func TestRouteLoadsContent(t *testing.T) {
	e := newEnv(t, "/")
	rt, target := mountRoute(t, e, userLoader(), Options{Path: "/users/:id", Src: "/pages/user.js"})

	e.goTo(t, "/users/7")
	rt.Wait()
	assert.Equal(t, Loaded, rt.Status())
	assert.Equal(t, "user 7", target.Body())
	assert.False(t, target.Hidden())

	e.goTo(t, "/about")
	assert.Equal(t, Idle, rt.Status())
	assert.Equal(t, "", target.Body())
	assert.True(t, target.Hidden())

	e.goTo(t, "/users/8")
	rt.Wait()
	assert.Equal(t, "user 8", target.Body())
	assert.Equal(t, []Status{Loading, Loaded, Idle, Loading, Loaded}, target.Statuses())
}

func TestRouteStaysLoadedWhileActive(t *testing.T) {
	e := newEnv(t, "/")
	rt, target := mountRoute(t, e, userLoader(), Options{Path: "/users/:id", Src: "/pages/user.js"})

	e.goTo(t, "/users/1")
	rt.Wait()
	e.goTo(t, "/users/2")
	rt.Wait()

	assert.Equal(t, "user 1", target.Body(), "an already loaded route is not reloaded")
	assert.Equal(t, []Status{Loading, Loaded}, target.Statuses())
}

func TestRouteWithoutSource(t *testing.T) {
	e := newEnv(t, "/")
	rt, target := mountRoute(t, e, nil, Options{Path: "/plain"})

	e.goTo(t, "/plain")
	assert.Equal(t, Loaded, rt.Status())
	assert.Equal(t, []Status{Loaded}, target.Statuses())
}

type countingRenderer struct {
	mu        sync.Mutex
	unmounted int
}

func (c *countingRenderer) Render(t content.Target) error {
	t.SetText("<x-widget></x-widget>")
	return nil
}

func (c *countingRenderer) Unmount() {
	c.mu.Lock()
	c.unmounted++
	c.mu.Unlock()
}

func TestRouteComponentUnmounted(t *testing.T) {
	e := newEnv(t, "/")
	renderer := &countingRenderer{}
	rt, target := mountRoute(t, e, nil, Options{
		Path:      "/widget",
		Component: content.Component{Renderer: renderer},
	})

	e.goTo(t, "/widget")
	rt.Wait()
	assert.Equal(t, "<x-widget></x-widget>", target.Body())

	e.goTo(t, "/")
	assert.Equal(t, 1, renderer.unmounted)
	assert.Equal(t, "", target.Body())
}

type panickingRenderer struct{}

func (panickingRenderer) Render(content.Target) error { panic("template exploded") }
func (panickingRenderer) Unmount()                    {}

func TestRouteRenderFailure(t *testing.T) {
	e := newEnv(t, "/")
	rt, target := mountRoute(t, e, nil, Options{
		Path:      "/broken",
		Component: content.Component{Renderer: panickingRenderer{}},
	})

	e.goTo(t, "/broken")
	rt.Wait()

	assert.Equal(t, LoadingFailed, rt.Status())
	assert.Equal(t, []Status{Loading, LoadingFailed}, target.Statuses())
	assert.Contains(t, e.logs.String(), "R003")
}

func TestRouteDiscardsStaleResult(t *testing.T) {
	e := newEnv(t, "/")

	release := make(chan struct{})
	loader := content.NewLoader()
	loader.RegisterModules(map[string]content.ModuleLoader{
		"slow": func(context.Context) (content.Content, error) {
			<-release
			return content.Text("late"), nil
		},
	})
	rt, target := mountRoute(t, e, loader, Options{Path: "/slow", Src: "slow"})

	e.goTo(t, "/slow")
	assert.Equal(t, Loading, rt.Status())

	e.goTo(t, "/")
	close(release)
	rt.Wait()

	assert.Equal(t, Idle, rt.Status())
	assert.Equal(t, "", target.Body())
	assert.Equal(t, []Status{Loading, Idle}, target.Statuses())
}

func TestRouteUnmountDropsLoad(t *testing.T) {
	e := newEnv(t, "/")

	release := make(chan struct{})
	loader := content.NewLoader()
	loader.RegisterModules(map[string]content.ModuleLoader{
		"slow": func(context.Context) (content.Content, error) {
			<-release
			return content.Text("late"), nil
		},
	})
	target := &fakeTarget{}
	rt := New(e.router, loader, target, Options{Path: "/slow", Src: "slow"})
	require.NoError(t, rt.Mount())

	e.goTo(t, "/slow")
	rt.Unmount()
	close(release)
	rt.Wait()

	assert.Equal(t, Idle, rt.Status())
	assert.Equal(t, "", target.Body())
}

func TestUnmountLeavesSharedLoadToOtherRoute(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		io.WriteString(w, "docs")
	}))
	defer srv.Close()
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)

	e := newEnv(t, "/")
	loader := content.NewLoader(content.WithBaseURL(base))

	first := &fakeTarget{}
	rt1 := New(e.router, loader, first, Options{Path: "/docs", Src: "/docs"})
	require.NoError(t, rt1.Mount())
	rt2, second := mountRoute(t, e, loader, Options{Path: "/docs", Src: "/docs"})

	e.goTo(t, "/docs")
	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, time.Millisecond)

	rt1.Unmount()
	rt1.Wait()
	close(release)
	rt2.Wait()

	assert.Equal(t, Idle, rt1.Status())
	assert.Equal(t, "", first.Body())
	assert.Equal(t, Loaded, rt2.Status())
	assert.Equal(t, "docs", second.Body())
	assert.Equal(t, int32(1), hits.Load())
}

type statusRenderer struct {
	status func() Status
	seen   Status
}

func (r *statusRenderer) Render(t content.Target) error {
	r.seen = r.status()
	t.SetText("ok")
	return nil
}

func (r *statusRenderer) Unmount() {}

func TestRendererReadsRouteStatus(t *testing.T) {
	e := newEnv(t, "/")
	renderer := &statusRenderer{}
	rt, target := mountRoute(t, e, nil, Options{
		Path:      "/self",
		Component: content.Component{Renderer: renderer},
	})
	renderer.status = rt.Status

	e.goTo(t, "/self")
	done := make(chan struct{})
	go func() {
		rt.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("render did not finish")
	}

	assert.Equal(t, Loading, renderer.seen)
	assert.Equal(t, Loaded, rt.Status())
	assert.Equal(t, "ok", target.Body())
}

type blockingRenderer struct {
	entered chan struct{}
	release chan struct{}
	countingRenderer
}

func (r *blockingRenderer) Render(t content.Target) error {
	close(r.entered)
	<-r.release
	t.SetText("late")
	return nil
}

func TestUnmountDuringRenderClearsTarget(t *testing.T) {
	e := newEnv(t, "/")
	renderer := &blockingRenderer{entered: make(chan struct{}), release: make(chan struct{})}
	target := &fakeTarget{}
	rt := New(e.router, nil, target, Options{
		Path:      "/slow",
		Component: content.Component{Renderer: renderer},
	})
	require.NoError(t, rt.Mount())

	e.goTo(t, "/slow")
	<-renderer.entered
	rt.Unmount()
	assert.Equal(t, Idle, rt.Status())

	close(renderer.release)
	rt.Wait()

	assert.Equal(t, Idle, rt.Status())
	assert.Equal(t, "", target.Body())
	assert.Equal(t, 1, renderer.unmounted)
}

func TestRouteRegistersItself(t *testing.T) {
	e := newEnv(t, "/")
	mountRoute(t, e, nil, Options{Path: "/users/", Title: "Users"})

	routes := e.router.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "/", routes[0].Pathname)
	assert.Equal(t, "/users", routes[1].Pathname)

	meta, ok := e.router.RouteMeta("/users")
	require.True(t, ok)
	assert.Equal(t, "Users", meta["title"])

	e.goTo(t, "/users")
	assert.Equal(t, "Users", e.router.Title())
}

func TestRouteMetaIncludesTitle(t *testing.T) {
	e := newEnv(t, "/")
	mountRoute(t, e, nil, Options{Path: "/admin", Title: "Admin", Meta: router.Meta{"auth": true}})

	meta, ok := e.router.RouteMeta("/admin")
	require.True(t, ok)
	assert.Equal(t, router.Meta{"auth": true, "title": "Admin"}, meta)
}

func TestNestedRoutes(t *testing.T) {
	e := newEnv(t, "/")
	parent, parentTarget := mountRoute(t, e, nil, Options{Path: "/app", Prefix: true})
	child, childTarget := mountRoute(t, e, nil, Options{Path: "/:name/details", Parent: parent})

	assert.Equal(t, "/app/:name/details", child.FullPath())

	e.goTo(t, "/app/demo/details")
	assert.False(t, parentTarget.Hidden())
	assert.False(t, childTarget.Hidden())
	assert.Equal(t, Loaded, child.Status())
	assert.Equal(t, router.Params{"name": "demo"}, e.router.CurrentParams())

	e.goTo(t, "/app")
	assert.False(t, parentTarget.Hidden())
	assert.True(t, childTarget.Hidden())
}

func TestRouteWithQueryInPath(t *testing.T) {
	e := newEnv(t, "/")
	rt, target := mountRoute(t, e, nil, Options{Path: "/list?view=grid"})

	e.goTo(t, "/list?view=grid")
	assert.Equal(t, Loaded, rt.Status())
	assert.False(t, target.Hidden())

	e.goTo(t, "/list?view=table")
	assert.True(t, target.Hidden())
	assert.True(t, e.router.IsRegistered("/list"))
}

func TestRouteHashMode(t *testing.T) {
	e := newEnv(t, "/", router.WithMode(router.ModeHash))
	rt, _ := mountRoute(t, e, userLoader(), Options{Path: "/users/:id", Src: "/pages/user.js"})

	e.goTo(t, "/users/3")
	rt.Wait()
	assert.Equal(t, "#/users/3", e.mem.Location().Hash)
	assert.Equal(t, Loaded, rt.Status())
}

func TestQueryRoute(t *testing.T) {
	e := newEnv(t, "/")
	parent, _ := mountRoute(t, e, nil, Options{Path: "/settings"})

	target := &fakeTarget{}
	q := NewQuery(e.router, nil, target, QueryOptions{Parent: parent, Key: "tab", Value: "profile"})
	require.NoError(t, q.Mount())
	defer q.Unmount()

	assert.Equal(t, Idle, q.Status())

	e.goTo(t, "/settings?tab=profile")
	assert.Equal(t, Loaded, q.Status())
	assert.False(t, target.Hidden())

	e.goTo(t, "/settings?tab=billing")
	assert.Equal(t, Idle, q.Status())
	assert.True(t, target.Hidden())

	e.goTo(t, "/settings?tab=profile")
	e.goTo(t, "/elsewhere?tab=billing")
	assert.Equal(t, Loaded, q.Status(), "a non-matching parent leaves the state alone")
}

func TestQueryRouteLoadsContent(t *testing.T) {
	e := newEnv(t, "/")

	loader := content.NewLoader()
	loader.RegisterModules(map[string]content.ModuleLoader{
		"tab": func(context.Context) (content.Content, error) { return content.Node{Markup: "<section>"}, nil },
	})

	target := &fakeTarget{}
	q := NewQuery(e.router, loader, target, QueryOptions{Key: "panel", Value: "1", Src: "tab"})
	require.NoError(t, q.Mount())
	defer q.Unmount()

	e.goTo(t, "/anything?panel=1")
	q.Wait()
	assert.Equal(t, Loaded, q.Status())
	assert.Equal(t, "<section>", target.Body())
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		parent, child, want string
	}{
		{"/", "/a", "/a"},
		{"/app", "/a", "/app/a"},
		{"/app/", "a", "/app/a"},
		{"/app?x=1", "/a", "/app/a"},
		{"/app", "", "/app"},
	}
	for _, tt := range tests {
		if got := joinPath(tt.parent, tt.child); got != tt.want {
			t.Errorf("joinPath(%q, %q) = %q, want %q", tt.parent, tt.child, got, tt.want)
		}
	}
}
