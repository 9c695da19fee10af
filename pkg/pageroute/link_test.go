package pageroute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/pagerouter/pkg/router"
)

func TestLinkTarget(t *testing.T) {
	e := newEnv(t, "/app/demo/overview?page=2&sort=asc")
	parent := New(e.router, nil, &fakeTarget{}, Options{Path: "/app/:name", Prefix: true})

	tests := []struct {
		name string
		opts LinkOptions
		want string
	}{
		{"absolute", LinkOptions{Path: "/docs"}, "/docs"},
		{"current", LinkOptions{}, "/app/demo/overview"},
		{"parent", LinkOptions{Path: "$/settings", Parent: parent}, "/app/demo/settings"},
		{"parent root", LinkOptions{Path: "$", Parent: parent}, "/app/demo"},
		{"current prefix", LinkOptions{Path: "~/edit"}, "/app/demo/overview/edit"},
		{"search", LinkOptions{Path: "/docs", Search: "tab=api"}, "/docs?tab=api"},
		{"keep search", LinkOptions{Path: "/list", KeepCurrentSearch: true}, "/list?page=2&sort=asc"},
		{"keep and override", LinkOptions{Path: "/list", KeepCurrentSearch: true, Search: "?page=3"}, "/list?page=3&sort=asc"},
		{"path query merged", LinkOptions{Path: "/list?view=grid", Search: "page=1"}, "/list?view=grid&page=1"},
		{"trailing slash", LinkOptions{Path: "~/"}, "/app/demo/overview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLink(e.router, tt.opts)
			assert.Equal(t, tt.want, l.Target())
		})
	}
}

func TestLinkHref(t *testing.T) {
	e := newEnv(t, "/")
	l := NewLink(e.router, LinkOptions{Path: "/docs", Search: "tab=api"})

	assert.Equal(t, "/docs?tab=api", l.Href())

	require.NoError(t, e.router.SetRoutingMode(router.ModeHash))
	assert.Equal(t, "#/docs?tab=api", l.Href())
}

func TestLinkClick(t *testing.T) {
	e := newEnv(t, "/")
	l := NewLink(e.router, LinkOptions{
		Path:    "/orders",
		Title:   "Orders",
		Payload: map[string]any{"from": "menu"},
	})

	require.NoError(t, l.Click(context.Background()))
	assert.Equal(t, "/orders", e.mem.Location().Pathname)
	assert.Equal(t, router.State{"from": "menu"}, e.router.CurrentState())
	assert.Equal(t, "Orders", e.router.Title())
}

func TestLinkActive(t *testing.T) {
	e := newEnv(t, "/")

	var changes []bool
	exact := NewLink(e.router, LinkOptions{Path: "/docs", OnActive: func(active bool) { changes = append(changes, active) }})
	prefix := NewLink(e.router, LinkOptions{Path: "/docs", Prefix: true})
	exact.Mount()
	prefix.Mount()
	defer exact.Unmount()
	defer prefix.Unmount()

	assert.False(t, exact.Active())
	assert.Empty(t, changes)

	e.goTo(t, "/docs")
	assert.True(t, exact.Active())
	assert.True(t, prefix.Active())

	e.goTo(t, "/docs/intro")
	assert.False(t, exact.Active())
	assert.True(t, prefix.Active())

	assert.Equal(t, []bool{true, false}, changes)
}

func TestRedirectUnknown(t *testing.T) {
	e := newEnv(t, "/")
	e.router.RegisterRoute("/")
	e.router.RegisterRoute("/home")

	rd := NewRedirect(e.router, RedirectOptions{Path: "/home"})
	rd.Mount()
	defer rd.Unmount()

	e.goTo(t, "/home")
	assert.Equal(t, "/home", e.mem.Location().Pathname)

	e.goTo(t, "/nope")
	assert.Equal(t, "/home", e.mem.Location().Pathname)
}

func TestRedirectUnknownUnderParent(t *testing.T) {
	e := newEnv(t, "/")
	parent, _ := mountRoute(t, e, nil, Options{Path: "/docs", Prefix: true})
	mountRoute(t, e, nil, Options{Path: "/intro", Parent: parent})

	rd := NewRedirect(e.router, RedirectOptions{Path: "$/intro", Parent: parent})
	rd.Mount()
	defer rd.Unmount()

	e.goTo(t, "/docs/missing")
	assert.Equal(t, "/docs/intro", e.mem.Location().Pathname)

	e.goTo(t, "/elsewhere")
	assert.Equal(t, "/elsewhere", e.mem.Location().Pathname, "paths outside the parent are left alone")
}

func TestRedirectAlways(t *testing.T) {
	e := newEnv(t, "/")
	parent, _ := mountRoute(t, e, nil, Options{Path: "/docs", Prefix: true})
	mountRoute(t, e, nil, Options{Path: "/intro", Parent: parent})
	mountRoute(t, e, nil, Options{Path: "/faq", Parent: parent})

	rd := NewRedirect(e.router, RedirectOptions{Path: "$/intro", Type: RedirectAlways, Parent: parent})
	rd.Mount()
	defer rd.Unmount()

	e.goTo(t, "/docs")
	assert.Equal(t, "/docs/intro", e.mem.Location().Pathname)

	e.goTo(t, "/docs/faq")
	assert.Equal(t, "/docs/faq", e.mem.Location().Pathname)

	e.goTo(t, "/docs?tab=1")
	assert.Equal(t, "/docs", e.mem.Location().Pathname, "a query keeps the bare parent")
}

func TestRedirectToUnknownTerminates(t *testing.T) {
	e := newEnv(t, "/")
	e.router.RegisterRoute("/")

	rd := NewRedirect(e.router, RedirectOptions{Path: "/also-unknown"})
	rd.Mount()
	defer rd.Unmount()

	e.goTo(t, "/nope")
	assert.Equal(t, "/also-unknown", e.mem.Location().Pathname)
}

func TestUnderPath(t *testing.T) {
	assert.True(t, underPath("/docs", "/"))
	assert.True(t, underPath("/docs", "/docs"))
	assert.True(t, underPath("/docs/a", "/docs"))
	assert.False(t, underPath("/docsa", "/docs"))
}

func TestData(t *testing.T) {
	e := newEnv(t, "/")
	e.router.RegisterRoute("/users/:id")

	param := &fakeTarget{}
	search := &fakeTarget{}
	nested := &fakeTarget{}
	whole := &fakeTarget{}

	elements := []*Data{
		NewData(e.router, param, DataOptions{Param: "id"}),
		NewData(e.router, search, DataOptions{SearchParam: "tab"}),
		NewData(e.router, nested, DataOptions{Key: "user.name"}),
		NewData(e.router, whole, DataOptions{}),
	}
	for _, d := range elements {
		d.Mount()
		defer d.Unmount()
	}

	assert.Equal(t, "", param.Body())
	assert.Equal(t, "", whole.Body())

	require.NoError(t, e.router.GoToPage(context.Background(), "/users/42?tab=posts",
		router.WithState(map[string]any{"user": map[string]any{"name": "Ada", "age": 36}})))

	assert.Equal(t, "42", param.Body())
	assert.Equal(t, "posts", search.Body())
	assert.Equal(t, "Ada", nested.Body())
	assert.JSONEq(t, `{"user":{"name":"Ada","age":36}}`, whole.Body())
}

func TestDataMissingKeyStopsWalking(t *testing.T) {
	e := newEnv(t, "/")
	require.NoError(t, e.router.GoToPage(context.Background(), "/",
		router.WithState(map[string]any{"user": map[string]any{"name": "Ada"}})))

	d := NewData(e.router, &fakeTarget{}, DataOptions{Key: "user.email"})
	assert.JSONEq(t, `{"name":"Ada"}`, d.Value())
}
