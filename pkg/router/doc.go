// Package router implements the page router engine: the route registry,
// the guard pipeline, push/replace navigation, the path-change broadcaster
// and the routing-mode adapter that hides whether the routed path lives in
// the real pathname or in the URL fragment.
//
// A Router is the whole routing context. It owns no globals, so tests and
// independent browser sessions each create their own:
//
//	r := router.New(history.NewMemory("/"))
//	defer r.Close()
//
//	r.RegisterRoute("/app/:name/details")
//	r.RegisterGlobalGuard(router.GuardFunc(func(ctx context.Context, nav router.Navigation) (router.Decision, error) {
//	    if nav.Pathname == "/admin" && !loggedIn() {
//	        return router.Redirect("/login"), nil
//	    }
//	    return router.Allow(), nil
//	}))
//
//	unsubscribe := r.Subscribe(func(s router.Snapshot) {
//	    // s.Pathname, s.Query, s.State
//	})
//	defer unsubscribe()
//
//	_ = r.GoToPage(ctx, "/app/my-app/details", router.WithState(map[string]any{"from": "home"}))
//	r.CurrentParams() // {"name": "my-app"}
//
// # Navigation
//
// GoToPage and ReplacePage run every global guard, then every guard whose
// pattern matches the target, strictly in order. The first Block cancels
// the navigation silently; the first Redirect restarts the pipeline with
// the new target. Reaching a target that was already visited during the
// same navigation is a redirect loop and is treated as Block. Guard errors
// and panics are logged and also block; they are never returned.
//
// # Routing modes
//
// In ModeHistory the pathname and search of the History location are the
// routed path. In ModeHash they are read from, and written to, the
// fragment as "#/path?query"; the real pathname is never touched.
package router
