package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pagerouter/internal/config"
	"github.com/vango-dev/pagerouter/pkg/history"
	"github.com/vango-dev/pagerouter/pkg/router"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long: `List the routes of pagerouter.json in lookup order.

Lookups return the first registered route that matches, so a route
listed after an equal template is never reached.

Examples:
  pagerouter routes
  pagerouter routes --config site/pagerouter.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			logger, err := flags.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			r := newConfigRouter(cfg, history.NewMemory("/"), logger)
			defer r.Close()

			return printRoutes(cmd.OutOrStdout(), cfg, r)
		},
	}
}

// newConfigRouter registers the configured routes the way serve mounts
// them: "/" first, then each route in file order.
func newConfigRouter(cfg *config.Config, h history.History, logger *slog.Logger) *router.Router {
	r := router.New(h,
		router.WithMode(cfg.RoutingMode()),
		router.WithLogger(logger),
		router.WithScheduler(func(func()) {}),
	)
	r.RegisterRoute("/")
	for _, rc := range cfg.Routes {
		opts := []router.RouteOption{router.Exact(rc.IsExact())}
		if meta := routeMeta(rc); meta != nil {
			opts = append(opts, router.WithMeta(meta))
		}
		pathname, _ := routepath.SplitPathAndQuery(rc.Path)
		r.RegisterRoute(pathname, opts...)
	}
	return r
}

func routeMeta(rc config.RouteConfig) router.Meta {
	if rc.Meta == nil && rc.Title == "" {
		return nil
	}
	meta := make(router.Meta, len(rc.Meta)+1)
	for k, v := range rc.Meta {
		meta[k] = v
	}
	if rc.Title != "" {
		meta["title"] = rc.Title
	}
	return meta
}

func printRoutes(w io.Writer, cfg *config.Config, r *router.Router) error {
	src := make(map[string]string)
	for _, rc := range cfg.Routes {
		pathname, _ := routepath.SplitPathAndQuery(rc.Path)
		pathname = routepath.CleanPathname(pathname)
		if _, ok := src[pathname]; !ok {
			src[pathname] = rc.Src
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tEXACT\tSRC\tTITLE")
	for _, rt := range r.Routes() {
		title, _ := rt.Meta["title"].(string)
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", rt.Pathname, rt.Exact, dash(src[rt.Pathname]), dash(title))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
