package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pagerouter/internal/errors"
	"github.com/vango-dev/pagerouter/pkg/history"
	"github.com/vango-dev/pagerouter/pkg/router"
)

func matchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "match <path>",
		Short: "Show which route a path resolves to",
		Long: `Navigate an in-memory history to <path> and report the route,
parameters and query the router sees there.

In hash mode the path may be given as a fragment ("#/users/7").

Examples:
  pagerouter match /users/7
  pagerouter match "/search?q=go&page=2"
  pagerouter match "#/users/7"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			logger, err := flags.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			target := strings.TrimPrefix(args[0], "#")
			if !strings.HasPrefix(target, "/") {
				return errors.New("R010").
					WithDetailf("path %q must start with / or #/", args[0])
			}

			r := newConfigRouter(cfg, history.NewMemory("/"), logger)
			defer r.Close()

			if err := r.GoToPage(cmd.Context(), target); err != nil {
				return err
			}
			return printMatch(cmd.OutOrStdout(), r)
		},
	}
}

func printMatch(w io.Writer, r *router.Router) error {
	pathname := r.CurrentPathname()
	route, params, ok := r.MatchRoute(pathname)
	if !ok {
		return fmt.Errorf("no route matches %q", pathname)
	}

	info(w, "Route:  %s", route.Pathname)
	info(w, "URL:    %s", r.History().Location().String())
	if title, ok := route.Meta["title"].(string); ok {
		info(w, "Title:  %s", title)
	}
	for _, k := range sortedKeys(params) {
		info(w, "Param:  %s=%s", k, params[k])
	}
	query := r.CurrentQuery()
	for _, k := range sortedKeys(query) {
		info(w, "Query:  %s=%v", k, query[k])
	}
	return nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
