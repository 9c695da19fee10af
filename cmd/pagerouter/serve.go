package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pagerouter/pkg/content"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route table to browsers",
		Long: `Start the HTTP server.

Every page load gets a shell document whose script opens a WebSocket
bridge. The server then drives the tab's history and renders route
content into it.

Examples:
  pagerouter serve
  pagerouter serve --addr=:9000
  PAGEROUTER_MODE=hash pagerouter serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := flags.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var loaderOpts []content.LoaderOption
			if cfg.Content.S3.Enabled {
				client, err := newS3Client(ctx, cfg.Content.S3)
				if err != nil {
					return err
				}
				loaderOpts = append(loaderOpts, content.WithS3(client))
			}

			srv := newServer(cfg, logger, loaderOpts...)
			httpServer := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			out := cmd.OutOrStdout()
			printBanner(out)
			success(out, "Serving %d routes on %s (%s mode)", len(cfg.Routes), cfg.Server.Addr, cfg.RoutingMode())
			if cfg.MetricsEnabled() {
				info(out, "Metrics at %s", cfg.Server.MetricsPath)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			info(out, "Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from pagerouter.json)")

	return cmd
}
