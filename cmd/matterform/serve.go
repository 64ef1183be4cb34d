package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	matterform "github.com/goliatone/go-matterform"
)

func serveCmd(a *app) *cobra.Command {
	var sweepEvery time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP",
		Long: `Serve the HTML form at /matter and its JSON API at /api/matter.

Each browser session gets its own form. Idle sessions are closed after
session_ttl. The API contract is published at /openapi.json and metrics at
/metrics.

Examples:
  matterform serve
  matterform serve --listen-addr=:9000 --store-driver=sqlite --store-dsn=matters.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a, sweepEvery)
		},
	}

	cmd.Flags().String("listen-addr", "", "address to listen on (default :8080)")
	cmd.Flags().Duration("session-ttl", 0, "idle time before a session is closed")
	cmd.Flags().String("theme", "", "theme name")
	cmd.Flags().String("theme-variant", "", "theme variant (light, dark)")
	cmd.Flags().DurationVar(&sweepEvery, "sweep-interval", time.Minute, "how often idle sessions are swept")
	return cmd
}

func runServe(ctx context.Context, a *app, sweepEvery time.Duration) error {
	rt, err := matterform.NewRuntime(ctx, *a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			a.logger.Warn("serve: close runtime", zap.Error(err))
		}
	}()

	srv, err := rt.NewServer()
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		a.logger.Info("serve: listening",
			zap.String("addr", httpServer.Addr),
			zap.String("store", a.cfg.StoreDriver),
			zap.String("api", rt.Spec.Title()+" "+rt.Spec.Version()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		srv.RunJanitor(gctx, sweepEvery)
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
		defer cancel()
		a.logger.Info("serve: shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
