package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/winspan/listsync/internal/web"
)

func (a *App) serveCommand() *cobra.Command {
	var listen string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API and optional periodic sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				a.cfg.Serve.Listen = listen
			}
			if cmd.Flags().Changed("interval") {
				a.cfg.Serve.Interval = interval
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "admin listen address (default 127.0.0.1:8088)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "periodic sync interval, 0 disables")
	return cmd
}

func (a *App) serve(ctx context.Context) error {
	ls, err := a.selectedLists()
	if err != nil {
		return err
	}

	a.metrics.WithRuntime()
	rec := a.reconciler(ctx)

	r := chi.NewRouter()
	web.BindRoutes(r, rec, web.Config{
		Token:   a.cfg.Serve.AdminToken,
		Lists:   ls,
		Metrics: a.metrics.Handler(),
		Logger:  a.log,
	})

	httpSrv := &http.Server{
		Addr:              a.cfg.Serve.Listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("admin http listening on %s", a.cfg.Serve.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	if a.cfg.Serve.Interval > 0 {
		go rec.Start(ctx, a.cfg.Serve.Interval, ls, a.writeMetrics)
	}

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.log.Info("正在关闭管理接口")
	return httpSrv.Shutdown(shutdownCtx)
}
