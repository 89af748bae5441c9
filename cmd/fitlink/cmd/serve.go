package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	fitlinkgin "github.com/pilab-dev/fitlink/api/gin"
	"github.com/pilab-dev/fitlink/internal/metrics"
	"github.com/pilab-dev/fitlink/internal/server"
	"github.com/pilab-dev/fitlink/internal/telemetry"
	"github.com/pilab-dev/fitlink/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		tp, err := telemetry.InitTracerProvider(ctx, cfg.Otel.ServiceName, os.Stdout)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics.InitCustomMetrics(reg)

		mp, err := telemetry.InitMeterProvider(reg)
		if err != nil {
			return err
		}
		defer telemetry.Shutdown(context.WithoutCancel(ctx), tp, mp)

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

		srv := server.NewHTTPServer(cfg, appLogger, server.HTTPDeps{
			OAuth:       fitlinkgin.NewOAuthAPI(a.handshakes, a.connections),
			Providers:   fitlinkgin.NewProvidersAPI(a.connections, a.syncs, a.tracker, a.registry),
			Gatherer:    reg,
			HealthCheck: a.HealthCheck,
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			appLogger.Info(gctx, "HTTP server listening", log.Fields{"addr": srv.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			appLogger.Info(gctx, "Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}
