package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pilab-dev/fitlink/internal/worker"
	"github.com/pilab-dev/fitlink/log"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process scheduled syncs from the Redis queue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

		srv := worker.NewServer(worker.RedisOpt(cfg.Redis), cfg.Worker.Concurrency)
		handler := worker.NewHandler(a.syncs, worker.WithTaskTimeout(cfg.OAuth.ExchangeTimeout+5*time.Minute))

		if err := srv.Start(worker.NewServeMux(handler)); err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
		appLogger.Info(ctx, "Sync worker started", log.Fields{"concurrency": cfg.Worker.Concurrency})

		<-ctx.Done()
		appLogger.Info(ctx, "Stopping sync worker")
		srv.Shutdown()

		return nil
	},
}

var enqueueSyncsCmd = &cobra.Command{
	Use:   "enqueue-syncs",
	Short: "Queue a sync for every active connection",
	Long:  `enqueue-syncs is meant to run from cron. A connection is queued at most once per worker.sync_interval.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

		client := asynq.NewClient(worker.RedisOpt(cfg.Redis))
		defer client.Close()

		res, err := worker.EnqueueSyncs(ctx, client, a.connections, cfg.Worker.SyncInterval)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "enqueued %d syncs, %d already queued\n", res.Enqueued, res.Skipped)
		return nil
	},
}
