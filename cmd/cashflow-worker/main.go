package main

import (
	"context"
	"errors"
	"os"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/backend"
	"cashflow/internal/cli"
	applog "cashflow/internal/log"
	"cashflow/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("cashflow-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	logger.InfoContext(context.Background(), "Starting cashflow-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	exportCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Invalid export configuration", applog.FieldError, err)
		os.Exit(1)
	}
	export, err := backend.NewFactory(logger).CreateExporter(context.Background(), exportCfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Failed to initialize exporter", applog.FieldError, err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(repo, export.Exporter, cfg.SyncBatchSize, logger)

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.ErrorContext(context.Background(), "Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		consumer = client
	} else {
		logger.InfoContext(context.Background(), "AMQP disabled, relying on the periodic sweep")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.InfoContext(ctx, "Performing startup sync check", "export_backend", export.Type.String())
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.ErrorContext(ctx, "Startup sync check failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeTransactionSync(gctx, syncWorker.HandleSyncMessage)
		})
	}
	g.Go(func() error {
		return syncWorker.Run(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.InfoContext(context.Background(), "Worker shutdown complete")
}
