package main

import (
	"context"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/cli"
	applog "cashflow/internal/log"
	"cashflow/internal/metrics"
	"cashflow/internal/services"

	"github.com/robfig/cron/v3"
)

// cronLogger routes scheduler events into the structured logger.
type cronLogger struct {
	logger *applog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.DebugContext(context.Background(), "cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.ErrorContext(context.Background(), "cron: "+msg, append(keysAndValues, applog.FieldError, err)...)
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("recurring-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	logger.InfoContext(context.Background(), "Starting recurring-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.WarnContext(context.Background(), "Failed to initialize AMQP client, continuing in SQLite-only mode",
				applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	// The API process owns the dashboard cache and its TTL covers these writes.
	transactions := services.NewTransactionService(repo, publisher, nil, logger)
	recurring := services.NewRecurringService(repo, transactions, cfg.SeriesMaxOccurrences, logger)
	runs := metrics.Default().RecurringRunsTotal

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	process := func() {
		start := time.Now()
		created, err := recurring.ProcessActive(ctx, start)
		if err != nil {
			runs.WithLabelValues("error").Inc()
			logger.ErrorContext(ctx, "Recurring processing failed",
				applog.FieldError, err,
				applog.FieldCount, created)
			return
		}
		runs.WithLabelValues("success").Inc()
		logger.InfoContext(ctx, "Recurring processing complete",
			applog.FieldCount, created,
			applog.FieldDuration, time.Since(start).Milliseconds())
	}

	scheduler := cron.New(
		cron.WithLogger(cronLogger{logger: logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: logger})),
	)
	if _, err := scheduler.AddFunc(cfg.RecurringSchedule, process); err != nil {
		logger.ErrorContext(ctx, "Invalid recurring schedule", applog.FieldError, err, "schedule", cfg.RecurringSchedule)
		return
	}

	logger.InfoContext(ctx, "Running initial recurring processing", "schedule", cfg.RecurringSchedule)
	process()

	scheduler.Start()
	cli.WaitForShutdown(ctx, done)

	// Stop returns a context done once a running job has finished.
	select {
	case <-scheduler.Stop().Done():
		logger.InfoContext(context.Background(), "Recurring-worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.WarnContext(context.Background(), "Shutdown timeout reached with a run in progress")
	}
}
