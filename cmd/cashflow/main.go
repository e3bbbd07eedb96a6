package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/cache"
	"cashflow/internal/cli"
	apphttp "cashflow/internal/http"
	applog "cashflow/internal/log"
	"cashflow/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("cashflow")
	cfg := cli.LoadAndValidateConfig(logger)
	ctx := context.Background()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	checks := map[string]apphttp.Pinger{"sqlite": repo}

	// Left as a nil interface when AMQP is off, never a typed nil *amqp.Client.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.WarnContext(ctx, "AMQP unavailable, transactions will be picked up by the sync sweep",
				applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			checks["amqp"] = client
			logger.InfoContext(ctx, "AMQP publisher ready", "exchange", cfg.AMQPExchange)
		}
	}

	dashCache := cache.NewLRUCache[services.Dashboard](64, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(dashCache)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	dashboard := services.NewDashboardService(repo, dashCache, cfg.ProjectionWindowDays, logger)
	transactions := services.NewTransactionService(repo, publisher, dashboard, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Transactions: transactions,
		Recurring:    services.NewRecurringService(repo, transactions, cfg.SeriesMaxOccurrences, logger),
		Installments: services.NewInstallmentService(repo, repo, transactions, logger),
		Dashboard:    dashboard,
		Checks:       checks,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", applog.FieldError, err)
		}
	})

	logger.InfoContext(ctx, "Starting cashflow server", "port", cfg.Port, "amqp", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.InfoContext(ctx, "Server stopped gracefully")
}
