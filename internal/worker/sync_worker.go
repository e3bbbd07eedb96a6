package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	applog "cashflow/internal/log"
	"cashflow/internal/metrics"
	"cashflow/internal/sheets"
	"cashflow/internal/storage"
)

// SyncStore is the slice of storage the worker needs.
type SyncStore interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// SyncWorker exports stored transactions to the spreadsheet
type SyncWorker struct {
	store     SyncStore
	exporter  sheets.TransactionExporter
	batchSize int
	logger    *applog.Logger
	metrics   *metrics.Metrics
}

func NewSyncWorker(store SyncStore, exporter sheets.TransactionExporter, batchSize int, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
		logger:    logger.WithComponent(applog.ComponentWorker),
		metrics:   metrics.Default(),
	}
}

// HandleSyncMessage processes a single sync message from AMQP. A returned error
// asks the broker to redeliver.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		applog.FieldTransactionID, msg.ID,
		"version", msg.Version)

	t, err := w.store.GetTransaction(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		// deleted before the worker got to it
		w.metrics.SyncMessagesTotal.WithLabelValues("skipped").Inc()
		w.logger.WarnContext(ctx, "Transaction no longer exists, dropping sync message",
			applog.FieldTransactionID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.export(ctx, t); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	return nil
}

// ProcessPending exports up to one batch of transactions still marked pending.
// This is the backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger batch of pending rows after worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced == 0 {
		w.logger.InfoContext(ctx, "No pending transactions found on startup")
	}
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.GetPendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending transactions", applog.FieldCount, len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}

		t, err := w.store.GetTransaction(ctx, p.ID)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to get transaction",
				applog.FieldTransactionID, p.ID,
				applog.FieldError, err)
			if markErr := w.store.MarkSyncError(ctx, p.ID); markErr != nil {
				w.logger.ErrorContext(ctx, "Failed to mark sync error",
					applog.FieldTransactionID, p.ID,
					applog.FieldError, markErr)
			}
			failed++
			continue
		}

		if err := w.export(ctx, t); err != nil {
			failed++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Pending sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return synced, nil
}

// Run sweeps pending rows every interval until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "Pending sync sweep failed", applog.FieldError, err)
			}
		}
	}
}

func (w *SyncWorker) export(ctx context.Context, t core.Transaction) error {
	ref, err := w.exporter.Export(ctx, t)
	if err != nil {
		w.metrics.SyncMessagesTotal.WithLabelValues("error").Inc()
		w.logger.ErrorContext(ctx, "Failed to export transaction",
			applog.FieldTransactionID, t.ID,
			applog.FieldError, err)
		if markErr := w.store.MarkSyncError(ctx, t.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error",
				applog.FieldTransactionID, t.ID,
				applog.FieldError, markErr)
		}
		return err
	}

	if err := w.store.MarkSynced(ctx, t.ID); err != nil {
		// the row is in the sheet, only the local flag is stale
		w.logger.ErrorContext(ctx, "Failed to mark as synced",
			applog.FieldTransactionID, t.ID,
			applog.FieldError, err)
	}

	w.metrics.SyncMessagesTotal.WithLabelValues("synced").Inc()
	w.logger.InfoContext(ctx, "Successfully exported transaction",
		append(applog.NewFields().WithOperation(applog.OpSync).WithTransaction(t).ToSlice(), "row_ref", ref)...)
	return nil
}
