package services

import (
	"context"
	"fmt"

	"cashflow/internal/core"
	applog "cashflow/internal/log"
	"cashflow/internal/metrics"
	"cashflow/internal/storage"
)

// Transaction origins, used as the metrics "source" label.
const (
	SourceManual      = "manual"
	SourceRecurring   = "recurring"
	SourceInstallment = "installment"
)

// TransactionService stores transactions and fans out the side effects of a write:
// a sync message per new row and invalidation of cached dashboards.
type TransactionService struct {
	store     TransactionStore
	publisher SyncPublisher
	cache     Purger
	logger    *applog.Logger
	metrics   *metrics.Metrics
}

// NewTransactionService wires the service. publisher and cache may be nil.
func NewTransactionService(store TransactionStore, publisher SyncPublisher, cache Purger, logger *applog.Logger) *TransactionService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		cache:     cache,
		logger:    logger.WithComponent(applog.ComponentTransaction),
		metrics:   metrics.Default(),
	}
}

// Create validates and stores a manually entered transaction.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	stored, inserted, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	if inserted {
		s.afterWrite(ctx, SourceManual, []core.Transaction{stored})
	}

	s.logger.InfoContext(ctx, "Transaction created",
		applog.NewFields().WithOperation(applog.OpCreate).WithTransaction(stored).ToSlice()...)
	return stored, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Delete removes a transaction. Deleting a series occurrence does not stop the series.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	s.purge()
	s.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)
	return nil
}

// afterWrite runs the side effects of newly stored rows. Failures are logged, never
// returned: the rows are already committed and the sync sweep will pick them up.
func (s *TransactionService) afterWrite(ctx context.Context, source string, txs []core.Transaction) {
	if len(txs) == 0 {
		return
	}
	s.purge()

	for _, t := range txs {
		s.metrics.TransactionsCreatedTotal.WithLabelValues(string(t.Kind), source).Inc()
		s.publish(ctx, t.ID)
	}
}

func (s *TransactionService) publish(ctx context.Context, id string) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping sync message",
			applog.FieldTransactionID, id)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, 1); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			applog.FieldTransactionID, id,
			applog.FieldError, err)
	}
}

func (s *TransactionService) purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}
