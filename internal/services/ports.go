// Package services orchestrates the finance engine, storage and messaging.
package services

import (
	"context"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// Storage ports. *storage.SQLiteRepository satisfies all of them.
type (
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, bool, error)
		InsertTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	SeriesStore interface {
		CreateSeries(ctx context.Context, rs core.RecurringSeries) (core.RecurringSeries, error)
		GetSeries(ctx context.Context, id string) (core.RecurringSeries, error)
		ListSeries(ctx context.Context, activeOnly bool) ([]core.RecurringSeries, error)
		SaveOccurrences(ctx context.Context, seriesID string, txs []core.Transaction, lastGenerated core.Date) ([]core.Transaction, error)
		DeactivateSeries(ctx context.Context, id string) error
	}

	CardStore interface {
		CreateCard(ctx context.Context, c core.Card) (core.Card, error)
		GetCard(ctx context.Context, id string) (core.Card, error)
		ListCards(ctx context.Context) ([]core.Card, error)
	}

	AggregateStore interface {
		SumNet(ctx context.Context, from, to core.Date, scope storage.NetScope) (int64, error)
		MonthlyNets(ctx context.Context, year int) (map[time.Month]int64, error)
		EarliestTransactionDate(ctx context.Context) (core.Date, bool, error)
		ReadMonthOverview(ctx context.Context, year int, month time.Month) (core.MonthOverview, error)
	}
)

// SyncPublisher announces stored transactions to the export worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string, version int64) error
}

// Purger drops cached views derived from stored transactions.
type Purger interface {
	Purge()
}
