package memory

import (
	"context"
	"fmt"
	"sync"

	"cashflow/internal/core"
	ports "cashflow/internal/sheets"
)

// Store is an in-process exporter used when no spreadsheet is configured and in tests.
type Store struct {
	mu      sync.Mutex
	items   []core.Transaction
	failErr error
	fails   int
}

var _ ports.TransactionExporter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Export stores the transaction and returns a synthetic row reference.
func (s *Store) Export(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return "", s.failErr
	}
	s.items = append(s.items, t)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// FailNext makes the next n exports return err.
func (s *Store) FailNext(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails = n
	s.failErr = err
}

// Exported returns a copy of everything exported so far.
func (s *Store) Exported() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}
