package memory

import (
	"context"
	"errors"
	"testing"

	"cashflow/internal/core"
)

func validTx() core.Transaction {
	return core.Transaction{
		ID:          "t1",
		Kind:        core.Expense,
		Date:        core.NewDate(2025, 1, 1),
		Description: "t",
		Amount:      core.Money{Cents: 123},
		Category:    "A",
	}
}

func TestStoreExport(t *testing.T) {
	s := New()

	ref, err := s.Export(context.Background(), validTx())
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}
	if got := s.Exported(); len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("unexpected exported rows: %v", got)
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	s := New()
	bad := validTx()
	bad.Description = ""
	if _, err := s.Export(context.Background(), bad); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("Export() error = %v, want ErrEmptyDescription", err)
	}
}

func TestStoreFailNext(t *testing.T) {
	s := New()
	boom := errors.New("quota exceeded")
	s.FailNext(1, boom)

	if _, err := s.Export(context.Background(), validTx()); !errors.Is(err, boom) {
		t.Fatalf("first Export() error = %v, want %v", err, boom)
	}
	if _, err := s.Export(context.Background(), validTx()); err != nil {
		t.Fatalf("second Export() error = %v", err)
	}
	if len(s.Exported()) != 1 {
		t.Errorf("Exported() len = %d, want 1", len(s.Exported()))
	}
}
