// Package backend selects where the sync worker exports transactions.
package backend

import (
	"context"

	"cashflow/internal/sheets"
)

// Result is a ready exporter plus the backend that produced it.
type Result struct {
	Exporter sheets.TransactionExporter
	Type     Type
}

// Factory creates exporters from configuration.
type Factory interface {
	CreateExporter(ctx context.Context, cfg Config) (*Result, error)
}

// Type names an export backend.
type Type string

const (
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	return t == SheetsBackend || t == MemoryBackend
}

func (t Type) String() string {
	return string(t)
}
