// Package adapters lets the record stores serve as readiness-aware backends.
package adapters

import (
	"context"

	"finlens/internal/ledger"
	"finlens/internal/ledger/memory"
	"finlens/internal/storage"
)

// SQLiteAdapter exposes the SQLite repository as a backend. Readiness is a
// database ping.
type SQLiteAdapter struct {
	ledger.Store
	storage *storage.SQLiteRepository
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository) *SQLiteAdapter {
	return &SQLiteAdapter{Store: storage, storage: storage}
}

func (a *SQLiteAdapter) Ready(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

func (a *SQLiteAdapter) Name() string { return "sqlite" }

// MemoryAdapter exposes the in-memory store as a backend. It is always ready.
type MemoryAdapter struct {
	*memory.Store
}

func NewMemoryAdapter(store *memory.Store) *MemoryAdapter {
	return &MemoryAdapter{Store: store}
}

func (a *MemoryAdapter) Ready(context.Context) error { return nil }

func (a *MemoryAdapter) Name() string { return "memory" }
