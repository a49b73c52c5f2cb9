package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"finlens/internal/core"
	"finlens/internal/ledger"
)

// Store keeps records in memory. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items []core.MoneyRecord
	now   func() time.Time
}

var _ ledger.Store = (*Store)(nil)

func New(records ...core.MoneyRecord) *Store {
	s := &Store{now: time.Now}
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		s.items = append(s.items, r)
	}
	return s
}

// NewFromFiles seeds the store from incomes.json and expenses.json in base.
// Each file holds an array of documents whose dates may use any raw shape.
// Missing files are treated as empty collections. Documents without an owner
// or with a negative amount are skipped.
func NewFromFiles(base string) (*Store, error) {
	var seed []core.MoneyRecord
	skipped := 0
	for _, kind := range []core.Kind{core.Income, core.Expense} {
		path := ledger.SeedPath(base, kind)
		docs, err := ledger.ReadDocuments(path)
		if err != nil {
			return nil, err
		}
		for i, d := range docs {
			if err := d.Check(); err != nil {
				slog.Warn("Skipping seed document", "file", path, "index", i, "error", err)
				skipped++
				continue
			}
			seed = append(seed, d.Record(kind))
		}
	}
	slog.Info("Seeded memory store", "dir", base, "records", len(seed), "skipped", skipped)
	return New(seed...), nil
}

// Append stores the record and returns its generated id.
func (s *Store) Append(_ context.Context, r core.MoneyRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	r.ID = uuid.NewString()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return r.ID, nil
}

// ListRecords returns the user's records of kind in insertion order.
func (s *Store) ListRecords(_ context.Context, userID string, kind core.Kind) ([]core.MoneyRecord, error) {
	if userID == "" {
		return nil, core.ErrEmptyUserID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.MoneyRecord, 0)
	for _, r := range s.items {
		if r.UserID == userID && r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) GetRecord(_ context.Context, id string) (core.MoneyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.items {
		if r.ID == id {
			return r, nil
		}
	}
	return core.MoneyRecord{}, ledger.ErrNotFound
}
