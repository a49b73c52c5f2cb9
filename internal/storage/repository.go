package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finlens/internal/core"
	"finlens/internal/ledger"

	_ "modernc.org/sqlite"
)

// createdAtLayout sorts lexically in insertion order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository stores records in one table per kind. The date column
// keeps the raw text it was written with and is normalized on read.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("Record schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements ledger.RecordWriter.
func (r *SQLiteRepository) Append(ctx context.Context, rec core.MoneyRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}
	doc := ledger.DocumentOf(rec)
	id, err := r.insert(ctx, rec.Kind, doc)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"kind", rec.Kind,
		"user_id", rec.UserID,
		"amount", rec.Amount.String(),
		"date", rec.OccurredAt.String())

	return id, nil
}

// InsertDocument stores a raw document as-is, keeping its date shape.
func (r *SQLiteRepository) InsertDocument(ctx context.Context, kind core.Kind, doc ledger.Document) (string, error) {
	if !kind.IsValid() {
		return "", core.ErrInvalidKind
	}
	if doc.UserID == "" {
		return "", core.ErrEmptyUserID
	}
	return r.insert(ctx, kind, doc)
}

func (r *SQLiteRepository) insert(ctx context.Context, kind core.Kind, doc ledger.Document) (string, error) {
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	created := r.now().UTC()
	if doc.CreatedAt != nil {
		created = doc.CreatedAt.UTC()
	}
	label := doc.Category
	if kind == core.Income {
		label = doc.Source
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, user_id, amount, date, label, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, kind.Collection())
	_, err := r.db.ExecContext(ctx, query,
		id, doc.UserID, doc.Amount.String(), doc.Date.Text(), label, doc.Title,
		created.Format(createdAtLayout))
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", kind.Collection(), err)
	}
	return id, nil
}

// ListRecords implements ledger.RecordLister.
func (r *SQLiteRepository) ListRecords(ctx context.Context, userID string, kind core.Kind) ([]core.MoneyRecord, error) {
	if userID == "" {
		return nil, core.ErrEmptyUserID
	}
	if !kind.IsValid() {
		return nil, core.ErrInvalidKind
	}

	query := fmt.Sprintf(`SELECT id, user_id, amount, date, label, title, created_at
		FROM %s WHERE user_id = ? ORDER BY created_at, id`, kind.Collection())
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Collection(), err)
	}
	defer rows.Close()

	out := make([]core.MoneyRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind.Collection(), err)
	}
	return out, nil
}

// GetRecord implements ledger.RecordReader, searching both tables.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (core.MoneyRecord, error) {
	for _, kind := range []core.Kind{core.Income, core.Expense} {
		query := fmt.Sprintf(`SELECT id, user_id, amount, date, label, title, created_at
			FROM %s WHERE id = ?`, kind.Collection())
		rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id), kind)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return core.MoneyRecord{}, err
		}
		return rec, nil
	}
	return core.MoneyRecord{}, ledger.ErrNotFound
}

// Count returns the number of rows of kind.
func (r *SQLiteRepository) Count(ctx context.Context, kind core.Kind) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, kind.Collection())).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", kind.Collection(), err)
	}
	return n, nil
}

// ImportSeed loads the seed documents in dir into empty tables. Tables that
// already hold rows are left alone.
func (r *SQLiteRepository) ImportSeed(ctx context.Context, dir string) (int, error) {
	imported := 0
	for _, kind := range []core.Kind{core.Income, core.Expense} {
		n, err := r.Count(ctx, kind)
		if err != nil {
			return imported, err
		}
		if n > 0 {
			continue
		}
		path := ledger.SeedPath(dir, kind)
		docs, err := ledger.ReadDocuments(path)
		if err != nil {
			return imported, err
		}
		for i, doc := range docs {
			if err := doc.Check(); err != nil {
				slog.WarnContext(ctx, "Skipping seed document", "file", path, "index", i, "error", err)
				continue
			}
			if _, err := r.InsertDocument(ctx, kind, doc); err != nil {
				return imported, err
			}
			imported++
		}
	}
	if imported > 0 {
		slog.InfoContext(ctx, "Imported seed documents", "dir", dir, "records", imported)
	}
	return imported, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, kind core.Kind) (core.MoneyRecord, error) {
	var (
		id, userID, amount, date, label, title, created string
	)
	if err := row.Scan(&id, &userID, &amount, &date, &label, &title, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.MoneyRecord{}, err
		}
		return core.MoneyRecord{}, fmt.Errorf("scan %s: %w", kind.Collection(), err)
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return core.MoneyRecord{}, fmt.Errorf("parse amount of %s: %w", id, err)
	}
	createdAt, _ := time.Parse(createdAtLayout, created)

	return core.MoneyRecord{
		ID:         id,
		UserID:     userID,
		Kind:       kind,
		Amount:     amt,
		OccurredAt: core.NormalizeDate(core.ParseRawDateText(date)),
		Label:      label,
		Title:      title,
		CreatedAt:  createdAt,
	}, nil
}
