package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/core"
)

// Document is a record as stored in the incomes and expenses collections.
// Date keeps whatever shape it was written with; it is normalized only when
// the document is converted to a record.
type Document struct {
	ID        string          `json:"id,omitempty"`
	UserID    string          `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Date      core.RawDate    `json:"date"`
	Category  string          `json:"category,omitempty"`
	Source    string          `json:"source,omitempty"`
	Title     string          `json:"title,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

// Record converts the document into a record of kind. Expenses read their
// label from category and incomes from source. An unresolvable date yields
// a record with a zero OccurredAt, which aggregation skips.
func (d Document) Record(kind core.Kind) core.MoneyRecord {
	label := d.Category
	if kind == core.Income {
		label = d.Source
	}
	r := core.MoneyRecord{
		ID:         d.ID,
		UserID:     d.UserID,
		Kind:       kind,
		Amount:     d.Amount,
		OccurredAt: core.NormalizeDate(d.Date),
		Label:      strings.TrimSpace(label),
		Title:      d.Title,
	}
	if d.CreatedAt != nil {
		r.CreatedAt = *d.CreatedAt
	}
	return r
}

// Check reports whether the document can be loaded as a record. An
// unresolvable date is allowed.
func (d Document) Check() error {
	if strings.TrimSpace(d.UserID) == "" {
		return core.ErrEmptyUserID
	}
	if d.Amount.IsNegative() {
		return core.ErrInvalidAmount
	}
	return nil
}

// DocumentOf is the inverse of Record. The date is stored as YYYY-MM-DD.
func DocumentOf(r core.MoneyRecord) Document {
	d := Document{
		ID:     r.ID,
		UserID: r.UserID,
		Amount: r.Amount,
		Date:   core.RawDateString(r.OccurredAt.String()),
		Title:  r.Title,
	}
	if r.Kind == core.Income {
		d.Source = r.Label
	} else {
		d.Category = r.Label
	}
	if !r.CreatedAt.IsZero() {
		t := r.CreatedAt
		d.CreatedAt = &t
	}
	return d
}

// ReadDocuments loads a JSON array of documents from path. A missing file is
// an empty collection.
func ReadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return docs, nil
}

// SeedPath is where the seed documents of kind live under dir.
func SeedPath(dir string, kind core.Kind) string {
	return filepath.Join(dir, kind.Collection()+".json")
}
