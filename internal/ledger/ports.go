// Package ledger defines the record store ports and the raw document shape
// records take at rest.
package ledger

import (
	"context"
	"errors"

	"finlens/internal/core"
)

var ErrNotFound = errors.New("record not found")

// Ports for record stores.
type (
	RecordWriter interface {
		// Append validates and stores the record, returning its id.
		Append(ctx context.Context, r core.MoneyRecord) (id string, err error)
	}

	RecordLister interface {
		// ListRecords returns every record of kind owned by userID.
		ListRecords(ctx context.Context, userID string, kind core.Kind) ([]core.MoneyRecord, error)
	}

	RecordReader interface {
		GetRecord(ctx context.Context, id string) (core.MoneyRecord, error)
	}

	Store interface {
		RecordWriter
		RecordLister
		RecordReader
	}
)
