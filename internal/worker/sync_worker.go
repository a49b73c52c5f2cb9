// Package worker mirrors committed records to the spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finlens/internal/amqp"
	"finlens/internal/core"
	"finlens/internal/ledger"
	"finlens/internal/metrics"
)

// RecordAppender writes one record as a spreadsheet row and returns a
// reference to it.
type RecordAppender interface {
	AppendRecord(ctx context.Context, r core.MoneyRecord) (string, error)
}

// SyncWorker handles record sync messages from AMQP.
type SyncWorker struct {
	records ledger.RecordReader
	sheets  RecordAppender
}

func NewSyncWorker(records ledger.RecordReader, sheets RecordAppender) *SyncWorker {
	return &SyncWorker{records: records, sheets: sheets}
}

// HandleSyncMessage loads the record named by msg and appends it to the
// sheet of its kind. A returned error requeues the message. Records that no
// longer exist are acknowledged and skipped.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"kind", msg.Kind,
		"user_id", msg.UserID)

	record, err := w.records.GetRecord(ctx, msg.ID)
	if errors.Is(err, ledger.ErrNotFound) {
		slog.WarnContext(ctx, "Record not found, skipping sync", "id", msg.ID)
		metrics.IncSyncProcessed(metrics.ResultEmpty)
		return nil
	}
	if err != nil {
		metrics.IncSyncProcessed(metrics.ResultError)
		return fmt.Errorf("get record from storage: %w", err)
	}

	if record.Kind != msg.Kind {
		slog.WarnContext(ctx, "Message kind does not match stored record",
			"id", msg.ID,
			"message_kind", msg.Kind,
			"record_kind", record.Kind)
	}

	ref, err := w.sheets.AppendRecord(ctx, record)
	if err != nil {
		metrics.IncSyncProcessed(metrics.ResultError)
		return fmt.Errorf("append to sheets: %w", err)
	}
	metrics.IncSyncProcessed(metrics.ResultSuccess)

	slog.InfoContext(ctx, "Successfully synced record",
		"id", record.ID,
		"kind", record.Kind,
		"sheets_ref", ref,
		"amount", record.Amount.StringFixed(2))
	return nil
}
