package services

import (
	"context"
	"errors"
	"fmt"

	"finlens/internal/amqp"
	"finlens/internal/core"
	"finlens/internal/ledger"
	"finlens/internal/log"
	"finlens/internal/metrics"
)

// Publisher announces committed records to the sheet sync worker.
type Publisher interface {
	PublishRecordSync(ctx context.Context, msg *amqp.RecordSyncMessage) error
	Close() error
}

// Invalidator drops every cached view of a user.
type Invalidator interface {
	InvalidateUser(userID string)
}

// RecordService stores records and fans the commit out to the event
// pipeline and the summary cache.
type RecordService struct {
	store       ledger.Store
	publisher   Publisher
	invalidator Invalidator
	logger      *log.StructuredLogger
}

// NewRecordService wires a store with its optional publisher and cache
// invalidator. Either may be nil.
func NewRecordService(store ledger.Store, publisher Publisher, invalidator Invalidator, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RecordService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      log.NewStructuredLogger(logger),
	}
}

// Commit validates and stores a record, then publishes a sync message.
// Publishing failures are logged and never fail the commit.
func (s *RecordService) Commit(ctx context.Context, r core.MoneyRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.Append(ctx, r)
	if err != nil {
		s.logger.LogError(ctx, "Failed to save record", err, log.ComponentStorage, log.OpAppend,
			log.NewFields().WithUser(r.UserID))
		return "", fmt.Errorf("save %s: %w", r.Kind.Collection(), err)
	}
	r.ID = id

	metrics.IncRecordCommitted(string(r.Kind))
	s.logger.LogRecordCommitted(ctx, r.UserID, id, string(r.Kind), r.EffectiveLabel(), r.Amount.StringFixed(2))

	if s.invalidator != nil {
		s.invalidator.InvalidateUser(r.UserID)
	}

	if err := s.publish(ctx, r); err != nil {
		s.logger.LogError(ctx, "Failed to publish sync message", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithRecord(id, string(r.Kind), r.EffectiveLabel(), r.Amount.StringFixed(2)))
	}

	return id, nil
}

// CommitMany commits records in order and stops at the first failure. It
// returns how many were saved.
func (s *RecordService) CommitMany(ctx context.Context, records []core.MoneyRecord) (int, error) {
	saved := 0
	for i, r := range records {
		if _, err := s.Commit(ctx, r); err != nil {
			return saved, fmt.Errorf("record %d: %w", i, err)
		}
		saved++
	}
	return saved, nil
}

// List returns the records of one kind owned by userID.
func (s *RecordService) List(ctx context.Context, userID string, kind core.Kind) ([]core.MoneyRecord, error) {
	return s.store.ListRecords(ctx, userID, kind)
}

func (s *RecordService) publish(ctx context.Context, r core.MoneyRecord) error {
	if s.publisher == nil {
		return nil
	}
	err := s.publisher.PublishRecordSync(ctx, amqp.NewRecordSyncMessage(r.ID, r.Kind, r.UserID))
	metrics.IncEventPublished(metrics.Result(err))
	return err
}

// Close closes the store when it holds resources, and the publisher.
func (s *RecordService) Close() error {
	var errs []error

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}
	return nil
}
