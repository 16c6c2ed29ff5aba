package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/observability/metrics"
	"finboard/internal/ports"
)

// Publisher announces record changes to the sync worker.
type Publisher interface {
	PublishRecordSync(ctx context.Context, kind core.Kind, id int64, op amqp.Op) error
}

// RecordStore is the storage side of RecordService.
type RecordStore interface {
	ports.RecordReader
	ports.RecordWriter
}

// RecordService validates record writes, saves them locally and publishes a
// sync message. A failed publish never fails the write.
type RecordService struct {
	store     RecordStore
	publisher Publisher
}

// NewRecordService accepts a nil publisher when the mirror is disabled.
func NewRecordService(store RecordStore, publisher Publisher) *RecordService {
	return &RecordService{
		store:     store,
		publisher: publisher,
	}
}

// CreateRecord fills defaults, validates and saves a new record.
func (s *RecordService) CreateRecord(ctx context.Context, r core.Record) (core.Record, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}

	saved, err := s.store.CreateRecord(ctx, r)
	if err != nil {
		return core.Record{}, fmt.Errorf("save %s: %w", r.Kind, err)
	}
	metrics.RecordWritten(string(saved.Kind), "create")

	s.publish(ctx, saved.Kind, saved.ID, amqp.OpUpsert)
	return saved, nil
}

// UpdateRecord replaces a stored record. The id must exist.
func (s *RecordService) UpdateRecord(ctx context.Context, r core.Record) (core.Record, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}

	saved, err := s.store.UpdateRecord(ctx, r)
	if err != nil {
		return core.Record{}, fmt.Errorf("update %s %d: %w", r.Kind, r.ID, err)
	}
	metrics.RecordWritten(string(saved.Kind), "update")

	s.publish(ctx, saved.Kind, saved.ID, amqp.OpUpsert)
	return saved, nil
}

// DeleteRecord removes a record locally and asks the mirror to drop its row.
func (s *RecordService) DeleteRecord(ctx context.Context, kind core.Kind, id int64) error {
	if err := s.store.DeleteRecord(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	metrics.RecordWritten(string(kind), "delete")

	s.publish(ctx, kind, id, amqp.OpDelete)
	return nil
}

func (s *RecordService) GetRecord(ctx context.Context, kind core.Kind, id int64) (core.Record, error) {
	return s.store.GetRecord(ctx, kind, id)
}

func (s *RecordService) ListRecords(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	return s.store.ListRecords(ctx, kind)
}

func (s *RecordService) publish(ctx context.Context, kind core.Kind, id int64, op amqp.Op) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping sync message",
			"kind", kind, "id", id)
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, kind, id, op); err != nil {
		// the sweep in the worker picks the row up later
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"kind", kind,
			"id", id,
			"op", op,
			"error", err)
	}
}

// Close closes the store and publisher when they hold resources.
func (s *RecordService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}
	return nil
}
