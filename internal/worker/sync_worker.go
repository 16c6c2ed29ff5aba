package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/observability/metrics"
	"finboard/internal/ports"
	"finboard/internal/sheets"
	"finboard/internal/storage"
)

// SyncStore is the slice of the SQLite repository the worker needs.
type SyncStore interface {
	GetRecord(ctx context.Context, kind core.Kind, id int64) (core.Record, error)
	PendingSync(ctx context.Context, limit int) ([]storage.PendingRecord, error)
	MarkSynced(ctx context.Context, kind core.Kind, id int64) error
	MarkSyncError(ctx context.Context, kind core.Kind, id int64) error
}

// SyncWorker mirrors records from SQLite to the spreadsheet
type SyncWorker struct {
	store     SyncStore
	mirror    sheets.Mirror
	batchSize int
}

func NewSyncWorker(store SyncStore, mirror sheets.Mirror, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &SyncWorker{
		store:     store,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// Handle processes one sync message. The record is always re-read, so a
// late message mirrors the current row rather than the one that triggered it.
func (w *SyncWorker) Handle(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"kind", msg.Kind,
		"id", msg.ID,
		"op", msg.Op)

	if msg.Op == amqp.OpDelete {
		err := w.mirror.Delete(ctx, msg.Kind, msg.ID)
		metrics.ObserveSync(err)
		if err != nil {
			return fmt.Errorf("clear mirror row: %w", err)
		}
		slog.InfoContext(ctx, "Cleared mirrored record", "kind", msg.Kind, "id", msg.ID)
		return nil
	}

	rec, err := w.store.GetRecord(ctx, msg.Kind, msg.ID)
	if errors.Is(err, ports.ErrNotFound) {
		// deleted after the message was published; its delete message follows
		slog.WarnContext(ctx, "Record no longer exists, skipping sync", "kind", msg.Kind, "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	return w.syncRecord(ctx, rec)
}

// ProcessPending mirrors up to one batch of records that never synced or
// failed. It is the backup for lost AMQP messages and returns how many rows
// it mirrored.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.store.PendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	synced := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}

		rec, err := w.store.GetRecord(ctx, p.Kind, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get record", "kind", p.Kind, "id", p.ID, "error", err)
			continue
		}
		if err := w.syncRecord(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record", "kind", p.Kind, "id", p.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, rec core.Record) error {
	ref, err := w.mirror.Upsert(ctx, rec)
	metrics.ObserveSync(err)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, rec.Kind, rec.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "kind", rec.Kind, "id", rec.ID, "error", markErr)
		}
		return fmt.Errorf("mirror record: %w", err)
	}

	if err := w.store.MarkSynced(ctx, rec.Kind, rec.ID); err != nil {
		// the row is mirrored; the next sweep rewrites it in place
		slog.ErrorContext(ctx, "Failed to mark as synced", "kind", rec.Kind, "id", rec.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced record",
		"kind", rec.Kind,
		"id", rec.ID,
		"sheets_ref", ref)
	return nil
}
