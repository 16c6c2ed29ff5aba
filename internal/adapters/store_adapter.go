package adapters

import (
	"context"

	"finboard/internal/core"
	"finboard/internal/ports"
	"finboard/internal/services"
)

// StoreAdapter presents a backing store and the write services as a single
// ports.Store. Reads go straight to the store; writes go through the services
// so every backend validates and publishes the same way.
type StoreAdapter struct {
	store   ports.Store
	records *services.RecordService
	ledger  *services.LedgerService
}

var _ ports.Store = (*StoreAdapter)(nil)

func NewStoreAdapter(store ports.Store, records *services.RecordService, ledger *services.LedgerService) *StoreAdapter {
	return &StoreAdapter{
		store:   store,
		records: records,
		ledger:  ledger,
	}
}

// ListRecords implements ports.RecordReader
func (a *StoreAdapter) ListRecords(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	return a.store.ListRecords(ctx, kind)
}

// GetRecord implements ports.RecordReader
func (a *StoreAdapter) GetRecord(ctx context.Context, kind core.Kind, id int64) (core.Record, error) {
	return a.store.GetRecord(ctx, kind, id)
}

// CreateRecord implements ports.RecordWriter
func (a *StoreAdapter) CreateRecord(ctx context.Context, r core.Record) (core.Record, error) {
	return a.records.CreateRecord(ctx, r)
}

// UpdateRecord implements ports.RecordWriter
func (a *StoreAdapter) UpdateRecord(ctx context.Context, r core.Record) (core.Record, error) {
	return a.records.UpdateRecord(ctx, r)
}

// DeleteRecord implements ports.RecordWriter
func (a *StoreAdapter) DeleteRecord(ctx context.Context, kind core.Kind, id int64) error {
	return a.records.DeleteRecord(ctx, kind, id)
}

// ListLedgerEntries implements ports.LedgerReader
func (a *StoreAdapter) ListLedgerEntries(ctx context.Context, customer string) ([]core.LedgerEntry, error) {
	return a.store.ListLedgerEntries(ctx, customer)
}

// ListCustomers implements ports.LedgerReader
func (a *StoreAdapter) ListCustomers(ctx context.Context) ([]string, error) {
	return a.store.ListCustomers(ctx)
}

// CreateLedgerEntry implements ports.LedgerWriter
func (a *StoreAdapter) CreateLedgerEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	return a.ledger.AddEntry(ctx, e)
}

// Ping reports whether the backing store is reachable. Stores without a
// connection are always ready.
func (a *StoreAdapter) Ping(ctx context.Context) error {
	if p, ok := a.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
