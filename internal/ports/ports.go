// Package ports declares the data-source interfaces injected into services
// and handlers. Both the SQLite repository and the in-memory store satisfy
// them.
package ports

import (
	"context"
	"errors"

	"finboard/internal/core"
)

// ErrNotFound is returned when a record or entry does not exist.
var ErrNotFound = errors.New("not found")

type (
	RecordReader interface {
		// ListRecords returns every record of a kind in storage order.
		ListRecords(ctx context.Context, kind core.Kind) ([]core.Record, error)
		GetRecord(ctx context.Context, kind core.Kind, id int64) (core.Record, error)
	}

	RecordWriter interface {
		// CreateRecord assigns the id and timestamps and returns the stored record.
		CreateRecord(ctx context.Context, r core.Record) (core.Record, error)
		UpdateRecord(ctx context.Context, r core.Record) (core.Record, error)
		DeleteRecord(ctx context.Context, kind core.Kind, id int64) error
	}

	LedgerReader interface {
		// ListLedgerEntries returns a customer's entries by ascending date, then id.
		ListLedgerEntries(ctx context.Context, customer string) ([]core.LedgerEntry, error)
		// ListCustomers returns the distinct counterparties with ledger entries
		// or invoices, sorted.
		ListCustomers(ctx context.Context) ([]string, error)
	}

	LedgerWriter interface {
		CreateLedgerEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error)
	}

	// Store is the full data source used by the HTTP server.
	Store interface {
		RecordReader
		RecordWriter
		LedgerReader
		LedgerWriter
	}
)
