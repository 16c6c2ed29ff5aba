package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "finboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	clock := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return repo
}

func record(t *testing.T, raw string) core.Record {
	t.Helper()
	var r core.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r.Normalize()
}

func TestRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	in := record(t, `{"kind":"invoice","status":"Sent","customer_name":"Acme","invoiceTotal":"1250.50","bill_date":"2025-02-03","reference_number":99}`)
	created, err := repo.CreateRecord(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetRecord(ctx, core.KindInvoice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CustomerName)
	assert.Equal(t, "1250.5", got.ResolveAmount().String())
	assert.Equal(t, "99", got.ReferenceNumber.String())
	assert.Equal(t, core.StatusSent, got.Status)
	assert.Equal(t, core.InvoiceTypeRegular, got.InvoiceType)
	assert.Equal(t, created.CreatedAt.String(), got.CreatedAt.String())

	got.Status = core.StatusPaid
	updated, err := repo.UpdateRecord(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt.String(), updated.CreatedAt.String())
	assert.NotEqual(t, created.UpdatedAt.String(), updated.UpdatedAt.String())

	list, err := repo.ListRecords(ctx, core.KindInvoice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsPaid())

	expenses, err := repo.ListRecords(ctx, core.KindExpense)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	require.NoError(t, repo.DeleteRecord(ctx, core.KindInvoice, created.ID))
	_, err = repo.GetRecord(ctx, core.KindInvoice, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteRecord(ctx, core.KindInvoice, created.ID), ErrNotFound)
}

func TestUpdateMissingRecord(t *testing.T) {
	repo := newRepo(t)
	r := record(t, `{"id":42,"kind":"expense","status":"Paid","amount":1}`)
	_, err := repo.UpdateRecord(context.Background(), r)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidKind(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.ListRecords(context.Background(), core.Kind("stock"))
	assert.ErrorIs(t, err, core.ErrInvalidKind)
}

func TestSyncStatus(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	inv, err := repo.CreateRecord(ctx, record(t, `{"kind":"invoice","customer_name":"Acme","amount":10}`))
	require.NoError(t, err)
	exp, err := repo.CreateRecord(ctx, record(t, `{"kind":"expense","vendor_name":"Fuel","amount":5}`))
	require.NoError(t, err)

	pending, err := repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, core.KindInvoice, pending[0].Kind)
	assert.Equal(t, core.KindExpense, pending[1].Kind)
	assert.Equal(t, int64(1), pending[0].Version)

	require.NoError(t, repo.MarkSynced(ctx, core.KindInvoice, inv.ID))
	require.NoError(t, repo.MarkSyncError(ctx, core.KindExpense, exp.ID))

	status, err := repo.SyncStatus(ctx, core.KindExpense, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncError, status)

	pending, err = repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, exp.ID, pending[0].ID)

	// An update queues the record again with a new version.
	inv.Status = core.StatusPaid
	_, err = repo.UpdateRecord(ctx, inv)
	require.NoError(t, err)
	pending, err = repo.PendingSync(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, core.KindInvoice, pending[0].Kind)
	assert.Equal(t, int64(2), pending[0].Version)

	assert.ErrorIs(t, repo.MarkSynced(ctx, core.KindExpense, 999), ErrNotFound)
}

func TestLedgerEntries(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	add := func(raw string) core.LedgerEntry {
		var e core.LedgerEntry
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		out, err := repo.CreateLedgerEntry(ctx, e)
		require.NoError(t, err)
		return out
	}
	add(`{"customer":"Acme","date":"2025-03-02","description":"second","debit":"100"}`)
	add(`{"customer":"Acme","date":"2025-03-01T09:30:00Z","description":{"text":"first","items":["a","b"]},"credit":"300"}`)
	add(`{"customer":"Globex","date":"2025-01-01","credit":"1"}`)
	add(`{"customer":"Acme","date":"2025-03-02","description":"third","credit":"50","status":"Paid"}`)

	entries, err := repo.ListLedgerEntries(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first; a; b", entries[0].Description.String())
	assert.Equal(t, "second", entries[1].Description.String())
	assert.Equal(t, "third", entries[2].Description.String())
	assert.Equal(t, "300", entries[0].Credit.Raw())
	assert.Equal(t, "0", entries[0].Debit.Raw())
	assert.True(t, entries[2].IsPaid())

	_, err = repo.CreateRecord(ctx, record(t, `{"kind":"invoice","customer_name":"Initech","amount":1}`))
	require.NoError(t, err)
	customers, err := repo.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, customers)

	none, err := repo.ListLedgerEntries(ctx, "Nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateLedgerEntryRequiresDate(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.CreateLedgerEntry(context.Background(), core.LedgerEntry{Customer: "Acme", Credit: core.NumberFrom("1")})
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finboard.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}

func TestUpdateRecordWritesInvoiceTypeWithVersion(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	inv, err := repo.CreateRecord(ctx, record(t, `{"kind":"invoice","customer_name":"Acme","amount":10}`))
	require.NoError(t, err)

	inv.InvoiceType = core.InvoiceTypePO
	_, err = repo.UpdateRecord(ctx, inv)
	require.NoError(t, err)

	var invoiceType string
	var version int64
	require.NoError(t, repo.db.QueryRowContext(ctx,
		`SELECT invoice_type, version FROM invoices WHERE id = ?`, inv.ID).Scan(&invoiceType, &version))
	assert.Equal(t, core.InvoiceTypePO, invoiceType)
	assert.Equal(t, int64(2), version)

	// Expenses have no invoice_type column.
	exp, err := repo.CreateRecord(ctx, record(t, `{"kind":"expense","vendor_name":"Fuel","amount":5}`))
	require.NoError(t, err)
	exp.Status = core.StatusPaid
	_, err = repo.UpdateRecord(ctx, exp)
	require.NoError(t, err)
}
