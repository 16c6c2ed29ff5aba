package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finboard/internal/core"
	"finboard/internal/ports"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for missing rows.
var ErrNotFound = ports.ErrNotFound

// Sync states of a record row.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func table(kind core.Kind) (string, error) {
	switch kind {
	case core.KindInvoice:
		return "invoices", nil
	case core.KindExpense:
		return "expenses", nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
}

// CreateRecord implements ports.RecordWriter
func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	tbl, err := table(rec.Kind)
	if err != nil {
		return core.Record{}, err
	}

	now := r.now()
	rec.ID = 0
	rec.CreatedAt = core.NewTimestamp(now)
	rec.UpdatedAt = core.NewTimestamp(now)
	payload, err := json.Marshal(rec)
	if err != nil {
		return core.Record{}, fmt.Errorf("encode record: %w", err)
	}

	var res sql.Result
	if rec.Kind == core.KindInvoice {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO invoices (status, invoice_type, counterparty, record_date, payload, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(rec.Status), rec.InvoiceType, rec.Counterparty(), recordDate(rec), string(payload),
			formatTime(now), formatTime(now))
	} else {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO `+tbl+` (status, counterparty, record_date, payload, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			string(rec.Status), rec.Counterparty(), recordDate(rec), string(payload),
			formatTime(now), formatTime(now))
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("insert %s: %w", rec.Kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Record{}, fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id

	slog.InfoContext(ctx, "Record saved to SQLite",
		"kind", rec.Kind,
		"id", rec.ID,
		"status", rec.Status,
		"counterparty", rec.Counterparty())

	return rec, nil
}

// UpdateRecord implements ports.RecordWriter. The creation time is kept, the
// version is bumped and the row is queued for sync again.
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	tbl, err := table(rec.Kind)
	if err != nil {
		return core.Record{}, err
	}

	existing, err := r.GetRecord(ctx, rec.Kind, rec.ID)
	if err != nil {
		return core.Record{}, err
	}

	now := r.now()
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = core.NewTimestamp(now)
	payload, err := json.Marshal(rec)
	if err != nil {
		return core.Record{}, fmt.Errorf("encode record: %w", err)
	}

	set := `status = ?, counterparty = ?, record_date = ?, payload = ?, updated_at = ?,
		     version = version + 1, sync_status = 'pending'`
	args := []any{string(rec.Status), rec.Counterparty(), recordDate(rec), string(payload), formatTime(now)}
	if rec.Kind == core.KindInvoice {
		set += `, invoice_type = ?`
		args = append(args, rec.InvoiceType)
	}
	args = append(args, rec.ID)

	res, err := r.db.ExecContext(ctx, `UPDATE `+tbl+` SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return core.Record{}, fmt.Errorf("update %s %d: %w", rec.Kind, rec.ID, err)
	}
	if err := expectOne(res); err != nil {
		return core.Record{}, fmt.Errorf("update %s %d: %w", rec.Kind, rec.ID, err)
	}
	return rec, nil
}

// DeleteRecord implements ports.RecordWriter
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, kind core.Kind, id int64) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+tbl+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	slog.InfoContext(ctx, "Record deleted from SQLite", "kind", kind, "id", id)
	return nil
}

// GetRecord implements ports.RecordReader
func (r *SQLiteRepository) GetRecord(ctx context.Context, kind core.Kind, id int64) (core.Record, error) {
	tbl, err := table(kind)
	if err != nil {
		return core.Record{}, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, status, payload, created_at, updated_at FROM `+tbl+` WHERE id = ?`, id)
	rec, err := scanRecord(row, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, fmt.Errorf("get %s %d: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return rec, nil
}

// ListRecords implements ports.RecordReader
func (r *SQLiteRepository) ListRecords(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, status, payload, created_at, updated_at FROM `+tbl+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tbl, err)
	}
	defer rows.Close()

	out := []core.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner, kind core.Kind) (core.Record, error) {
	var (
		id               int64
		status, payload  string
		created, updated string
	)
	if err := s.Scan(&id, &status, &payload, &created, &updated); err != nil {
		return core.Record{}, err
	}
	var rec core.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return core.Record{}, fmt.Errorf("decode payload of %s %d: %w", kind, id, err)
	}
	rec.ID = id
	rec.Kind = kind
	rec.Status = core.Status(status)
	rec.CreatedAt = core.ParseTimestamp(created)
	rec.UpdatedAt = core.ParseTimestamp(updated)
	return rec, nil
}

// CreateLedgerEntry implements ports.LedgerWriter
func (r *SQLiteRepository) CreateLedgerEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	day, ok := e.Date.Day()
	if !ok {
		return core.LedgerEntry{}, core.ErrInvalidDate
	}
	desc, err := json.Marshal(e.Description)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("encode description: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (customer, entry_date, description, debit, credit, status, reference, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Customer, day.Format(time.DateOnly), string(desc), amountText(e.Debit), amountText(e.Credit),
		string(e.Status), e.Reference, formatTime(r.now()))
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Ledger entry saved to SQLite", "id", id, "customer", e.Customer)
	return e, nil
}

// ListLedgerEntries implements ports.LedgerReader
func (r *SQLiteRepository) ListLedgerEntries(ctx context.Context, customer string) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer, entry_date, description, debit, credit, status, reference
		 FROM ledger_entries WHERE customer = ? ORDER BY entry_date, id`, customer)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries for %s: %w", customer, err)
	}
	defer rows.Close()

	out := []core.LedgerEntry{}
	for rows.Next() {
		var (
			e             core.LedgerEntry
			date, desc    string
			debit, credit string
			status        string
		)
		if err := rows.Scan(&e.ID, &e.Customer, &date, &desc, &debit, &credit, &status, &e.Reference); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if err := json.Unmarshal([]byte(desc), &e.Description); err != nil {
			return nil, fmt.Errorf("decode description of entry %d: %w", e.ID, err)
		}
		e.Date = core.ParseTimestamp(date)
		e.Debit = core.NumberFrom(debit)
		e.Credit = core.NumberFrom(credit)
		e.Status = core.Status(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListCustomers implements ports.LedgerReader
func (r *SQLiteRepository) ListCustomers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT customer FROM ledger_entries
		 UNION
		 SELECT counterparty FROM invoices WHERE counterparty <> ''
		 ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// PendingRecord is the minimal data needed to queue a sync message.
type PendingRecord struct {
	Kind      core.Kind
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// PendingSync returns records whose mirror is missing or failed, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, id, version, created_at FROM (
			SELECT 'invoice' AS kind, id, version, created_at FROM invoices WHERE sync_status <> 'synced'
			UNION ALL
			SELECT 'expense' AS kind, id, version, created_at FROM expenses WHERE sync_status <> 'synced'
		 ) ORDER BY created_at, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	defer rows.Close()

	out := []PendingRecord{}
	for rows.Next() {
		var (
			p       PendingRecord
			kind    string
			created string
		)
		if err := rows.Scan(&kind, &p.ID, &p.Version, &created); err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		p.Kind = core.Kind(kind)
		p.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced marks a record as successfully mirrored
func (r *SQLiteRepository) MarkSynced(ctx context.Context, kind core.Kind, id int64) error {
	if err := r.setSyncStatus(ctx, kind, id, SyncDone); err != nil {
		return fmt.Errorf("mark %s synced: %w", kind, err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "kind", kind, "id", id)
	return nil
}

// MarkSyncError marks a record as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, kind core.Kind, id int64) error {
	if err := r.setSyncStatus(ctx, kind, id, SyncError); err != nil {
		return fmt.Errorf("mark %s sync error: %w", kind, err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "kind", kind, "id", id)
	return nil
}

// SyncStatus returns the mirror state of a record.
func (r *SQLiteRepository) SyncStatus(ctx context.Context, kind core.Kind, id int64) (string, error) {
	tbl, err := table(kind)
	if err != nil {
		return "", err
	}
	var status string
	err = r.db.QueryRowContext(ctx, `SELECT sync_status FROM `+tbl+` WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return status, err
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, kind core.Kind, id int64, status string) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE `+tbl+` SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func recordDate(rec core.Record) any {
	if d, ok := rec.PrimaryDay(); ok {
		return d.Format(time.DateOnly)
	}
	return nil
}

func amountText(n core.Number) string {
	if n.IsZero() {
		return "0"
	}
	return n.Raw()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
