package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"finboard/internal/core"
	"finboard/internal/ports"
)

// Store keeps records and ledger entries in process memory. It satisfies
// ports.Store and is used for local runs and tests.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	records map[core.Kind][]core.Record
	ledger  []core.LedgerEntry
	now     func() time.Time
}

func New() *Store {
	return &Store{
		records: map[core.Kind][]core.Record{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewFromFiles seeds a store from invoices.json, expenses.json and
// ledger.json under base. Missing files are skipped.
func NewFromFiles(base string) (*Store, error) {
	s := New()
	for _, kind := range []core.Kind{core.KindInvoice, core.KindExpense} {
		var recs []core.Record
		if err := readJSON(filepath.Join(base, string(kind)+"s.json"), &recs); err != nil {
			return nil, err
		}
		for _, r := range recs {
			r.Kind = kind
			s.seedRecord(r.Normalize())
		}
	}
	var entries []core.LedgerEntry
	if err := readJSON(filepath.Join(base, "ledger.json"), &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		s.seedEntry(e)
	}
	return s, nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode seed %s: %w", path, err)
	}
	return nil
}

// seed keeps the fixture's ids and timestamps.
func (s *Store) seedRecord(r core.Record) {
	if r.ID == 0 {
		s.nextID++
		r.ID = s.nextID
	}
	s.nextID = max(s.nextID, r.ID)
	s.records[r.Kind] = append(s.records[r.Kind], r)
}

func (s *Store) seedEntry(e core.LedgerEntry) {
	if e.ID == 0 {
		s.nextID++
		e.ID = s.nextID
	}
	s.nextID = max(s.nextID, e.ID)
	s.ledger = append(s.ledger, e)
}

func (s *Store) ListRecords(_ context.Context, kind core.Kind) ([]core.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record{}, s.records[kind]...), nil
}

func (s *Store) GetRecord(_ context.Context, kind core.Kind, id int64) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(kind, id); i >= 0 {
		return s.records[kind][i], nil
	}
	return core.Record{}, fmt.Errorf("get %s %d: %w", kind, id, ports.ErrNotFound)
}

func (s *Store) CreateRecord(_ context.Context, r core.Record) (core.Record, error) {
	if !r.Kind.IsValid() {
		return core.Record{}, fmt.Errorf("%w: %q", core.ErrInvalidKind, r.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	now := core.NewTimestamp(s.now())
	r.CreatedAt, r.UpdatedAt = now, now
	s.records[r.Kind] = append(s.records[r.Kind], r)
	return r, nil
}

func (s *Store) UpdateRecord(_ context.Context, r core.Record) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(r.Kind, r.ID)
	if i < 0 {
		return core.Record{}, fmt.Errorf("update %s %d: %w", r.Kind, r.ID, ports.ErrNotFound)
	}
	r.CreatedAt = s.records[r.Kind][i].CreatedAt
	r.UpdatedAt = core.NewTimestamp(s.now())
	s.records[r.Kind][i] = r
	return r, nil
}

func (s *Store) DeleteRecord(_ context.Context, kind core.Kind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(kind, id)
	if i < 0 {
		return fmt.Errorf("delete %s %d: %w", kind, id, ports.ErrNotFound)
	}
	s.records[kind] = slices.Delete(s.records[kind], i, i+1)
	return nil
}

func (s *Store) indexOf(kind core.Kind, id int64) int {
	return slices.IndexFunc(s.records[kind], func(r core.Record) bool { return r.ID == id })
}

func (s *Store) CreateLedgerEntry(_ context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	if _, ok := e.Date.Day(); !ok {
		return core.LedgerEntry{}, core.ErrInvalidDate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.ledger = append(s.ledger, e)
	return e, nil
}

// ListLedgerEntries returns entries by ascending day, then id.
func (s *Store) ListLedgerEntries(_ context.Context, customer string) ([]core.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.LedgerEntry{}
	for _, e := range s.ledger {
		if e.Customer == customer {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b core.LedgerEntry) int {
		da, _ := a.Date.Day()
		db, _ := b.Date.Day()
		if c := da.Compare(db); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.ledger))
	for _, e := range s.ledger {
		names = append(names, e.Customer)
	}
	for _, r := range s.records[core.KindInvoice] {
		names = append(names, r.Counterparty())
	}
	return dedupeSorted(names), nil
}

func dedupeSorted(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
