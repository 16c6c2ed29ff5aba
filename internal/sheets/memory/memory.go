// Package memory is an in-process sheets.Mirror used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"finboard/internal/core"
	"finboard/internal/sheets"
)

type rowKey struct {
	kind core.Kind
	id   int64
}

type Mirror struct {
	mu   sync.Mutex
	rows map[rowKey][]string
	// order keeps append order per tab so references stay stable.
	order map[core.Kind][]int64
}

func New() *Mirror {
	return &Mirror{
		rows:  make(map[rowKey][]string),
		order: make(map[core.Kind][]int64),
	}
}

// Upsert stores the row and returns a synthetic reference such as "mem:Invoices!2".
func (m *Mirror) Upsert(_ context.Context, r core.Record) (string, error) {
	tab := sheets.TabName(r.Kind)
	if tab == "" {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidKind, r.Kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rowKey{r.Kind, r.ID}
	if _, ok := m.rows[key]; !ok {
		m.order[r.Kind] = append(m.order[r.Kind], r.ID)
	}
	m.rows[key] = sheets.Row(r)
	// row 1 is the header
	n := slices.Index(m.order[r.Kind], r.ID) + 2
	return fmt.Sprintf("mem:%s!%d", tab, n), nil
}

func (m *Mirror) Delete(_ context.Context, kind core.Kind, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, rowKey{kind, id})
	return nil
}

// Row returns a copy of the mirrored row.
func (m *Mirror) Row(kind core.Kind, id int64) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[rowKey{kind, id}]
	return slices.Clone(row), ok
}

// Len counts mirrored rows of a kind.
func (m *Mirror) Len(kind core.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.rows {
		if k.kind == kind {
			n++
		}
	}
	return n
}
