package sheets

import (
	"context"
	"strconv"

	"finboard/internal/core"
)

// Ports for outbound adapters.
type (
	// Mirror keeps one spreadsheet row per record, keyed by record id.
	Mirror interface {
		// Upsert writes the record's row, appending it when absent, and
		// returns the row reference.
		Upsert(ctx context.Context, r core.Record) (rowRef string, err error)
		// Delete clears the record's row. A missing row is not an error.
		Delete(ctx context.Context, kind core.Kind, id int64) error
	}
)

// Header is the first row of every mirror tab.
var Header = []string{"ID", "Status", "Counterparty", "Title", "Reference", "Date", "Amount", "Updated"}

// Row renders a record in Header order.
func Row(r core.Record) []string {
	date := ""
	if day, ok := r.PrimaryDay(); ok {
		date = day.Format("2006-01-02")
	}
	updated := ""
	if t, ok := r.UpdatedAt.Time(); ok {
		updated = t.UTC().Format("2006-01-02T15:04:05Z")
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		string(r.Status),
		r.Counterparty(),
		r.TitleText(),
		r.ReferenceText(),
		date,
		core.FormatAmount(r.ResolveAmount()),
		updated,
	}
}

// TabName is the tab holding records of kind, e.g. "Invoices".
func TabName(kind core.Kind) string {
	switch kind {
	case core.KindInvoice:
		return "Invoices"
	case core.KindExpense:
		return "Expenses"
	default:
		return ""
	}
}
