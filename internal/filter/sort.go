package filter

import (
	"slices"
	"time"

	"finboard/internal/core"
)

// SortInvoices orders records in two tiers: everything not paid comes first,
// newest creation date first; paid records follow, most recently updated
// first. Missing dates sort after present ones within a tier and ties keep
// input order.
func SortInvoices(records []core.Record) []core.Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b core.Record) int {
		ap, bp := a.IsPaid(), b.IsPaid()
		if ap != bp {
			if ap {
				return 1
			}
			return -1
		}
		if ap {
			return newestFirst(a.UpdatedDate, b.UpdatedDate)
		}
		return newestFirst(a.CreatedDate, b.CreatedDate)
	})
	return out
}

// StatusPriority ranks expense statuses: Pending, then Paid, then the rest.
func StatusPriority(s core.Status) int {
	switch s {
	case core.StatusPending:
		return 1
	case core.StatusPaid:
		return 2
	default:
		return 3
	}
}

// SortExpenses orders expenses by status priority, then by date descending.
// An unresolvable date counts as the epoch and sorts last.
func SortExpenses(records []core.Record) []core.Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b core.Record) int {
		if pa, pb := StatusPriority(a.Status), StatusPriority(b.Status); pa != pb {
			return pa - pb
		}
		return expenseDate(b).Compare(expenseDate(a))
	})
	return out
}

func expenseDate(r core.Record) time.Time {
	if t, ok := r.PrimaryDate(); ok {
		return t
	}
	return time.Unix(0, 0).UTC()
}

func newestFirst(a, b func() (time.Time, bool)) int {
	ta, aok := a()
	tb, bok := b()
	switch {
	case aok && bok:
		return tb.Compare(ta)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}
