// Package filter derives the visible, ordered subset of a record collection:
// tab selection, free-text search, field filters and the sort laws for
// invoices and expenses. Every function returns a new slice and leaves its
// input untouched.
package filter

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// Tab is a mutually exclusive view over a collection. Any value other than
// the named constants selects records whose status equals it exactly.
type Tab string

const (
	TabAll        Tab = "All"
	TabPOInvoices Tab = "PO Invoices"
	TabOverdue    Tab = "Overdue"
	TabNotSent    Tab = "Not Sent"
)

// InvoiceTabs is the tab strip shown above invoice listings.
var InvoiceTabs = []Tab{TabAll, TabPOInvoices, TabNotSent, "Sent", "Pending", TabOverdue, "Paid"}

// ExpenseTabs is the tab strip shown above expense listings.
var ExpenseTabs = []Tab{TabAll, "Pending", "Paid"}

// Criteria is a committed set of field filters. Nil and blank fields are
// no-ops. Build one through a Draft.
type Criteria struct {
	Search          string
	Customer        string
	ReferenceNumber string
	DateFrom        *time.Time
	DateTo          *time.Time
	MinAmount       *decimal.Decimal
	MaxAmount       *decimal.Decimal
}

// FilterAndSort applies the tab, search and field filters, then orders the
// result with the invoice sort law. A non-blank search overrides
// criteria.Search.
func FilterAndSort(records []core.Record, tab Tab, criteria Criteria, search string) []core.Record {
	return SortInvoices(Filter(records, tab, criteria, search))
}

// Filter applies the tab, search and field filters and keeps input order.
func Filter(records []core.Record, tab Tab, criteria Criteria, search string) []core.Record {
	if strings.TrimSpace(search) == "" {
		search = criteria.Search
	}
	term := strings.ToLower(strings.TrimSpace(search))
	customer := strings.ToLower(strings.TrimSpace(criteria.Customer))
	reference := strings.ToLower(strings.TrimSpace(criteria.ReferenceNumber))

	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if !MatchesTab(r, tab) {
			continue
		}
		if term != "" && !matchesSearch(r, term) {
			continue
		}
		if customer != "" && !containsAny(customer, r.CounterpartyNames()...) {
			continue
		}
		if reference != "" && !containsAny(reference, r.ReferenceNumber.String(), r.InvoiceNumber.String()) {
			continue
		}
		if !inDateRange(r, criteria.DateFrom, criteria.DateTo) {
			continue
		}
		if !inAmountRange(r, criteria.MinAmount, criteria.MaxAmount) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MatchesTab is the tab predicate. "All" keeps every record, including
// overdue and PO invoices. "Not Sent" also covers drafts.
func MatchesTab(r core.Record, tab Tab) bool {
	switch tab {
	case "", TabAll:
		return true
	case TabPOInvoices:
		return r.IsPO()
	case TabOverdue:
		return r.Status == core.StatusOverdue
	case TabNotSent:
		return r.Status == core.StatusNotSent || r.Status == core.StatusDraft
	default:
		return string(r.Status) == string(tab)
	}
}

// CountTabs counts records per tab with the same predicate used for
// filtering, so the "All" count always equals the collection size.
func CountTabs(records []core.Record, tabs ...Tab) map[Tab]int {
	counts := make(map[Tab]int, len(tabs))
	for _, tab := range tabs {
		n := 0
		for _, r := range records {
			if MatchesTab(r, tab) {
				n++
			}
		}
		counts[tab] = n
	}
	return counts
}

func matchesSearch(r core.Record, term string) bool {
	return containsAny(term, r.SearchFields()...)
}

// containsAny reports whether any value contains the lower-cased needle.
func containsAny(needle string, values ...string) bool {
	for _, v := range values {
		if v != "" && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func inDateRange(r core.Record, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	day, ok := r.PrimaryDay()
	if !ok {
		return false
	}
	if from != nil && day.Before(core.DayOf(*from)) {
		return false
	}
	if to != nil && day.After(core.DayOf(*to)) {
		return false
	}
	return true
}

func inAmountRange(r core.Record, lo, hi *decimal.Decimal) bool {
	if lo == nil && hi == nil {
		return true
	}
	amount := r.ResolveAmount()
	if lo != nil && amount.LessThan(*lo) {
		return false
	}
	if hi != nil && amount.GreaterThan(*hi) {
		return false
	}
	return true
}
