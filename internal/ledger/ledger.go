// Package ledger computes running balances over a customer's ledger entries.
//
// Compute is a strict left fold: balance[i] = balance[i-1] + credit[i] - debit[i].
// It holds no state between calls and never looks ahead, so appending an
// entry never changes an earlier balance. Entries must already be in
// chronological order; SortChronological is provided for callers that need
// it.
package ledger

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// DisplayMode selects which debit and credit values are rendered.
type DisplayMode string

const (
	// DisplayAll renders the stored amounts.
	DisplayAll DisplayMode = "all"
	// DisplayOutstanding renders paid entries as zero on both sides.
	DisplayOutstanding DisplayMode = "outstanding"
)

// ParseDisplayMode maps a query value to a mode. Unknown values fall back to
// DisplayAll.
func ParseDisplayMode(s string) DisplayMode {
	if DisplayMode(s) == DisplayOutstanding {
		return DisplayOutstanding
	}
	return DisplayAll
}

// Options tune a computation.
type Options struct {
	Mode    DisplayMode
	Opening decimal.Decimal
}

// Row is an entry annotated with the values shown for it.
type Row struct {
	Entry   core.LedgerEntry `json:"entry"`
	Debit   decimal.Decimal  `json:"debit"`
	Credit  decimal.Decimal  `json:"credit"`
	Balance decimal.Decimal  `json:"balance"`
}

// Totals are summed from the displayed row values.
type Totals struct {
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// Result is the annotated ledger plus its footer.
type Result struct {
	Mode     DisplayMode     `json:"mode"`
	Opening  decimal.Decimal `json:"opening"`
	Rows     []Row           `json:"rows"`
	Totals   Totals          `json:"totals"`
	Standing Standing        `json:"standing"`
}

// Compute annotates entries with running balances and derives totals.
func Compute(entries []core.LedgerEntry, opts Options) Result {
	mode := opts.Mode
	if mode == "" {
		mode = DisplayAll
	}

	rows := make([]Row, 0, len(entries))
	balance := core.RoundCurrency(opts.Opening)
	var totalDebit, totalCredit decimal.Decimal
	for _, e := range entries {
		debit, credit := displayValues(e, mode)
		balance = balance.Add(credit).Sub(debit)
		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)
		rows = append(rows, Row{Entry: e, Debit: debit, Credit: credit, Balance: balance})
	}

	return Result{
		Mode:    mode,
		Opening: core.RoundCurrency(opts.Opening),
		Rows:    rows,
		Totals: Totals{
			Debit:          totalDebit,
			Credit:         totalCredit,
			ClosingBalance: balance,
		},
		Standing: Classify(balance),
	}
}

func displayValues(e core.LedgerEntry, mode DisplayMode) (debit, credit decimal.Decimal) {
	if mode == DisplayOutstanding && e.IsPaid() {
		return decimal.Zero, decimal.Zero
	}
	return core.RoundCurrency(e.Debit.OrZero()), core.RoundCurrency(e.Credit.OrZero())
}

// Standing is the meaning of a balance's sign.
type Standing string

const (
	OwesUs  Standing = "owes_us"
	WeOwe   Standing = "we_owe"
	Settled Standing = "settled"
)

// Classify depends only on the sign of balance.
func Classify(balance decimal.Decimal) Standing {
	switch balance.Sign() {
	case 1:
		return OwesUs
	case -1:
		return WeOwe
	default:
		return Settled
	}
}

// Label is the report wording for s.
func (s Standing) Label() string {
	switch s {
	case OwesUs:
		return "counterparty owes us"
	case WeOwe:
		return "we owe counterparty"
	default:
		return "settled"
	}
}

// SortChronological returns entries ordered by calendar day ascending. Entries
// on the same day, and entries without a date, keep their relative order;
// undated entries go last.
func SortChronological(entries []core.LedgerEntry) []core.LedgerEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b core.LedgerEntry) int {
		da, aok := a.Date.Day()
		db, bok := b.Date.Day()
		switch {
		case aok && bok:
			return da.Compare(db)
		case aok:
			return -1
		case bok:
			return 1
		}
		return 0
	})
	return out
}

// RowPage is one printed page of a ledger report.
type RowPage struct {
	Number         int
	Rows           []Row
	BroughtForward decimal.Decimal
	CarriedForward decimal.Decimal
}

// PageRows splits rows into pages of at most pageSize. The first page brings
// forward the opening balance; each later page brings forward the previous
// page's last balance. An empty ledger still yields one page.
func PageRows(res Result, pageSize int) []RowPage {
	if pageSize <= 0 {
		pageSize = len(res.Rows)
	}
	forward := res.Opening
	if len(res.Rows) == 0 {
		return []RowPage{{Number: 1, Rows: []Row{}, BroughtForward: forward, CarriedForward: forward}}
	}

	var pages []RowPage
	for chunk := range slices.Chunk(res.Rows, pageSize) {
		p := RowPage{
			Number:         len(pages) + 1,
			Rows:           chunk,
			BroughtForward: forward,
			CarriedForward: chunk[len(chunk)-1].Balance,
		}
		forward = p.CarriedForward
		pages = append(pages, p)
	}
	return pages
}

// Span returns the first and last entry days, if any entry has a date.
func Span(entries []core.LedgerEntry) (first, last time.Time, ok bool) {
	for _, e := range entries {
		d, dok := e.Date.Day()
		if !dok {
			continue
		}
		if !ok {
			first, last, ok = d, d, true
			continue
		}
		first = minTime(first, d)
		last = maxTime(last, d)
	}
	return first, last, ok
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
