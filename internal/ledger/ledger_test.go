package ledger

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
)

func entries(t *testing.T, raw string) []core.LedgerEntry {
	t.Helper()
	var out []core.LedgerEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func balances(res Result) []string {
	out := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		out[i] = core.FormatAmount(r.Balance)
	}
	return out
}

func TestCompute_RunningBalance(t *testing.T) {
	in := entries(t, `[
		{"debit":0,"credit":300},
		{"debit":100,"credit":0},
		{"debit":0,"credit":50}
	]`)
	res := Compute(in, Options{})

	assert.Equal(t, []string{"300.00", "200.00", "250.00"}, balances(res))
	assert.Equal(t, "250.00", core.FormatAmount(res.Totals.ClosingBalance))
	assert.Equal(t, "100.00", core.FormatAmount(res.Totals.Debit))
	assert.Equal(t, "350.00", core.FormatAmount(res.Totals.Credit))
	assert.Equal(t, OwesUs, res.Standing)
	assert.Equal(t, "counterparty owes us", res.Standing.Label())
	assert.Equal(t, DisplayAll, res.Mode)
}

func TestCompute_Empty(t *testing.T) {
	res := Compute(nil, Options{})
	assert.Empty(t, res.Rows)
	assert.NotNil(t, res.Rows)
	assert.True(t, res.Totals.ClosingBalance.IsZero())
	assert.Equal(t, Settled, res.Standing)

	res = Compute(nil, Options{Opening: decimal.NewFromInt(-40)})
	assert.Equal(t, "-40.00", core.FormatAmount(res.Totals.ClosingBalance))
	assert.Equal(t, WeOwe, res.Standing)
}

func TestCompute_Opening(t *testing.T) {
	in := entries(t, `[{"debit":"25.50"},{"credit":"10"}]`)
	res := Compute(in, Options{Opening: decimal.NewFromInt(100)})
	assert.Equal(t, []string{"74.50", "84.50"}, balances(res))
}

func TestCompute_ReplayAndAppend(t *testing.T) {
	in := entries(t, `[
		{"credit":120.10},{"debit":"19.99"},{"debit":null,"credit":"abc"},
		{"debit":500},{"credit":"0.01"}
	]`)
	first := Compute(in, Options{})
	second := Compute(in, Options{})
	assert.Equal(t, balances(first), balances(second))

	longer := append(append([]core.LedgerEntry{}, in...), core.LedgerEntry{Credit: core.NumberFrom("7")})
	extended := Compute(longer, Options{})
	assert.Equal(t, balances(first), balances(extended)[:len(in)])
	assert.Equal(t, "-392.88", core.FormatAmount(extended.Totals.ClosingBalance))
}

func TestCompute_TotalsMatchRows(t *testing.T) {
	in := entries(t, `[
		{"credit":300,"status":"Paid"},
		{"debit":100,"status":"pending"},
		{"credit":50,"status":"PAID"},
		{"debit":20}
	]`)
	for _, mode := range []DisplayMode{DisplayAll, DisplayOutstanding} {
		res := Compute(in, Options{Mode: mode})
		var debit, credit decimal.Decimal
		for _, r := range res.Rows {
			debit = debit.Add(r.Debit)
			credit = credit.Add(r.Credit)
		}
		assert.True(t, debit.Equal(res.Totals.Debit), mode)
		assert.True(t, credit.Equal(res.Totals.Credit), mode)
		assert.True(t, res.Totals.ClosingBalance.Equal(credit.Sub(debit)), mode)
	}
}

func TestCompute_OutstandingZeroesPaid(t *testing.T) {
	in := entries(t, `[
		{"credit":300,"status":"Paid"},
		{"debit":100,"status":"Pending"}
	]`)
	res := Compute(in, Options{Mode: DisplayOutstanding})
	assert.True(t, res.Rows[0].Credit.IsZero())
	assert.True(t, res.Rows[0].Debit.IsZero())
	assert.Equal(t, []string{"0.00", "-100.00"}, balances(res))
	assert.Equal(t, WeOwe, res.Standing)
	// The stored entry is untouched.
	assert.Equal(t, "300", res.Rows[0].Entry.Credit.Raw())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OwesUs, Classify(decimal.RequireFromString("0.01")))
	assert.Equal(t, WeOwe, Classify(decimal.RequireFromString("-0.01")))
	assert.Equal(t, Settled, Classify(decimal.Zero))
	assert.Equal(t, "we owe counterparty", WeOwe.Label())
	assert.Equal(t, "settled", Settled.Label())
}

func TestParseDisplayMode(t *testing.T) {
	assert.Equal(t, DisplayOutstanding, ParseDisplayMode("outstanding"))
	assert.Equal(t, DisplayAll, ParseDisplayMode("all"))
	assert.Equal(t, DisplayAll, ParseDisplayMode("bogus"))
}

func TestSortChronological(t *testing.T) {
	in := entries(t, `[
		{"id":1,"date":"2025-03-02"},
		{"id":2},
		{"id":3,"date":"2025-03-01T18:00:00Z"},
		{"id":4,"date":"2025-03-01"},
		{"id":5,"date":"2025-01-15"}
	]`)
	got := SortChronological(in)
	var ids []int64
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{5, 3, 4, 1, 2}, ids)
	assert.Equal(t, int64(1), in[0].ID)

	first, last, ok := Span(in)
	require.True(t, ok)
	assert.Equal(t, "2025-01-15", first.Format("2006-01-02"))
	assert.Equal(t, "2025-03-02", last.Format("2006-01-02"))
}

func TestPageRows(t *testing.T) {
	in := entries(t, `[{"credit":10},{"credit":20},{"debit":5},{"credit":1},{"debit":2}]`)
	res := Compute(in, Options{Opening: decimal.NewFromInt(100)})
	pages := PageRows(res, 2)
	require.Len(t, pages, 3)

	assert.Equal(t, "100.00", core.FormatAmount(pages[0].BroughtForward))
	assert.Equal(t, "130.00", core.FormatAmount(pages[0].CarriedForward))
	assert.Equal(t, "130.00", core.FormatAmount(pages[1].BroughtForward))
	assert.Equal(t, "126.00", core.FormatAmount(pages[1].CarriedForward))
	assert.Len(t, pages[2].Rows, 1)
	assert.Equal(t, 3, pages[2].Number)
	assert.True(t, pages[2].CarriedForward.Equal(res.Totals.ClosingBalance))

	empty := PageRows(Compute(nil, Options{}), 20)
	require.Len(t, empty, 1)
	assert.Empty(t, empty[0].Rows)
}
