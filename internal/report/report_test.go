package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finboard/internal/core"
	"finboard/internal/ledger"
)

func sampleLedger(t *testing.T, n int) ledger.Result {
	t.Helper()
	entries := make([]core.LedgerEntry, 0, n)
	for i := range n {
		var e core.LedgerEntry
		raw := fmt.Sprintf(`{"id":%d,"customer":"Acme","date":"2025-01-%02d","description":{"text":"Invoice %d","items":["consulting"]},"credit":"100","debit":"%d"}`, i+1, i%28+1, i+1, i)
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		entries = append(entries, e)
	}
	return ledger.Compute(entries, ledger.Options{})
}

func TestLedgerPDF(t *testing.T) {
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	out, err := LedgerPDF("Acme", sampleLedger(t, 3), at)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	// Enough rows to force page breaks with brought-forward lines.
	long, err := LedgerPDF("Acme", sampleLedger(t, RowsPerPage*2+5), at)
	require.NoError(t, err)
	assert.Greater(t, len(long), len(out))

	empty, err := LedgerPDF("Nobody", ledger.Compute(nil, ledger.Options{}), at)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF-")))
}

func TestLedgerXLSX(t *testing.T) {
	res := sampleLedger(t, 3)
	out, err := LedgerXLSX("Acme", res)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("ledger")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Date", "Description", "Reference", "Debit", "Credit", "Balance"}, rows[0])
	assert.Equal(t, "2025-01-01", rows[1][0])
	assert.Equal(t, "Invoice 1; consulting", rows[1][1])

	closing, err := f.GetCellValue("totals", "B5")
	require.NoError(t, err)
	assert.Equal(t, core.FormatAmount(res.Totals.ClosingBalance), closing)

	period, err := f.GetCellValue("totals", "B7")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01 to 2025-01-03", period)
	standing, err := f.GetCellValue("totals", "B6")
	require.NoError(t, err)
	assert.Equal(t, "counterparty owes us", standing)
}

func TestRecordsXLSX(t *testing.T) {
	var records []core.Record
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":7,"status":"Pending","vendor_name":"Office Co","title":"Paper","expense_date":"2025-03-04","amount":"12.50"},
		{"id":8,"status":"Paid","supplier_name":"Fuel Inc","description":"Diesel","total":"30"}
	]`), &records))

	out, err := RecordsXLSX(core.KindExpense, records)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("expenses")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "7", rows[1][0])
	assert.Equal(t, "Office Co", rows[1][2])
	assert.Equal(t, "2025-03-04", rows[1][5])
	assert.Equal(t, "Diesel", rows[2][3])

	count, _ := f.GetCellValue("summary", "B2")
	total, _ := f.GetCellValue("summary", "B3")
	assert.Equal(t, "2", count)
	assert.Equal(t, "42.50", total)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, "2025-01-01 to 2025-01-28", Period(sampleLedger(t, 40)))
	assert.Equal(t, "no dated entries", Period(ledger.Compute(nil, ledger.Options{})))
}

func TestLedgerPDF_EncodesLatin1Text(t *testing.T) {
	compress = false
	t.Cleanup(func() { compress = true })

	var e core.LedgerEntry
	require.NoError(t, json.Unmarshal([]byte(`{"customer":"Zoë Müller","date":"2025-03-04","description":"Café rent","credit":"5"}`), &e))
	res := ledger.Compute([]core.LedgerEntry{e}, ledger.Options{})

	out, err := LedgerPDF("Zoë Müller", res, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.Contains(out, []byte("Customer: Zo\xeb M\xfcller")))
	assert.True(t, bytes.Contains(out, []byte("Caf\xe9 rent")))
	assert.False(t, bytes.Contains(out, []byte("Caf\xc3\xa9")))
	assert.True(t, bytes.Contains(out, []byte("Period: 2025-03-04 to 2025-03-04")))
}
