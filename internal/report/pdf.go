// Package report renders ledgers and record listings as PDF and XLSX files.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"finboard/internal/core"
	"finboard/internal/ledger"
)

const (
	// RowsPerPage is the number of ledger rows printed per PDF page.
	RowsPerPage = 30

	PDFContentType = "application/pdf"
)

// compress is switched off in tests to inspect the content streams.
var compress = true

var ledgerColumns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 25, "C"},
	{"Description", 75, "L"},
	{"Debit", 30, "R"},
	{"Credit", 30, "R"},
	{"Balance", 30, "R"},
}

// LedgerPDF renders a customer statement. Each page opens with the balance
// brought forward and the last page closes with totals and the standing.
func LedgerPDF(customer string, res ledger.Result, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle("Ledger "+customer, true)
	pdf.SetFont("Arial", "", 12)
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pages := ledger.PageRows(res, RowsPerPage)
	for i, page := range pages {
		pdf.AddPage()
		if i == 0 {
			writeLedgerHeader(pdf, tr(customer), res, generatedAt)
		} else {
			pdf.SetFont("Arial", "", 10)
			pdf.Cell(0, 6, fmt.Sprintf("%s (page %d of %d)", tr(customer), page.Number, len(pages)))
			pdf.Ln(8)
		}

		pdf.SetFont("Arial", "B", 10)
		for _, c := range ledgerColumns {
			pdf.CellFormat(c.width, 6, c.title, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(160, 6, "Brought forward", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, core.FormatAmount(page.BroughtForward), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range page.Rows {
			cells := []string{
				row.Entry.Date.String(),
				tr(truncate(row.Entry.Description.String(), 48)),
				core.FormatAmount(row.Debit),
				core.FormatAmount(row.Credit),
				core.FormatAmount(row.Balance),
			}
			if d, ok := row.Entry.Date.Day(); ok {
				cells[0] = d.Format("2006-01-02")
			}
			for j, c := range ledgerColumns {
				pdf.CellFormat(c.width, 6, cells[j], "1", 0, c.align, false, 0, "")
			}
			pdf.Ln(-1)
		}

		if i < len(pages)-1 {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(160, 6, "Carried forward", "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, core.FormatAmount(page.CarriedForward), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(100, 6, "Totals", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, core.FormatAmount(res.Totals.Debit), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, core.FormatAmount(res.Totals.Credit), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, core.FormatAmount(res.Totals.ClosingBalance), "1", 0, "R", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Closing balance %s: %s", core.FormatAmount(res.Totals.ClosingBalance), res.Standing.Label()))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ledger pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeLedgerHeader(pdf *gofpdf.Fpdf, customer string, res ledger.Result, generatedAt time.Time) {
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Customer Ledger")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Customer: %s", customer))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("View: %s", res.Mode))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", Period(res)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(8)
}

// Period describes the dated span of a statement's rows.
func Period(res ledger.Result) string {
	entries := make([]core.LedgerEntry, len(res.Rows))
	for i, r := range res.Rows {
		entries[i] = r.Entry
	}
	first, last, ok := ledger.Span(entries)
	if !ok {
		return "no dated entries"
	}
	return first.Format("2006-01-02") + " to " + last.Format("2006-01-02")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
