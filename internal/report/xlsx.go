package report

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"finboard/internal/core"
	"finboard/internal/ledger"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RecordsXLSX writes one row per record plus a summary sheet with the count
// and amount sum. Records are written in the order given.
func RecordsXLSX(kind core.Kind, records []core.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := string(kind) + "s"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet("summary"); err != nil {
		return nil, err
	}

	header := []any{"ID", "Status", "Counterparty", "Title", "Reference", "Date", "Amount"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for i, r := range records {
		amount := core.RoundCurrency(r.ResolveAmount())
		sum = sum.Add(amount)

		date := ""
		if d, ok := r.PrimaryDay(); ok {
			date = d.Format("2006-01-02")
		}
		row := []any{r.ID, string(r.Status), r.Counterparty(), r.TitleText(), r.ReferenceText(), date, amount.InexactFloat64()}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue("summary", "A1", "Kind")
	_ = f.SetCellValue("summary", "B1", string(kind))
	_ = f.SetCellValue("summary", "A2", "Count")
	_ = f.SetCellValue("summary", "B2", len(records))
	_ = f.SetCellValue("summary", "A3", "Total")
	_ = f.SetCellValue("summary", "B3", core.FormatAmount(sum))

	return write(f)
}

// LedgerXLSX writes the annotated ledger rows and a totals sheet.
func LedgerXLSX(customer string, res ledger.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "ledger"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet("totals"); err != nil {
		return nil, err
	}

	header := []any{"Date", "Description", "Reference", "Debit", "Credit", "Balance"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range res.Rows {
		date := r.Entry.Date.String()
		if d, ok := r.Entry.Date.Day(); ok {
			date = d.Format("2006-01-02")
		}
		row := []any{
			date,
			r.Entry.Description.String(),
			r.Entry.Reference,
			r.Debit.InexactFloat64(),
			r.Credit.InexactFloat64(),
			r.Balance.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue("totals", "A1", "Customer")
	_ = f.SetCellValue("totals", "B1", customer)
	_ = f.SetCellValue("totals", "A2", "Opening")
	_ = f.SetCellValue("totals", "B2", core.FormatAmount(res.Opening))
	_ = f.SetCellValue("totals", "A3", "Debit")
	_ = f.SetCellValue("totals", "B3", core.FormatAmount(res.Totals.Debit))
	_ = f.SetCellValue("totals", "A4", "Credit")
	_ = f.SetCellValue("totals", "B4", core.FormatAmount(res.Totals.Credit))
	_ = f.SetCellValue("totals", "A5", "Closing balance")
	_ = f.SetCellValue("totals", "B5", core.FormatAmount(res.Totals.ClosingBalance))
	_ = f.SetCellValue("totals", "A6", "Standing")
	_ = f.SetCellValue("totals", "B6", res.Standing.Label())
	_ = f.SetCellValue("totals", "A7", "Period")
	_ = f.SetCellValue("totals", "B7", Period(res))

	return write(f)
}

func write(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
