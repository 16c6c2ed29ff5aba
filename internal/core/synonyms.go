package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// synonym binds a JSON field name to its accessor. Each table below is the
// only place its resolution order is written down.
type synonym[T any] struct {
	field string
	get   func(Record) T
}

// amountSynonyms in resolution order. The first one that parses as a finite
// number wins.
var amountSynonyms = []synonym[Number]{
	{"total_amount", func(r Record) Number { return r.TotalAmount }},
	{"totalAmount", func(r Record) Number { return r.TotalAmountCamel }},
	{"total", func(r Record) Number { return r.Total }},
	{"amount", func(r Record) Number { return r.Amount }},
	{"subtotal", func(r Record) Number { return r.Subtotal }},
	{"invoice_amount", func(r Record) Number { return r.InvoiceAmount }},
	{"invoiceTotal", func(r Record) Number { return r.InvoiceTotal }},
	{"final_amount", func(r Record) Number { return r.FinalAmount }},
}

// primaryDateSynonyms prefer the explicit bill or occurred date over creation.
var primaryDateSynonyms = []synonym[Timestamp]{
	{"bill_date", func(r Record) Timestamp { return r.BillDate }},
	{"expense_date", func(r Record) Timestamp { return r.ExpenseDate }},
	{"occurred_on", func(r Record) Timestamp { return r.OccurredOn }},
	{"invoice_date", func(r Record) Timestamp { return r.InvoiceDate }},
	{"date", func(r Record) Timestamp { return r.Date }},
	{"created_at", func(r Record) Timestamp { return r.CreatedAt }},
}

func fields[T any](table []synonym[T]) []string {
	out := make([]string, len(table))
	for i, s := range table {
		out[i] = s.field
	}
	return out
}

// AmountFields lists the amount synonyms in resolution order.
func AmountFields() []string { return fields(amountSynonyms) }

// PrimaryDateFields lists the date synonyms used for range filters, in
// resolution order.
func PrimaryDateFields() []string { return fields(primaryDateSynonyms) }

func (r Record) primaryDateCandidates() []Timestamp {
	out := make([]Timestamp, len(primaryDateSynonyms))
	for i, s := range primaryDateSynonyms {
		out[i] = s.get(r)
	}
	return out
}

// ResolveAmountOK returns the first parseable amount synonym.
func (r Record) ResolveAmountOK() (decimal.Decimal, bool) {
	for _, s := range amountSynonyms {
		if d, ok := s.get(r).Decimal(); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// ResolveAmount returns the record amount, or zero when nothing parses.
func (r Record) ResolveAmount() decimal.Decimal {
	d, _ := r.ResolveAmountOK()
	return d
}

// PrimaryDate returns the first resolvable date synonym.
func (r Record) PrimaryDate() (time.Time, bool) {
	return firstResolved(r.primaryDateCandidates()...)
}

// CreatedDate orders unresolved records: creation time, then the primary date.
func (r Record) CreatedDate() (time.Time, bool) {
	if t, ok := r.CreatedAt.Time(); ok {
		return t, true
	}
	return r.PrimaryDate()
}

// UpdatedDate orders settled records: last update, then the primary date.
func (r Record) UpdatedDate() (time.Time, bool) {
	if t, ok := r.UpdatedAt.Time(); ok {
		return t, true
	}
	return r.PrimaryDate()
}

// PrimaryDay is PrimaryDate truncated to the calendar day.
func (r Record) PrimaryDay() (time.Time, bool) {
	for _, ts := range r.primaryDateCandidates() {
		if d, ok := ts.Day(); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// CounterpartyNames returns customer, vendor and supplier names in order.
func (r Record) CounterpartyNames() []string {
	return []string{r.CustomerName, r.VendorName, r.SupplierName}
}

// Counterparty returns the first non-blank counterparty name.
func (r Record) Counterparty() string {
	return firstNonBlank(r.CounterpartyNames()...)
}

// TitleText returns the title, falling back to the description.
func (r Record) TitleText() string {
	return firstNonBlank(r.Title, r.Description)
}

// ReferenceText returns the reference number, falling back to the invoice number.
func (r Record) ReferenceText() string {
	return firstNonBlank(r.ReferenceNumber.String(), r.InvoiceNumber.String())
}

// SearchFields are the free-text fields matched by the search box.
func (r Record) SearchFields() []string {
	return []string{
		r.CustomerName, r.VendorName, r.SupplierName,
		r.Title, r.Description,
		r.ReferenceNumber.String(), r.InvoiceNumber.String(),
	}
}

func firstResolved(candidates ...Timestamp) (time.Time, bool) {
	for _, ts := range candidates {
		if t, ok := ts.Time(); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
