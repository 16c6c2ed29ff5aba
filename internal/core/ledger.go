package core

import (
	"bytes"
	"encoding/json"
	"strings"
)

// LedgerEntry is one debit or credit line on a customer account. Both sides
// are always present; in practice only one is non-zero.
type LedgerEntry struct {
	ID          int64             `json:"id"`
	Customer    string            `json:"customer"`
	Date        Timestamp         `json:"date"`
	Description LedgerDescription `json:"description"`
	Debit       Number            `json:"debit"`
	Credit      Number            `json:"credit"`
	Status      Status            `json:"status,omitempty"`
	Reference   string            `json:"reference,omitempty"`
}

// IsPaid matches the status "paid" regardless of case.
func (e LedgerEntry) IsPaid() bool {
	return strings.EqualFold(strings.TrimSpace(string(e.Status)), "paid")
}

// LedgerDescription is either free text or a structured list of line items.
type LedgerDescription struct {
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// String joins the text and items for table rendering.
func (d LedgerDescription) String() string {
	parts := make([]string, 0, len(d.Items)+1)
	if s := strings.TrimSpace(d.Text); s != "" {
		parts = append(parts, s)
	}
	for _, it := range d.Items {
		if s := strings.TrimSpace(it); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "; ")
}

func (d *LedgerDescription) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = LedgerDescription{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = LedgerDescription{Text: s}
		return nil
	}
	type plain LedgerDescription
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = LedgerDescription(p)
	return nil
}

func (d LedgerDescription) MarshalJSON() ([]byte, error) {
	if len(d.Items) == 0 {
		return json.Marshal(d.Text)
	}
	type plain LedgerDescription
	return json.Marshal(plain(d))
}

// Validate checks a ledger entry on the write path.
func (e LedgerEntry) Validate() error {
	if strings.TrimSpace(e.Customer) == "" {
		return ErrEmptyCounterparty
	}
	if _, ok := e.Date.Time(); !ok {
		return ErrInvalidDate
	}
	debit, dok := e.Debit.Decimal()
	credit, cok := e.Credit.Decimal()
	if (e.Debit.IsZero() || dok) && (e.Credit.IsZero() || cok) &&
		!debit.IsNegative() && !credit.IsNegative() &&
		(debit.IsPositive() || credit.IsPositive()) {
		return nil
	}
	return ErrInvalidAmount
}
