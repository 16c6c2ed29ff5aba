package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	KindInvoice Kind = "invoice"
	KindExpense Kind = "expense"
)

const (
	StatusNotSent Status = "Not Sent"
	StatusDraft   Status = "Draft"
	StatusSent    Status = "Sent"
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
	StatusOverdue Status = "Overdue"
)

const (
	InvoiceTypePO      = "po_invoice"
	InvoiceTypeRegular = "regular"
)

type (
	Kind   string
	Status string

	// Record is an invoice or an expense as stored. Historical exports use
	// several names for the same concept, so each synonym has its own field;
	// resolution order lives in synonyms.go.
	Record struct {
		ID          int64  `json:"id"`
		Kind        Kind   `json:"kind,omitempty"`
		Status      Status `json:"status,omitempty"`
		InvoiceType string `json:"invoice_type,omitempty"`
		Category    string `json:"category,omitempty"`

		TotalAmount      Number `json:"total_amount,omitzero"`
		TotalAmountCamel Number `json:"totalAmount,omitzero"`
		Total            Number `json:"total,omitzero"`
		Amount           Number `json:"amount,omitzero"`
		Subtotal         Number `json:"subtotal,omitzero"`
		InvoiceAmount    Number `json:"invoice_amount,omitzero"`
		InvoiceTotal     Number `json:"invoiceTotal,omitzero"`
		FinalAmount      Number `json:"final_amount,omitzero"`

		BillDate    Timestamp `json:"bill_date,omitzero"`
		ExpenseDate Timestamp `json:"expense_date,omitzero"`
		OccurredOn  Timestamp `json:"occurred_on,omitzero"`
		InvoiceDate Timestamp `json:"invoice_date,omitzero"`
		Date        Timestamp `json:"date,omitzero"`
		CreatedAt   Timestamp `json:"created_at,omitzero"`
		UpdatedAt   Timestamp `json:"updated_at,omitzero"`

		CustomerName    string `json:"customer_name,omitempty"`
		VendorName      string `json:"vendor_name,omitempty"`
		SupplierName    string `json:"supplier_name,omitempty"`
		Title           string `json:"title,omitempty"`
		Description     string `json:"description,omitempty"`
		ReferenceNumber Text   `json:"reference_number,omitempty"`
		InvoiceNumber   Text   `json:"invoice_number,omitempty"`
	}
)

var (
	ErrInvalidKind        = errors.New("invalid record kind")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNotFinite          = errors.New("number out of range")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyCounterparty  = errors.New("empty customer or vendor name")
	ErrDescriptionTooLong = errors.New("description too long (max 500 characters)")
)

var (
	invoiceStatuses = []Status{StatusNotSent, StatusDraft, StatusSent, StatusPending, StatusPaid, StatusOverdue}
	expenseStatuses = []Status{StatusPaid, StatusPending}
)

// IsValid reports whether k is a known record kind.
func (k Kind) IsValid() bool {
	return k == KindInvoice || k == KindExpense
}

// Statuses returns the status enumeration for the kind.
func (k Kind) Statuses() []Status {
	switch k {
	case KindInvoice:
		return invoiceStatuses
	case KindExpense:
		return expenseStatuses
	default:
		return nil
	}
}

// DefaultStatus is assigned on create when the client sends none.
func (k Kind) DefaultStatus() Status {
	if k == KindInvoice {
		return StatusDraft
	}
	return StatusPending
}

// ParseKind accepts the singular or plural collection name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "invoice", "invoices":
		return KindInvoice, nil
	case "expense", "expenses":
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// IsPO reports whether the invoice originates from a purchase order.
func (r Record) IsPO() bool {
	return r.InvoiceType == InvoiceTypePO
}

// IsPaid matches the status "paid" regardless of case.
func (r Record) IsPaid() bool {
	return strings.EqualFold(strings.TrimSpace(string(r.Status)), "paid")
}

// Normalize fills create-time defaults without touching the receiver.
func (r Record) Normalize() Record {
	out := r
	out.Status = Status(strings.TrimSpace(string(out.Status)))
	if out.Status == "" {
		out.Status = out.Kind.DefaultStatus()
	}
	if out.Kind == KindInvoice && out.InvoiceType == "" {
		out.InvoiceType = InvoiceTypeRegular
	}
	return out
}

func (r Record) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidKind
	}
	valid := false
	for _, s := range r.Kind.Statuses() {
		if r.Status == s {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w %q for %s", ErrInvalidStatus, r.Status, r.Kind)
	}
	amount, ok := r.ResolveAmountOK()
	if !ok || !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if r.Counterparty() == "" {
		return ErrEmptyCounterparty
	}
	if len(r.TitleText()) > 500 {
		return ErrDescriptionTooLong
	}
	return nil
}
