package core

import "github.com/shopspring/decimal"

// StatusAmount is a count and sum for one status.
type StatusAmount struct {
	Status Status          `json:"status"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary is the dashboard overview across invoices, expenses and customers.
type Summary struct {
	InvoiceTabs      map[string]int  `json:"invoice_tabs"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	Collected        decimal.Decimal `json:"collected"`
	ExpensesByStatus []StatusAmount  `json:"expenses_by_status"`
	ExpenseTotal     decimal.Decimal `json:"expense_total"`
	Customers        int             `json:"customers"`
}
