package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortInvoices_TwoTiers(t *testing.T) {
	records := decode(t, `[
		{"id":1,"status":"Paid","updated_at":"2025-05-01T10:00:00Z"},
		{"id":2,"status":"Sent","created_at":"2025-04-01T10:00:00Z"},
		{"id":3,"status":"Paid","updated_at":"2025-06-01T10:00:00Z"},
		{"id":4,"status":"Draft","created_at":"2025-04-02T10:00:00Z"},
		{"id":5,"status":" paid ","bill_date":"2025-07-01"}
	]`)
	got := SortInvoices(records)
	assert.Equal(t, []int64{4, 2, 5, 3, 1}, ids(got))
}

func TestSortInvoices_MissingDatesLastAndStable(t *testing.T) {
	records := decode(t, `[
		{"id":1,"status":"Sent"},
		{"id":2,"status":"Sent","created_at":"2025-01-01"},
		{"id":3,"status":"Sent"},
		{"id":4,"status":"Sent","created_at":"2025-01-01"}
	]`)
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(SortInvoices(records)))
}

func TestSortInvoices_CreatedFallsBackToPrimaryDate(t *testing.T) {
	records := decode(t, `[
		{"id":1,"status":"Sent","invoice_date":"2025-01-10"},
		{"id":2,"status":"Sent","created_at":"2025-01-05"},
		{"id":3,"status":"Sent","bill_date":"2025-02-01","created_at":"2024-12-01"}
	]`)
	// created_at wins over bill_date for the unresolved tier.
	assert.Equal(t, []int64{1, 2, 3}, ids(SortInvoices(records)))
}

func TestSortExpenses_PriorityThenDate(t *testing.T) {
	records := decode(t, `[
		{"id":1,"status":"Paid","expense_date":"2025-03-01"},
		{"id":2,"status":"Pending","expense_date":"2025-01-01"},
		{"id":3,"status":"Rejected","expense_date":"2025-12-01"},
		{"id":4,"status":"Pending","expense_date":"2025-02-01"},
		{"id":5,"status":"Pending","expense_date":"not a date"},
		{"id":6,"status":"Paid","occurred_on":"2025-04-01"}
	]`)
	assert.Equal(t, []int64{4, 2, 5, 6, 1, 3}, ids(SortExpenses(records)))
}

func TestStatusPriority(t *testing.T) {
	assert.Equal(t, 1, StatusPriority("Pending"))
	assert.Equal(t, 2, StatusPriority("Paid"))
	assert.Equal(t, 3, StatusPriority("Overdue"))
	assert.Equal(t, 3, StatusPriority(""))
}
