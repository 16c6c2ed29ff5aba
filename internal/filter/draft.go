package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

var (
	ErrInvalidDateRange   = errors.New("date_from is after date_to")
	ErrInvalidAmountRange = errors.New("min_amount is greater than max_amount")
)

// Draft holds criteria while they are being edited. The engine never sees a
// Draft; Commit produces the Criteria value that is passed on.
type Draft struct {
	search    string
	customer  string
	reference string
	dateFrom  *time.Time
	dateTo    *time.Time
	minAmount *decimal.Decimal
	maxAmount *decimal.Decimal
}

func (d *Draft) SetSearch(s string)    { d.search = strings.TrimSpace(s) }
func (d *Draft) SetCustomer(s string)  { d.customer = strings.TrimSpace(s) }
func (d *Draft) SetReference(s string) { d.reference = strings.TrimSpace(s) }

// SetDateRange sets either bound; nil clears it.
func (d *Draft) SetDateRange(from, to *time.Time) {
	d.dateFrom = copyPtr(from)
	d.dateTo = copyPtr(to)
}

// SetAmountRange sets either bound; nil clears it.
func (d *Draft) SetAmountRange(lo, hi *decimal.Decimal) {
	d.minAmount = copyPtr(lo)
	d.maxAmount = copyPtr(hi)
}

// Reset clears every field.
func (d *Draft) Reset() { *d = Draft{} }

// Validate rejects inverted ranges.
func (d *Draft) Validate() error {
	if d.dateFrom != nil && d.dateTo != nil && d.dateFrom.After(*d.dateTo) {
		return ErrInvalidDateRange
	}
	if d.minAmount != nil && d.maxAmount != nil && d.minAmount.GreaterThan(*d.maxAmount) {
		return ErrInvalidAmountRange
	}
	return nil
}

// Commit returns an independent copy of the draft as Criteria. Later edits to
// the draft do not affect the returned value.
func (d *Draft) Commit() Criteria {
	return Criteria{
		Search:          d.search,
		Customer:        d.customer,
		ReferenceNumber: d.reference,
		DateFrom:        copyPtr(d.dateFrom),
		DateTo:          copyPtr(d.dateTo),
		MinAmount:       copyPtr(d.minAmount),
		MaxAmount:       copyPtr(d.maxAmount),
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// PageRequest is the requested window before clamping.
type PageRequest struct {
	Page     int
	PageSize int
}

// ParseQuery decodes list query parameters into a tab, committed criteria and
// a page request. Blank parameters are ignored; malformed ones are errors.
func ParseQuery(q url.Values, defaultPageSize int) (Tab, Criteria, PageRequest, error) {
	var d Draft
	d.SetSearch(q.Get("search"))
	d.SetCustomer(q.Get("customer"))
	d.SetReference(q.Get("reference"))

	from, err := parseDateParam(q, "date_from")
	if err != nil {
		return "", Criteria{}, PageRequest{}, err
	}
	to, err := parseDateParam(q, "date_to")
	if err != nil {
		return "", Criteria{}, PageRequest{}, err
	}
	d.SetDateRange(from, to)

	lo, err := parseAmountParam(q, "min_amount")
	if err != nil {
		return "", Criteria{}, PageRequest{}, err
	}
	hi, err := parseAmountParam(q, "max_amount")
	if err != nil {
		return "", Criteria{}, PageRequest{}, err
	}
	d.SetAmountRange(lo, hi)

	if err := d.Validate(); err != nil {
		return "", Criteria{}, PageRequest{}, err
	}

	page := PageRequest{Page: 1, PageSize: defaultPageSize}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", Criteria{}, PageRequest{}, fmt.Errorf("invalid page %q: %w", v, err)
		}
		page.Page = n
	}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return "", Criteria{}, PageRequest{}, fmt.Errorf("invalid page_size %q: must be between 1 and 500", v)
		}
		page.PageSize = n
	}

	tab := Tab(strings.TrimSpace(q.Get("tab")))
	if tab == "" {
		tab = TabAll
	}
	return tab, d.Commit(), page, nil
}

func parseDateParam(q url.Values, key string) (*time.Time, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", key, v)
	}
	return &t, nil
}

func parseAmountParam(q url.Values, key string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseNumber(strings.ReplaceAll(v, ",", "."))
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return &d, nil
}
