package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finboard/internal/core"
	"finboard/internal/filter"
	"finboard/internal/ports"
)

// DashboardSource is everything the overview reads.
type DashboardSource interface {
	ports.RecordReader
	ListCustomers(ctx context.Context) ([]string, error)
}

// DashboardService builds the overview shown on the landing page.
type DashboardService struct {
	source DashboardSource
}

func NewDashboardService(source DashboardSource) *DashboardService {
	return &DashboardService{source: source}
}

// Summary fetches invoices, expenses and customers concurrently and folds
// them into one overview.
func (s *DashboardService) Summary(ctx context.Context) (core.Summary, error) {
	var (
		invoices  []core.Record
		expenses  []core.Record
		customers []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.source.ListRecords(gctx, core.KindInvoice)
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.source.ListRecords(gctx, core.KindExpense)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		customers, err = s.source.ListCustomers(gctx)
		if err != nil {
			return fmt.Errorf("list customers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	summary := Summarize(invoices, expenses, customers)
	slog.DebugContext(ctx, "Dashboard summary computed",
		"invoices", len(invoices),
		"expenses", len(expenses),
		"customers", summary.Customers)
	return summary, nil
}

// Summarize is the pure part of Summary. Invoice tab counts use the same
// predicate as the listing, paid invoices count as collected and everything
// else as outstanding. Expense buckets follow the expense status order, with
// unknown statuses appended alphabetically.
func Summarize(invoices, expenses []core.Record, customers []string) core.Summary {
	summary := core.Summary{
		InvoiceTabs:  make(map[string]int, len(filter.InvoiceTabs)),
		Outstanding:  decimal.Zero,
		Collected:    decimal.Zero,
		ExpenseTotal: decimal.Zero,
		Customers:    len(customers),
	}

	for tab, n := range filter.CountTabs(invoices, filter.InvoiceTabs...) {
		summary.InvoiceTabs[string(tab)] = n
	}
	for _, inv := range invoices {
		amount := inv.ResolveAmount()
		if inv.IsPaid() {
			summary.Collected = summary.Collected.Add(amount)
		} else {
			summary.Outstanding = summary.Outstanding.Add(amount)
		}
	}

	buckets := make(map[core.Status]*core.StatusAmount)
	order := slices.Clone(core.KindExpense.Statuses())
	for _, st := range order {
		buckets[st] = &core.StatusAmount{Status: st, Amount: decimal.Zero}
	}
	var extra []core.Status
	for _, exp := range expenses {
		b, ok := buckets[exp.Status]
		if !ok {
			b = &core.StatusAmount{Status: exp.Status, Amount: decimal.Zero}
			buckets[exp.Status] = b
			extra = append(extra, exp.Status)
		}
		amount := exp.ResolveAmount()
		b.Count++
		b.Amount = b.Amount.Add(amount)
		summary.ExpenseTotal = summary.ExpenseTotal.Add(amount)
	}
	slices.Sort(extra)
	order = append(order, extra...)

	summary.ExpensesByStatus = make([]core.StatusAmount, 0, len(order))
	for _, st := range order {
		b := buckets[st]
		b.Amount = core.RoundCurrency(b.Amount)
		summary.ExpensesByStatus = append(summary.ExpensesByStatus, *b)
	}
	summary.Outstanding = core.RoundCurrency(summary.Outstanding)
	summary.Collected = core.RoundCurrency(summary.Collected)
	summary.ExpenseTotal = core.RoundCurrency(summary.ExpenseTotal)
	return summary
}
