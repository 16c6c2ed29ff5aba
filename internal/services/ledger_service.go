package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/ports"
)

// LedgerStore is the storage side of LedgerService.
type LedgerStore interface {
	ports.LedgerReader
	ports.LedgerWriter
}

// LedgerService produces customer statements.
type LedgerService struct {
	store LedgerStore
}

func NewLedgerService(store LedgerStore) *LedgerService {
	return &LedgerService{store: store}
}

// Statement loads a customer's entries, orders them by date and runs the
// balance accumulator.
func (s *LedgerService) Statement(ctx context.Context, customer string, opts ledger.Options) (ledger.Result, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return ledger.Result{}, core.ErrEmptyCounterparty
	}

	entries, err := s.store.ListLedgerEntries(ctx, customer)
	if err != nil {
		return ledger.Result{}, fmt.Errorf("list ledger entries for %s: %w", customer, err)
	}

	res := ledger.Compute(ledger.SortChronological(entries), opts)
	slog.DebugContext(ctx, "Ledger computed",
		"customer", customer,
		"entries", len(entries),
		"mode", res.Mode,
		"closing_balance", res.Totals.ClosingBalance.String())
	return res, nil
}

// AddEntry validates and appends an entry to a customer's ledger.
func (s *LedgerService) AddEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	e.Customer = strings.TrimSpace(e.Customer)
	if err := e.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}

	saved, err := s.store.CreateLedgerEntry(ctx, e)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("save ledger entry: %w", err)
	}
	slog.InfoContext(ctx, "Ledger entry saved",
		"customer", saved.Customer,
		"id", saved.ID)
	return saved, nil
}

func (s *LedgerService) Customers(ctx context.Context) ([]string, error) {
	return s.store.ListCustomers(ctx)
}
