package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/log"
	"finboard/internal/observability/metrics"
	"finboard/internal/report"
)

// statementResponse is a computed ledger for one customer.
type statementResponse struct {
	Customer string `json:"customer"`
	ledger.Result
	StandingLabel string `json:"standing_label"`
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customers, err := s.ledger.Customers(ctx)
	if err != nil {
		errorResponse(ctx, log.OpList, fmt.Errorf("list customers: %w", err)).Write(w)
		return
	}
	if customers == nil {
		customers = []string{}
	}
	NewResponse().JSON(map[string][]string{"customers": customers}).Write(w)
}

// statement decodes the customer and display options and computes the ledger.
func (s *Server) statement(r *http.Request) (string, ledger.Result, error) {
	customer, err := pathCustomer(r)
	if err != nil {
		return "", ledger.Result{}, err
	}

	q := r.URL.Query()
	opts := ledger.Options{Mode: ledger.ParseDisplayMode(strings.TrimSpace(q.Get("mode")))}
	if v := strings.TrimSpace(q.Get("opening")); v != "" {
		opening, err := core.ParseNumber(v)
		if err != nil {
			return "", ledger.Result{}, fmt.Errorf("%w: invalid opening %q", errBadRequest, v)
		}
		opts.Opening = opening
	}

	res, err := s.ledger.Statement(r.Context(), customer, opts)
	if err != nil {
		return "", ledger.Result{}, err
	}
	return customer, res, nil
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	customer, res, err := s.statement(r)
	if err != nil {
		errorResponse(r.Context(), log.OpRead, err).Write(w)
		return
	}
	if res.Rows == nil {
		res.Rows = []ledger.Row{}
	}
	NewResponse().JSON(statementResponse{
		Customer:      customer,
		Result:        res,
		StandingLabel: res.Standing.Label(),
	}).Write(w)
}

func (s *Server) handleLedgerPDF(w http.ResponseWriter, r *http.Request) {
	customer, res, err := s.statement(r)
	if err != nil {
		errorResponse(r.Context(), log.OpRender, err).Write(w)
		return
	}

	start := time.Now()
	data, err := report.LedgerPDF(customer, res, start)
	metrics.ObserveReport("pdf", err, time.Since(start))
	if err != nil {
		errorResponse(r.Context(), log.OpRender, fmt.Errorf("render ledger pdf for %s: %w", customer, err)).Write(w)
		return
	}

	NewResponse().
		Attachment(filename("ledger-"+customer, "pdf"), report.PDFContentType, data).
		Write(w)
}

func (s *Server) handleLedgerXLSX(w http.ResponseWriter, r *http.Request) {
	customer, res, err := s.statement(r)
	if err != nil {
		errorResponse(r.Context(), log.OpRender, err).Write(w)
		return
	}

	start := time.Now()
	data, err := report.LedgerXLSX(customer, res)
	metrics.ObserveReport("xlsx", err, time.Since(start))
	if err != nil {
		errorResponse(r.Context(), log.OpRender, fmt.Errorf("render ledger workbook for %s: %w", customer, err)).Write(w)
		return
	}

	NewResponse().
		Attachment(filename("ledger-"+customer, "xlsx"), report.XLSXContentType, data).
		Write(w)
}

func (s *Server) handleAddLedgerEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customer, err := pathCustomer(r)
	if err != nil {
		errorResponse(ctx, log.OpCreate, err).Write(w)
		return
	}

	var entry core.LedgerEntry
	if err := decodeJSON(w, r, &entry); err != nil {
		errorResponse(ctx, log.OpCreate, err).Write(w)
		return
	}
	entry = sanitizeEntry(entry)
	entry.ID = 0
	entry.Customer = customer

	saved, err := s.store.CreateLedgerEntry(ctx, entry)
	if err != nil {
		errorResponse(ctx, log.OpCreate, err).Write(w)
		return
	}
	log.NewStructuredLogger(log.FromContext(ctx)).LogLedgerEntry(ctx, customer, saved.ID)
	NewResponse().Status(http.StatusCreated).JSON(saved).Write(w)
}
