package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"finboard/internal/core"
	"finboard/internal/filter"
	"finboard/internal/log"
	"finboard/internal/observability/metrics"
	"finboard/internal/report"
)

// listResponse is one page of a filtered collection plus the tab strip counts.
type listResponse struct {
	filter.Page[core.Record]
	TabCounts map[filter.Tab]int `json:"tab_counts"`
}

// view applies the query to a collection. Tab counts ignore the selected tab
// so the strip shows what each tab would hold under the current filters.
func view(kind core.Kind, records []core.Record, tab filter.Tab, criteria filter.Criteria) ([]core.Record, map[filter.Tab]int) {
	tabs := filter.InvoiceTabs
	if kind == core.KindExpense {
		tabs = filter.ExpenseTabs
	}
	counts := filter.CountTabs(filter.Filter(records, filter.TabAll, criteria, ""), tabs...)

	if kind == core.KindExpense {
		return filter.SortExpenses(filter.Filter(records, tab, criteria, "")), counts
	}
	return filter.FilterAndSort(records, tab, criteria, ""), counts
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := pathKind(r)
	if err != nil {
		errorResponse(ctx, log.OpList, err).Write(w)
		return
	}
	tab, criteria, page, err := filter.ParseQuery(r.URL.Query(), s.pageSize)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	records, err := s.listRecords(ctx, kind)
	if err != nil {
		errorResponse(ctx, log.OpList, fmt.Errorf("list %s: %w", kind, err)).Write(w)
		return
	}

	visible, counts := view(kind, records, tab, criteria)
	NewResponse().JSON(listResponse{
		Page:      filter.Paginate(visible, page.PageSize, page.Page),
		TabCounts: counts,
	}).Write(w)
}

func (s *Server) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := pathKind(r)
	if err != nil {
		errorResponse(ctx, log.OpRender, err).Write(w)
		return
	}
	tab, criteria, _, err := filter.ParseQuery(r.URL.Query(), s.pageSize)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	records, err := s.listRecords(ctx, kind)
	if err != nil {
		errorResponse(ctx, log.OpRender, fmt.Errorf("list %s: %w", kind, err)).Write(w)
		return
	}
	visible, _ := view(kind, records, tab, criteria)

	start := time.Now()
	data, err := report.RecordsXLSX(kind, visible)
	metrics.ObserveReport("xlsx", err, time.Since(start))
	if err != nil {
		errorResponse(ctx, log.OpRender, fmt.Errorf("render %s workbook: %w", kind, err)).Write(w)
		return
	}

	NewResponse().
		Attachment(string(kind)+"s.xlsx", report.XLSXContentType, data).
		Write(w)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, id, err := recordPath(r)
	if err != nil {
		errorResponse(ctx, log.OpRead, err).Write(w)
		return
	}

	rec, err := s.store.GetRecord(ctx, kind, id)
	if err != nil {
		errorResponse(ctx, log.OpRead, err).Write(w)
		return
	}
	NewResponse().JSON(rec).Write(w)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := pathKind(r)
	if err != nil {
		errorResponse(ctx, log.OpCreate, err).Write(w)
		return
	}

	var rec core.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		errorResponse(ctx, log.OpCreate, err).Write(w)
		return
	}
	rec = sanitizeRecord(rec)
	rec.Kind = kind
	rec.ID = 0

	saved, err := s.store.CreateRecord(ctx, rec)
	if err != nil {
		errorResponse(ctx, log.OpCreate, err).Write(w)
		return
	}
	s.invalidateRecords()
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogRecordSaved(ctx, log.OpCreate, string(kind), saved.ID, string(saved.Status))

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/"+string(kind)+"s/"+strconv.FormatInt(saved.ID, 10)).
		JSON(saved).
		Write(w)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, id, err := recordPath(r)
	if err != nil {
		errorResponse(ctx, log.OpUpdate, err).Write(w)
		return
	}

	var rec core.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		errorResponse(ctx, log.OpUpdate, err).Write(w)
		return
	}
	rec = sanitizeRecord(rec)
	rec.Kind = kind
	rec.ID = id

	saved, err := s.store.UpdateRecord(ctx, rec)
	if err != nil {
		errorResponse(ctx, log.OpUpdate, err).Write(w)
		return
	}
	s.invalidateRecords()
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogRecordSaved(ctx, log.OpUpdate, string(kind), saved.ID, string(saved.Status))

	NewResponse().JSON(saved).Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, id, err := recordPath(r)
	if err != nil {
		errorResponse(ctx, log.OpDelete, err).Write(w)
		return
	}

	if err := s.store.DeleteRecord(ctx, kind, id); err != nil {
		errorResponse(ctx, log.OpDelete, err).Write(w)
		return
	}
	s.invalidateRecords()
	log.FromContext(ctx).InfoContext(ctx, "Record deleted",
		log.FieldKind, kind,
		log.FieldRecordID, id)

	NewResponse().Status(http.StatusNoContent).Write(w)
}

func recordPath(r *http.Request) (core.Kind, int64, error) {
	kind, err := pathKind(r)
	if err != nil {
		return "", 0, err
	}
	id, err := pathID(r)
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}
