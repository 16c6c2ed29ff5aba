// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for decoding and validating request data:
// path parameters, JSON bodies and input sanitization.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"finboard/internal/core"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// pathKind resolves the {kind} path segment.
func pathKind(r *http.Request) (core.Kind, error) {
	return core.ParseKind(r.PathValue("kind"))
}

// pathID resolves the {id} path segment as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}

// pathCustomer resolves the {name} path segment.
func pathCustomer(r *http.Request) (string, error) {
	name := sanitizeInput(r.PathValue("name"))
	if name == "" {
		return "", core.ErrEmptyCounterparty
	}
	return name, nil
}

// decodeJSON reads a single JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", errBadRequest)
		default:
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: body must hold a single JSON value", errBadRequest)
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// sanitizeRecord cleans the free-text fields of a decoded record.
func sanitizeRecord(r core.Record) core.Record {
	r.Status = core.Status(sanitizeInput(string(r.Status)))
	r.InvoiceType = sanitizeInput(r.InvoiceType)
	r.Category = sanitizeInput(r.Category)
	r.CustomerName = sanitizeInput(r.CustomerName)
	r.VendorName = sanitizeInput(r.VendorName)
	r.SupplierName = sanitizeInput(r.SupplierName)
	r.Title = sanitizeInput(r.Title)
	r.Description = sanitizeInput(r.Description)
	r.ReferenceNumber = core.Text(sanitizeInput(string(r.ReferenceNumber)))
	r.InvoiceNumber = core.Text(sanitizeInput(string(r.InvoiceNumber)))
	return r
}

// sanitizeEntry cleans the free-text fields of a decoded ledger entry.
func sanitizeEntry(e core.LedgerEntry) core.LedgerEntry {
	e.Customer = sanitizeInput(e.Customer)
	e.Description.Text = sanitizeInput(e.Description.Text)
	for i, it := range e.Description.Items {
		e.Description.Items[i] = sanitizeInput(it)
	}
	e.Status = core.Status(sanitizeInput(string(e.Status)))
	e.Reference = sanitizeInput(e.Reference)
	return e
}

// filename turns a customer name into a safe download name.
func filename(base, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "export"
	}
	return name + "." + ext
}
