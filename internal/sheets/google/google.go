package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"finboard/internal/core"
	"finboard/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultRowCacheTTL = 10 * time.Minute

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	// RowCacheTTL bounds how long the id to row index is trusted.
	RowCacheTTL time.Duration
}

// Client mirrors records into one tab per kind. Row 1 of each tab holds the
// header and every following row holds one record, found by the id in column A.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu                 sync.Mutex
	tabs               map[core.Kind]*tabIndex
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// Ensure interface conformance
var _ sheets.Mirror = (*Client)(nil)

// New creates a mirror client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, cfg.RowCacheTTL), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID string, rowCacheTTL time.Duration) *Client {
	if rowCacheTTL <= 0 {
		rowCacheTTL = defaultRowCacheTTL
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		tabs:               make(map[core.Kind]*tabIndex),
		cacheValidDuration: rowCacheTTL,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over the file; GOOGLE_APPLICATION_CREDENTIALS is the last resort.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(cfg.CredentialsFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// Upsert writes the record's row in place, or on the first free row when the
// id is not mirrored yet.
func (c *Client) Upsert(ctx context.Context, r core.Record) (string, error) {
	tab := sheets.TabName(r.Kind)
	if tab == "" {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidKind, r.Kind)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx, err := c.index(ctx, r.Kind)
	if err != nil {
		return "", err
	}

	row, found := idx.ids[r.ID]
	if !found {
		row = idx.count + 1
	}

	rng := rowRange(tab, row)
	vr := &gsheet.ValueRange{Values: [][]any{toValues(sheets.Row(r))}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		c.invalidateLocked()
		return "", fmt.Errorf("failed to update %s: %w", rng, err)
	}

	idx.ids[r.ID] = row
	idx.count = max(idx.count, row)

	slog.DebugContext(ctx, "Mirrored record",
		"kind", r.Kind,
		"id", r.ID,
		"range", rng,
		"appended", !found)
	return rng, nil
}

// Delete clears the record's row. The row stays in place so other row
// numbers do not shift.
func (c *Client) Delete(ctx context.Context, kind core.Kind, id int64) error {
	tab := sheets.TabName(kind)
	if tab == "" {
		return fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx, err := c.index(ctx, kind)
	if err != nil {
		return err
	}
	row, found := idx.ids[id]
	if !found {
		slog.DebugContext(ctx, "Record not mirrored, nothing to clear", "kind", kind, "id", id)
		return nil
	}

	rng := rowRange(tab, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		c.invalidateLocked()
		return fmt.Errorf("failed to clear %s: %w", rng, err)
	}
	delete(idx.ids, id)
	return nil
}

// InvalidateRowCache forces the next call to re-read the id column.
func (c *Client) InvalidateRowCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Client) invalidateLocked() {
	c.cacheExpiresAt = time.Time{}
	clear(c.tabs)
}

// index returns the cached row index for kind, reading column A when the
// cache is stale. A tab without a header gets one. Callers hold c.mu.
func (c *Client) index(ctx context.Context, kind core.Kind) (*tabIndex, error) {
	if time.Now().After(c.cacheExpiresAt) {
		clear(c.tabs)
		c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	}
	if idx, ok := c.tabs[kind]; ok {
		return idx, nil
	}

	tab := sheets.TabName(kind)
	rng := fmt.Sprintf("%s!A:A", tab)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read ids from %s: %w", tab, err)
	}

	idx := buildIndex(resp.Values)
	if idx.count == 0 {
		hdr := &gsheet.ValueRange{Values: [][]any{toValues(sheets.Header)}}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(tab, 1), hdr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to write header to %s: %w", tab, err)
		}
		idx.count = 1
	}

	c.tabs[kind] = idx
	return idx, nil
}
