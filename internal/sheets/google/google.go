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

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"poupa/internal/services"
	ports "poupa/internal/sheets"
)

var _ ports.ReportExporter = (*Client)(nil)

const defaultSheetPrefix = "Relatório"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetPrefix   string

	// Sheet title to sheet id, refreshed from the spreadsheet metadata.
	mu                 sync.Mutex
	sheetIDs           map[string]int64
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

type Options struct {
	SpreadsheetID string
	// SheetPrefix names the per-month tabs: "<prefix> YYYY-MM".
	SheetPrefix     string
	CredentialsJSON string
	CredentialsFile string
	// ClientOptions override authentication and endpoint; used by tests.
	ClientOptions []goption.ClientOption
}

// New creates a Sheets client authenticated with a service account. Inline
// JSON wins over a file; with neither, GOOGLE_APPLICATION_CREDENTIALS is read.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	clientOpts := opts.ClientOptions
	if len(clientOpts) == 0 {
		creds, err := loadCredentials(opts)
		if err != nil {
			return nil, err
		}
		clientOpts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	prefix := strings.TrimSpace(opts.SheetPrefix)
	if prefix == "" {
		prefix = defaultSheetPrefix
	}

	slog.InfoContext(ctx, "Google Sheets client ready", "component", "sheets", "spreadsheet_id", spreadsheetID)

	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheetPrefix:        prefix,
		cacheValidDuration: 10 * time.Minute,
	}, nil
}

func loadCredentials(opts Options) ([]byte, error) {
	if j := strings.TrimSpace(opts.CredentialsJSON); j != "" {
		return []byte(j), nil
	}
	file := strings.TrimSpace(opts.CredentialsFile)
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// SheetTitle is the tab a month's report is written to.
func (c *Client) SheetTitle(r services.MonthReport) string {
	return fmt.Sprintf("%s %s", c.sheetPrefix, r.Summary.Period)
}

// ExportMonthReport makes sure the month's tab exists, clears it and writes
// the report from A1.
func (c *Client) ExportMonthReport(ctx context.Context, r services.MonthReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	title := c.SheetTitle(r)
	if err := c.ensureSheet(ctx, title); err != nil {
		return err
	}

	rng := quoteSheet(title)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", title, err)
	}

	rows := reportRows(r)
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", title, err)
	}

	slog.InfoContext(ctx, "Month report exported",
		"component", "sheets",
		"sheet", title,
		"rows", len(rows))
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	ids, err := c.sheetIndex(ctx)
	if err != nil {
		return err
	}
	if _, ok := ids[title]; ok {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		c.invalidateSheetCache()
		return fmt.Errorf("add sheet %s: %w", title, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sheetIDs == nil {
		c.sheetIDs = make(map[string]int64)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			c.sheetIDs[title] = reply.AddSheet.Properties.SheetId
		}
	}
	return nil
}

// sheetIndex returns the cached title index, reloading it once expired.
func (c *Client) sheetIndex(ctx context.Context) (map[string]int64, error) {
	c.mu.Lock()
	if c.sheetIDs != nil && time.Now().Before(c.cacheExpiresAt) {
		ids := c.sheetIDs
		c.mu.Unlock()
		return ids, nil
	}
	c.mu.Unlock()

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet metadata: %w", err)
	}

	ids := make(map[string]int64, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}

	c.mu.Lock()
	c.sheetIDs = ids
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()
	return ids, nil
}

func (c *Client) invalidateSheetCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheExpiresAt = time.Time{}
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
