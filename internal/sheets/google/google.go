// Package google pushes transaction exports into a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetbuddy/internal/export"
	"budgetbuddy/internal/log"
)

// DefaultSheetName is the base tab name; the export year is prefixed to it.
const DefaultSheetName = "Transactions"

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte
	CredentialsFile string
}

// ConfigFromEnv reads GOOGLE_SPREADSHEET_ID, GOOGLE_SHEET_NAME and the
// service account from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func ConfigFromEnv() Config {
	cfg := Config{
		SpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		SheetName:       strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME")),
		CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
	}
	if js := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); js != "" {
		cfg.CredentialsJSON = []byte(js)
	}
	if cfg.CredentialsJSON == nil && cfg.CredentialsFile == "" {
		cfg.CredentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return cfg
}

func (c Config) credentials() ([]byte, error) {
	switch {
	case len(c.CredentialsJSON) > 0:
		return c.CredentialsJSON, nil
	case c.CredentialsFile != "":
		b, err := os.ReadFile(c.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	now           func() time.Time
	logger        *log.Logger
}

// New creates a client for cfg. Extra options are appended after the
// credential options, so tests can point the service at a local endpoint.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := cfg.SheetName
	if base == "" {
		base = DefaultSheetName
	}

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentSheets)

	var all []goption.ClientOption
	if len(opts) == 0 {
		creds, err := cfg.credentials()
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "Creating Google Sheets service", "credentials_size", len(creds))
		all = append(all, goption.WithCredentialsJSON(creds), goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	all = append(all, opts...)

	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetBase: base, now: time.Now, logger: logger}, nil
}

// NewFromEnv is New with ConfigFromEnv.
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx, ConfigFromEnv())
}

// SheetName is the tab the next export writes to.
func (c *Client) SheetName() string {
	return yearPrefixedName(c.sheetBase, c.now().Year())
}

// ExportTransactions replaces the contents of the year tab with a header row
// followed by rows. The tab is created when missing. It returns the A1
// range that was written.
func (c *Client) ExportTransactions(ctx context.Context, rows []export.Row) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := c.SheetName()
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	clearRange := quoteSheet(sheet) + "!A:E"
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	vr := &gsheet.ValueRange{Values: transactionValues(rows)}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteSheet(sheet)+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("write %s: %w", sheet, err)
	}

	c.logger.InfoContext(ctx, "Transactions exported to Google Sheets",
		"sheet", sheet, "rows", len(rows), "range", resp.UpdatedRange)
	return resp.UpdatedRange, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %q: %w", title, err)
	}
	c.logger.InfoContext(ctx, "Created sheet", "sheet", title)
	return nil
}

func transactionValues(rows []export.Row) [][]interface{} {
	out := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(export.TransactionHeaders))
	for i, h := range export.TransactionHeaders {
		header[i] = h
	}
	out = append(out, header)
	for _, r := range rows {
		cells := r.Cells()
		line := make([]interface{}, len(cells))
		for i, v := range cells {
			line[i] = v
		}
		out = append(out, line)
	}
	return out
}

// quoteSheet wraps a tab name for use in A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
