package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/export"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Transactions", "2025 Transactions"},
		{"  Transactions ", "2025 Transactions"},
		{"2024 Transactions", "2024 Transactions"},
		{"1234 Transactions", "2025 1234 Transactions"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, 2025); got != tt.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("2025 Bob's"); got != "'2025 Bob''s'" {
		t.Fatalf("unexpected quoting %q", got)
	}
}

func TestTransactionValues(t *testing.T) {
	rows := []export.Row{{
		Kind:     core.KindExpense,
		Date:     time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
		Label:    "lunch",
		Category: "Food",
		Amount:   decimal.RequireFromString("12.5"),
	}}
	got := transactionValues(rows)
	if len(got) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(got))
	}
	if got[0][0] != "Type" || got[0][4] != "Amount" {
		t.Errorf("unexpected header %v", got[0])
	}
	if got[1][1] != "2025-06-03" || got[1][4] != "12.50" {
		t.Errorf("unexpected row %v", got[1])
	}
}

func TestConfigFromEnvFallsBackToADCPath(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", " sheet-1 ")
	t.Setenv("GOOGLE_SHEET_NAME", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/adc.json")

	cfg := ConfigFromEnv()
	if cfg.SpreadsheetID != "sheet-1" || cfg.CredentialsFile != "/tmp/adc.json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("expected missing id error, got %v", err)
	}
	_, err := New(context.Background(), Config{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "service account") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

// fakeSheets answers the handful of Sheets v4 calls the exporter makes.
type fakeSheets struct {
	mu      sync.Mutex
	tabs    []string
	calls   []string
	written [][]interface{}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/v4/spreadsheets/"):
		type props struct {
			Title string `json:"title"`
		}
		type sheet struct {
			Properties props `json:"properties"`
		}
		var out struct {
			Sheets []sheet `json:"sheets"`
		}
		for _, t := range f.tabs {
			out.Sheets = append(out.Sheets, sheet{Properties: props{Title: t}})
		}
		json.NewEncoder(w).Encode(out)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.tabs = append(f.tabs, rq.AddSheet.Properties.Title)
		}
		io.WriteString(w, `{}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.written = nil
		io.WriteString(w, `{}`)
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		if r.URL.Query().Get("valueInputOption") != "USER_ENTERED" {
			http.Error(w, `{"error":{"code":400,"message":"bad input option"}}`, http.StatusBadRequest)
			return
		}
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr)
		f.written = vr.Values
		json.NewEncoder(w).Encode(map[string]any{"updatedRange": "'2025 Transactions'!A1:E3"})
	default:
		http.NotFound(w, r)
	}
}

func newFakeClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-1"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.now = func() time.Time { return time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestExportTransactionsCreatesTabAndWrites(t *testing.T) {
	f := &fakeSheets{tabs: []string{"Sheet1"}}
	c := newFakeClient(t, f)

	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	rows := []export.Row{
		{Kind: core.KindIncome, Date: day, Label: "Salary", Amount: decimal.NewFromInt(1000)},
		{Kind: core.KindExpense, Date: day, Label: "lunch", Category: "Food", Amount: decimal.RequireFromString("12.5")},
	}

	ref, err := c.ExportTransactions(context.Background(), rows)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if ref != "'2025 Transactions'!A1:E3" {
		t.Errorf("unexpected range %q", ref)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tabs) != 2 || f.tabs[1] != "2025 Transactions" {
		t.Fatalf("expected the year tab to be created, tabs=%v", f.tabs)
	}
	if len(f.written) != 3 || f.written[2][2] != "lunch" {
		t.Fatalf("unexpected written values %v", f.written)
	}
}

func TestExportTransactionsReusesExistingTab(t *testing.T) {
	f := &fakeSheets{tabs: []string{"2025 Transactions"}}
	c := newFakeClient(t, f)

	if _, err := c.ExportTransactions(context.Background(), nil); err != nil {
		t.Fatalf("export: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.calls {
		if strings.HasSuffix(call, ":batchUpdate") {
			t.Fatalf("existing tab must not be re-added, calls=%v", f.calls)
		}
	}
	if len(f.written) != 1 {
		t.Fatalf("empty export still writes the header, got %v", f.written)
	}
}

func TestExportTransactionsNilService(t *testing.T) {
	c := &Client{}
	if _, err := c.ExportTransactions(context.Background(), nil); err == nil {
		t.Fatal("expected error without a service")
	}
}
