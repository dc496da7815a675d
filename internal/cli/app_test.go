package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/export"
	"budgetbuddy/internal/prefs"
	"budgetbuddy/internal/records/recordstest"
	"budgetbuddy/internal/records/remote"
	"budgetbuddy/internal/sheets"
	sheetsmem "budgetbuddy/internal/sheets/memory"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	pterm.DisableStyling()
	os.Exit(m.Run())
}

var today = time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)

type fakeSession struct {
	prefs  prefs.Store
	logins []remote.Credentials
	err    error
}

func (f *fakeSession) Login(_ context.Context, cr remote.Credentials) error {
	if f.err != nil {
		return f.err
	}
	f.logins = append(f.logins, cr)
	return f.prefs.Set(prefs.KeyToken, "tok-"+cr.Email)
}

func (f *fakeSession) Register(ctx context.Context, cr remote.Credentials) error {
	return f.Login(ctx, cr)
}

func (f *fakeSession) Logout() error { return f.prefs.Delete(prefs.KeyToken) }

type harness struct {
	store   *recordstest.Store
	prefs   *prefs.Memory
	session *fakeSession
	sheet   *sheetsmem.Store
	dir     string
}

func newHarness(t *testing.T, signedIn bool) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	p := prefs.NewMemory()
	if signedIn {
		_ = p.Set(prefs.KeyToken, "tok")
	}
	return &harness{
		store:   recordstest.New(),
		prefs:   p,
		session: &fakeSession{prefs: p},
		sheet:   sheetsmem.New("2025 Transactions"),
		dir:     t.TempDir(),
	}
}

// run executes one command line on a fresh App and returns its output.
func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	connect := func(ctx context.Context, s Settings) (*Env, error) {
		exp := export.New(h.dir)
		return &Env{
			Store:    h.store,
			Session:  h.session,
			Prefs:    h.prefs,
			Catalogs: config.Catalogs{Categories: core.Catalog{"Food", "Rent"}, Sources: core.Catalog{"Salary"}},
			Exporter: exp,
			Sheets: func(context.Context) (sheets.TransactionWriter, error) {
				return h.sheet, nil
			},
			Now: func() time.Time { return today },
		}, nil
	}
	app := NewApp("test", WithConnector(connect), WithOutput(&out))
	app.Root().SetArgs(args)
	err := app.Execute(context.Background())
	return out.String(), err
}

func day(s string) time.Time {
	t, _ := time.Parse(core.DayLayout, s)
	return t
}

func TestCommandsRequireSession(t *testing.T) {
	h := newHarness(t, false)
	for _, args := range [][]string{
		{"expenses", "list"},
		{"income", "list"},
		{"budgets", "show"},
		{"analytics"},
		{"dashboard"},
	} {
		out, err := h.run(args...)
		if !errors.Is(err, core.ErrAuth) {
			t.Errorf("%v: expected ErrAuth, got %v", args, err)
		}
		if !strings.Contains(out, "budgetbuddy login") {
			t.Errorf("%v: expected login hint, got %q", args, out)
		}
	}
	if h.store.Calls("ListExpenses") != 0 {
		t.Fatal("no store call may happen without a session")
	}
}

func TestLoginAndLogout(t *testing.T) {
	h := newHarness(t, false)
	out, err := h.run("login", "--email", "ann@example.com", "--password", "secret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as ann@example.com") {
		t.Errorf("unexpected output %q", out)
	}
	if v, _ := h.prefs.Get(prefs.KeyToken); v != "tok-ann@example.com" {
		t.Fatalf("token not stored, got %q", v)
	}

	if _, err := h.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := h.prefs.Get(prefs.KeyToken); ok {
		t.Fatal("logout must clear the token")
	}
}

func TestExpensesAdd(t *testing.T) {
	h := newHarness(t, true)
	out, err := h.run("expenses", "add", "--description", "lunch", "--amount", "12.50", "--category", "Food")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(h.store.Expenses) != 1 {
		t.Fatalf("expected one stored expense, got %d", len(h.store.Expenses))
	}
	e := h.store.Expenses[0]
	if core.Day(e.Date) != "2025-06-20" || !e.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("unexpected expense %+v", e)
	}
	if !strings.Contains(out, "Added expense id-1") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestExpensesAddValidationBlocksWrite(t *testing.T) {
	h := newHarness(t, true)
	out, err := h.run("expenses", "add", "--description", " ", "--amount", "-1", "--category", "Cars", "--date", "2025-07-01")
	if !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.store.Calls("CreateExpense") != 0 {
		t.Fatal("invalid draft must not reach the store")
	}
	for _, field := range []string{core.FieldDescription, core.FieldAmount, core.FieldCategory, core.FieldDate} {
		if !strings.Contains(out, field+":") {
			t.Errorf("expected %s in output %q", field, out)
		}
	}
}

func TestExpensesListSortAndPage(t *testing.T) {
	h := newHarness(t, true)
	for i, amount := range []int64{5, 70, 20, 60, 10, 40, 30} {
		h.store.Expenses = append(h.store.Expenses, core.Expense{
			ID: "e" + string(rune('a'+i)), Description: "item", Category: "Food",
			Amount: decimal.NewFromInt(amount), Date: day("2025-06-01").AddDate(0, 0, i),
		})
	}

	out, err := h.run("expenses", "list", "--sort", "amount", "--order", "desc", "--page", "2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Page 2 of 2 (7 records, sorted by amount desc)") {
		t.Errorf("unexpected footer in %q", out)
	}
	// The second page of a descending amount sort holds the two smallest.
	if !strings.Contains(out, "$10.00") || !strings.Contains(out, "$5.00") || strings.Contains(out, "$70.00") {
		t.Errorf("unexpected page contents %q", out)
	}
}

func TestExpensesListHalfRangeIsIgnored(t *testing.T) {
	h := newHarness(t, true)
	h.store.Expenses = []core.Expense{
		{ID: "a", Description: "old", Category: "Food", Amount: decimal.NewFromInt(1), Date: day("2025-01-01")},
		{ID: "b", Description: "new", Category: "Food", Amount: decimal.NewFromInt(2), Date: day("2025-06-01")},
	}
	out, err := h.run("expenses", "list", "--from", "2025-05-01")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "old") || !strings.Contains(out, "new") {
		t.Errorf("a single bound must not filter, got %q", out)
	}
}

func TestExpensesEditKeepsUnsetFields(t *testing.T) {
	h := newHarness(t, true)
	h.store.Expenses = []core.Expense{
		{ID: "a", Description: "lunch", Category: "Food", Amount: decimal.NewFromInt(12), Date: day("2025-06-02")},
	}
	if _, err := h.run("expenses", "edit", "a", "--amount", "15"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	e := h.store.Expenses[0]
	if e.Description != "lunch" || e.Category != "Food" || core.Day(e.Date) != "2025-06-02" || !e.Amount.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected expense after edit %+v", e)
	}

	if _, err := h.run("expenses", "edit", "missing", "--amount", "1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExpensesDelete(t *testing.T) {
	h := newHarness(t, true)
	h.store.Expenses = []core.Expense{
		{ID: "a", Description: "lunch", Category: "Food", Amount: decimal.NewFromInt(12), Date: day("2025-06-02")},
	}
	if _, err := h.run("expenses", "delete", "a", "--yes"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(h.store.Expenses) != 0 {
		t.Fatal("expense not deleted")
	}
}

func TestIncomeAddAndList(t *testing.T) {
	h := newHarness(t, true)
	if _, err := h.run("income", "add", "--source", "Salary", "--amount", "1000", "--date", "2025-06-01"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := h.run("income", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Salary") || !strings.Contains(out, "$1000.00") {
		t.Errorf("unexpected listing %q", out)
	}

	if _, err := h.run("income", "add", "--source", "Lottery", "--amount", "5"); !core.IsValidation(err) {
		t.Fatalf("unknown source must be rejected, got %v", err)
	}
}

func TestBudgetsCreateNeedsEveryCategory(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.run("budgets", "create", "--month", "2025-06", "--limit", "Food=300")
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Field("Rent") == nil {
		t.Fatalf("expected a missing Rent limit, got %v", err)
	}
	if h.store.Calls("BulkCreateBudgets") != 0 {
		t.Fatal("incomplete set must not be written")
	}

	out, err := h.run("budgets", "create", "--month", "2025-06", "--limit", "food=300", "--default", "0")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(h.store.Budgets) != 2 {
		t.Fatalf("expected the full set, got %+v", h.store.Budgets)
	}
	if !strings.Contains(out, "Created 2 budgets for 2025-06") || !strings.Contains(out, "$300.00") {
		t.Errorf("unexpected output %q", out)
	}
	if v, _ := h.prefs.Get(prefs.KeyBudgetMonth); v != "2025-06" {
		t.Errorf("month not persisted, got %q", v)
	}
}

func TestBudgetsCopy(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.run("budgets", "copy", "--month", "2025-06")
	if !core.IsConflict(err) || !strings.Contains(err.Error(), "no budgets for 2025-05") {
		t.Fatalf("expected conflict for an empty previous month, got %v", err)
	}

	h.store.Budgets = []core.Budget{
		{ID: "b1", Category: "Food", LimitAmount: decimal.NewFromInt(200), MonthYear: "2025-05"},
		{ID: "b2", Category: "Rent", LimitAmount: decimal.NewFromInt(900), MonthYear: "2025-05"},
	}
	// The month persisted by the previous run is reused.
	out, err := h.run("budgets", "copy")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if !strings.Contains(out, "Copied 2 budgets from 2025-05 to 2025-06") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, "Total: $1100.00") {
		t.Errorf("expected totals, got %q", out)
	}
}

func TestBudgetsEditByCategory(t *testing.T) {
	h := newHarness(t, true)
	h.store.Budgets = []core.Budget{
		{ID: "b1", Category: "Food", LimitAmount: decimal.NewFromInt(200), MonthYear: "2025-06"},
		{ID: "b2", Category: "Rent", LimitAmount: decimal.NewFromInt(900), MonthYear: "2025-06"},
	}
	if _, err := h.run("budgets", "edit", "food", "250", "--month", "2025-06"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	b := h.store.Budgets[0]
	if !b.LimitAmount.Equal(decimal.NewFromInt(250)) || b.Category != "Food" || b.MonthYear != "2025-06" {
		t.Fatalf("unexpected budget %+v", b)
	}

	if _, err := h.run("budgets", "edit", "--", "b2", "-5"); !core.IsValidation(err) {
		t.Fatalf("negative limit must be rejected, got %v", err)
	}
	if h.store.Calls("UpdateBudget") != 1 {
		t.Fatal("rejected edit must not be written")
	}
}

func TestBudgetsShowUnset(t *testing.T) {
	h := newHarness(t, true)
	h.store.Budgets = []core.Budget{{ID: "b1", Category: "Food", LimitAmount: decimal.NewFromInt(1), MonthYear: "2025-05"}}
	out, err := h.run("budgets", "show", "--month", "2025-06")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "No budgets set for 2025-06") || !strings.Contains(out, "budgets copy") {
		t.Errorf("expected copy hint, got %q", out)
	}
}

func TestAnalyticsMonthAndAllTime(t *testing.T) {
	h := newHarness(t, true)
	h.store.Months = []core.MonthYear{"2025-05", "2025-06"}
	h.store.Summaries["2025-05"] = core.Summary{
		TotalIncome:   decimal.NewFromInt(1000),
		TotalExpenses: decimal.NewFromInt(150),
		NetSavings:    decimal.NewFromInt(850),
		BudgetUsage: []core.BudgetUsage{
			core.NewBudgetUsage("Food", decimal.NewFromInt(100), decimal.NewFromInt(150)),
		},
	}

	out, err := h.run("analytics", "--month", "2025-05")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	for _, want := range []string{"Analytics: 2025-05", "2025-06, 2025-05", "Net savings: $850.00", "150.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
	if v, _ := h.prefs.Get(prefs.KeyAnalyticsMonth); v != "2025-05" {
		t.Errorf("selection not persisted, got %q", v)
	}

	out, err = h.run("analytics", "--all-time")
	if err != nil {
		t.Fatalf("all time: %v", err)
	}
	if !strings.Contains(out, "Analytics: All time") || !strings.Contains(out, "No budgets for this period") {
		t.Errorf("expected empty all-time view, got %q", out)
	}

	if _, err := h.run("analytics", "--all-time", "--month", "2025-05"); err == nil {
		t.Fatal("flags must be exclusive")
	}
}

func TestAnalyticsErrorState(t *testing.T) {
	h := newHarness(t, true)
	h.store.Fail("Summary", &core.NetworkError{Op: "summary", Err: errors.New("boom")})
	out, err := h.run("analytics")
	if !core.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if !strings.Contains(out, "Run the command again to retry") {
		t.Errorf("expected retry hint, got %q", out)
	}
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, true)
	h.store.Expenses = []core.Expense{
		{ID: "e1", Description: "groceries", Category: "Food", Amount: decimal.NewFromInt(40), Date: day("2025-06-18")},
	}
	h.store.Incomes = []core.Income{
		{ID: "i1", Source: "Salary", Amount: decimal.NewFromInt(2000), Date: day("2025-06-15")},
	}
	h.store.Summaries["2025-06"] = core.Summary{
		TotalIncome:   decimal.NewFromInt(2000),
		TotalExpenses: decimal.NewFromInt(40),
		NetSavings:    decimal.NewFromInt(1960),
	}

	out, err := h.run("dashboard")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	for _, want := range []string{"Dashboard: 2025-06", "groceries", "Salary", "+$2000.00", "-$40.00", "2025-06-15", "No budgets for 2025-06"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestDashboardFailsWhenAnyFetchFails(t *testing.T) {
	h := newHarness(t, true)
	h.store.Fail("ListIncome", &core.NetworkError{Op: "list income", Err: errors.New("down")})
	if _, err := h.run("dashboard"); !core.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestExportTransactionsToFileAndSheet(t *testing.T) {
	h := newHarness(t, true)
	h.store.Expenses = []core.Expense{
		{ID: "e1", Description: "groceries", Category: "Food", Amount: decimal.NewFromInt(40), Date: day("2025-06-18")},
	}
	h.store.Incomes = []core.Income{
		{ID: "i1", Source: "Salary", Amount: decimal.NewFromInt(2000), Date: day("2025-06-15")},
	}

	if _, err := h.run("export", "transactions", "--format", "csv"); err != nil {
		t.Fatalf("csv export: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(h.dir, "transactions_*.csv"))
	if len(files) != 1 {
		t.Fatalf("expected one csv file, got %v", files)
	}
	data, _ := os.ReadFile(files[0])
	if !strings.Contains(string(data), "groceries") || !strings.Contains(string(data), "Salary") {
		t.Errorf("unexpected csv %q", data)
	}

	out, err := h.run("export", "transactions", "--format", "sheets")
	if err != nil {
		t.Fatalf("sheets export: %v", err)
	}
	if h.sheet.Exports() != 1 || len(h.sheet.Rows()) != 2 || h.sheet.Rows()[0].Label != "groceries" {
		t.Fatalf("unexpected sheet rows %+v", h.sheet.Rows())
	}
	if !strings.Contains(out, "'2025 Transactions'!A1:E3") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := h.run("export", "transactions", "--format", "pdf"); err == nil {
		t.Fatal("transactions cannot be exported as pdf")
	}
}

func TestExportSummary(t *testing.T) {
	h := newHarness(t, true)
	h.store.Summaries["2025-06"] = core.Summary{TotalIncome: decimal.NewFromInt(10), TotalExpenses: decimal.NewFromInt(4), NetSavings: decimal.NewFromInt(6)}

	if _, err := h.run("export", "summary", "--format", "json", "--month", "2025-06"); err != nil {
		t.Fatalf("summary export: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(h.dir, "summary_*.json"))
	if len(files) != 1 {
		t.Fatalf("expected one json file, got %v", files)
	}
	data, _ := os.ReadFile(files[0])
	if !strings.Contains(string(data), `"netSavings": 6`) || !strings.Contains(string(data), "2025-06") {
		t.Errorf("unexpected json %s", data)
	}

	if _, err := h.run("export", "summary", "--month", "June"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}
