package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/storage/memory"
)

var today = time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)

var _ services.Repository = (*memory.Store)(nil)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.ActivityEvent
	err    error
}

func (p *recordingPublisher) PublishActivity(_ context.Context, ev core.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func setup(t *testing.T) (*services.Services, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := services.New(services.Deps{
		Repo:         memory.New(),
		Categories:   core.Catalog{"Food", "Rent", "Transport"},
		Sources:      core.DefaultIncomeSources,
		Publisher:    pub,
		Passwords:    auth.Passwords{Cost: bcrypt.MinCost},
		Tokens:       auth.NewTokens("test-secret", time.Hour),
		SummaryCache: cache.NewLRUCache[core.Summary](16, time.Minute),
		Now:          func() time.Time { return today },
	})
	return svc, pub
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) time.Time {
	t, _ := time.Parse(core.DayLayout, s)
	return t
}

func TestExpenseLifecyclePublishesActivity(t *testing.T) {
	ctx := context.Background()
	svc, pub := setup(t)

	e, err := svc.Expenses.Create(ctx, "u1", core.Expense{Description: "bus", Amount: dec("2.5"), Category: "Transport", Date: date("2025-06-19")})
	if err != nil {
		t.Fatal(err)
	}
	e.Amount = dec("3")
	if _, err := svc.Expenses.Update(ctx, "u1", e.ID, e); err != nil {
		t.Fatal(err)
	}
	if err := svc.Expenses.Delete(ctx, "u1", e.ID); err != nil {
		t.Fatal(err)
	}

	want := []string{core.ActionCreated, core.ActionUpdated, core.ActionDeleted}
	if len(pub.events) != len(want) {
		t.Fatalf("published %d events", len(pub.events))
	}
	for i, ev := range pub.events {
		if ev.Action != want[i] || ev.EntityType != core.EntityExpense || ev.EntityID != e.ID || ev.UserID != "u1" {
			t.Fatalf("event %d = %+v", i, ev)
		}
	}
}

func TestExpenseValidationAndOwnership(t *testing.T) {
	ctx := context.Background()
	svc, pub := setup(t)

	_, err := svc.Expenses.Create(ctx, "u1", core.Expense{Description: "", Amount: dec("0"), Category: "Boats", Date: date("2025-07-01")})
	var verr *core.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 4 {
		t.Fatalf("expected four field errors, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatal("rejected writes must not publish")
	}

	e, _ := svc.Expenses.Create(ctx, "u1", core.Expense{Description: "x", Amount: dec("1"), Category: "Food", Date: date("2025-06-01")})
	if err := svc.Expenses.Delete(ctx, "intruder", e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("other users must get not found, got %v", err)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	svc, pub := setup(t)
	pub.err = errors.New("broker down")
	if _, err := svc.Incomes.Create(context.Background(), "u1", core.Income{Source: "Salary", Amount: dec("10"), Date: date("2025-06-01")}); err != nil {
		t.Fatalf("write must succeed when publishing fails: %v", err)
	}
}

func fullSet(month core.MonthYear, limits ...string) []core.Budget {
	cats := []string{"Food", "Rent", "Transport"}
	out := make([]core.Budget, len(limits))
	for i, l := range limits {
		out[i] = core.Budget{Category: cats[i], LimitAmount: dec(l), MonthYear: month}
	}
	return out
}

func TestBulkCreateRequiresCompleteSet(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	_, err := svc.Budgets.BulkCreate(ctx, "u1", fullSet("2025-06", "100", "900"))
	var verr *core.ValidationError
	if !errors.As(err, &verr) || !errors.Is(verr.Field("Transport"), services.ErrMissingCategory) {
		t.Fatalf("expected missing Transport, got %v", err)
	}

	_, err = svc.Budgets.BulkCreate(ctx, "u1", fullSet("2025-06", "100", "-1", "0"))
	if !errors.As(err, &verr) || !errors.Is(verr.Field("Rent"), core.ErrNegativeLimit) {
		t.Fatalf("expected negative Rent, got %v", err)
	}

	created, err := svc.Budgets.BulkCreate(ctx, "u1", fullSet("2025-06", "100", "900", "0"))
	if err != nil || len(created) != 3 {
		t.Fatalf("bulk create: %v (%d)", err, len(created))
	}
	if _, err := svc.Budgets.BulkCreate(ctx, "u1", fullSet("2025-06", "1", "1", "1")); !core.IsConflict(err) {
		t.Fatalf("second bulk create must conflict, got %v", err)
	}
}

func TestCopyAndUpdateBudget(t *testing.T) {
	ctx := context.Background()
	svc, pub := setup(t)
	_, _ = svc.Budgets.BulkCreate(ctx, "u1", fullSet("2025-05", "100", "900", "50"))

	if _, err := svc.Budgets.Copy(ctx, "u1", "2025-05", "2025-05"); !core.IsValidation(err) {
		t.Fatalf("copy into the same month must be rejected, got %v", err)
	}
	copied, err := svc.Budgets.Copy(ctx, "u1", "2025-05", "2025-06")
	if err != nil || len(copied) != 3 {
		t.Fatalf("copy: %v", err)
	}
	if last := pub.events[len(pub.events)-1]; last.Action != core.ActionCopied || last.EntityID != "2025-06" {
		t.Fatalf("unexpected copy event %+v", last)
	}

	var rent core.Budget
	for _, b := range copied {
		if b.Category == "Rent" {
			rent = b
		}
	}
	changed := rent
	changed.LimitAmount = dec("950")
	changed.Category = "Food"
	changed.MonthYear = "2030-01"
	updated, err := svc.Budgets.Update(ctx, "u1", rent.ID, changed)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Category != "Rent" || updated.MonthYear != "2025-06" || !updated.LimitAmount.Equal(dec("950")) {
		t.Fatalf("only the limit may change, got %+v", updated)
	}
	if _, err := svc.Budgets.Update(ctx, "u1", rent.ID, core.Budget{LimitAmount: dec("-1")}); !core.IsValidation(err) {
		t.Fatalf("negative limit must be rejected, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	_, _ = svc.Budgets.BulkCreate(ctx, "u1", fullSet("2025-06", "200", "0", "50"))
	_, _ = svc.Budgets.BulkCreate(ctx, "u1", fullSet("2025-05", "100", "100", "100"))

	for _, e := range []core.Expense{
		{Description: "a", Amount: dec("300"), Category: "Food", Date: date("2025-06-02")},
		{Description: "b", Amount: dec("40"), Category: "Rent", Date: date("2025-06-03")},
		{Description: "c", Amount: dec("10"), Category: "Food", Date: date("2025-05-03")},
	} {
		if _, err := svc.Expenses.Create(ctx, "u1", e); err != nil {
			t.Fatal(err)
		}
	}
	_, _ = svc.Incomes.Create(ctx, "u1", core.Income{Source: "Salary", Amount: dec("1000"), Date: date("2025-06-01")})
	_, _ = svc.Incomes.Create(ctx, "u1", core.Income{Source: "Gift", Amount: dec("50"), Date: date("2025-05-01")})

	june, err := svc.Analytics.Summary(ctx, "u1", "2025-06")
	if err != nil {
		t.Fatal(err)
	}
	if !june.TotalIncome.Equal(dec("1000")) || !june.TotalExpenses.Equal(dec("340")) || !june.NetSavings.Equal(dec("660")) {
		t.Fatalf("june totals %+v", june)
	}
	if len(june.BudgetUsage) != 3 || june.BudgetUsage[0].Category != "Food" || june.BudgetUsage[0].PercentUsed != 150 {
		t.Fatalf("june usage %+v", june.BudgetUsage)
	}
	if june.BudgetUsage[1].Category != "Rent" || june.BudgetUsage[1].PercentUsed != 0 {
		t.Fatalf("zero limit must pin percentUsed to 0, got %+v", june.BudgetUsage[1])
	}

	all, _ := svc.Analytics.Summary(ctx, "u1", "")
	if !all.TotalIncome.Equal(dec("1050")) || !all.TotalExpenses.Equal(dec("350")) {
		t.Fatalf("all-time totals %+v", all)
	}
	if !all.BudgetUsage[0].Limit.Equal(dec("300")) {
		t.Fatalf("all-time limits must add up across months, got %s", all.BudgetUsage[0].Limit)
	}

	months, _ := svc.Analytics.AvailableMonths(ctx, "u1")
	if len(months) != 2 || months[0] != "2025-06" {
		t.Fatalf("months = %v", months)
	}
}

func TestSummaryCacheInvalidatedByWrites(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	before, _ := svc.Analytics.Summary(ctx, "u1", "")
	if !before.TotalExpenses.IsZero() {
		t.Fatal("expected empty summary")
	}
	_, _ = svc.Expenses.Create(ctx, "u1", core.Expense{Description: "x", Amount: dec("5"), Category: "Food", Date: date("2025-06-01")})
	after, _ := svc.Analytics.Summary(ctx, "u1", "")
	if !after.TotalExpenses.Equal(dec("5")) {
		t.Fatalf("write must invalidate the cached summary, got %s", after.TotalExpenses)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	u, tok, err := svc.Users.Register(ctx, " Ada@Example.com ", "long enough", "Ada")
	if err != nil || tok == "" || u.Email != "ada@example.com" {
		t.Fatalf("register: %+v %q %v", u, tok, err)
	}
	if _, _, err := svc.Users.Register(ctx, "ada@example.com", "long enough", ""); !core.IsConflict(err) {
		t.Fatalf("duplicate email must conflict, got %v", err)
	}
	if _, _, err := svc.Users.Register(ctx, "not-an-email", "short", ""); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, _, err := svc.Users.Login(ctx, "ada@example.com", "wrong password"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := svc.Users.Login(ctx, "nobody@example.com", "long enough"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like a bad password, got %v", err)
	}
	got, _, err := svc.Users.Login(ctx, "ADA@example.com", "long enough")
	if err != nil || got.ID != u.ID {
		t.Fatalf("login: %v", err)
	}
}

func TestActivityRecordAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	if err := svc.Activity.Record(ctx, core.ActivityEvent{UserID: "u1"}); err == nil {
		t.Fatal("incomplete event must be rejected")
	}
	for _, ent := range []string{core.EntityExpense, core.EntityBudget} {
		if err := svc.Activity.Record(ctx, core.ActivityEvent{UserID: "u1", Action: core.ActionCreated, EntityType: ent, EntityID: "x"}); err != nil {
			t.Fatal(err)
		}
	}
	logs, _ := svc.Activity.List(ctx, "u1", core.ActivityFilter{EntityType: core.EntityBudget})
	if len(logs) != 1 || logs[0].ID == "" || logs[0].Timestamp.IsZero() {
		t.Fatalf("unexpected logs %+v", logs)
	}
}

func TestBuildSummaryOrdersByCatalog(t *testing.T) {
	s := services.BuildSummary(core.Catalog{"Rent", "Food"}, "", nil, nil, []core.Budget{
		{Category: "Zoo", LimitAmount: dec("1"), MonthYear: "2025-06"},
		{Category: "Food", LimitAmount: dec("1"), MonthYear: "2025-06"},
		{Category: "Rent", LimitAmount: dec("1"), MonthYear: "2025-06"},
		{Category: "Art", LimitAmount: dec("1"), MonthYear: "2025-06"},
	})
	var got []string
	for _, u := range s.BudgetUsage {
		got = append(got, u.Category)
	}
	want := []string{"Rent", "Food", "Art", "Zoo"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	_, _ = svc.Incomes.Create(ctx, "u1", core.Income{Source: "Salary", Amount: dec("1"), Date: date("2025-05-01")})
	_, _ = svc.Incomes.Create(ctx, "u1", core.Income{Source: "Salary", Amount: dec("1"), Date: date("2025-06-01")})
	got, err := svc.Incomes.List(ctx, "u1", records.IncomeFilter{Start: date("2025-06-01")})
	if err != nil || len(got) != 1 {
		t.Fatalf("start-only filter: %d %v", len(got), err)
	}
}
