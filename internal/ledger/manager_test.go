package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
	"budgetbuddy/internal/records/recordstest"
)

var (
	testToday = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	testCats  = core.Catalog{"Food", "Rent", "Transport"}
)

func day(s string) time.Time {
	t, err := time.Parse(core.DayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func expense(desc, amount, cat, date string) core.Expense {
	return core.Expense{Description: desc, Amount: decimal.RequireFromString(amount), Category: cat, Date: day(date)}
}

func newExpenses(t *testing.T, seed ...core.Expense) (*ExpenseManager, *recordstest.Store) {
	t.Helper()
	store := recordstest.New()
	for i, e := range seed {
		e.ID = fmt.Sprintf("seed-%d", i)
		store.Expenses = append(store.Expenses, e)
	}
	m := NewExpenseManager(store, testCats, WithClock(func() time.Time { return testToday }))
	if _, err := m.List(context.Background(), records.ExpenseFilter{}); err != nil {
		t.Fatalf("initial list: %v", err)
	}
	return m, store
}

func amounts(items []core.Expense) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.Amount.String()
	}
	return out
}

func descs(items []core.Expense) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.Description
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortByAmountToggles(t *testing.T) {
	m, _ := newExpenses(t,
		expense("a", "5", "Food", "2025-06-01"),
		expense("b", "10", "Food", "2025-06-02"),
	)

	if err := m.SortBy(SortAmount); err != nil {
		t.Fatal(err)
	}
	if got := amounts(m.Sorted()); !equal(got, []string{"5", "10"}) {
		t.Fatalf("asc = %v", got)
	}
	if err := m.SortBy(SortAmount); err != nil {
		t.Fatal(err)
	}
	if got := amounts(m.Sorted()); !equal(got, []string{"10", "5"}) {
		t.Fatalf("desc = %v", got)
	}
	if s := m.Sort(); s.Field != SortAmount || s.Dir != Desc {
		t.Fatalf("unexpected sort state %+v", s)
	}
}

func TestSortToggleTwiceRestoresOrder(t *testing.T) {
	m, _ := newExpenses(t,
		expense("c", "3", "Food", "2025-06-03"),
		expense("a", "1", "Rent", "2025-06-01"),
		expense("b", "2", "Food", "2025-06-02"),
	)
	_ = m.SortBy(SortDescription)
	first := descs(m.Sorted())
	_ = m.SortBy(SortDescription)
	_ = m.SortBy(SortDescription)
	if got := descs(m.Sorted()); !equal(got, first) {
		t.Fatalf("expected %v after two toggles, got %v", first, got)
	}
}

func TestDateSortIsStable(t *testing.T) {
	m, _ := newExpenses(t,
		expense("first", "9", "Food", "2025-06-05"),
		expense("older", "1", "Food", "2025-06-01"),
		expense("second", "2", "Food", "2025-06-05"),
	)
	_ = m.SortBy(SortAmount)
	_ = m.SortBy(SortDate)

	got := descs(m.Sorted())
	if !equal(got, []string{"older", "first", "second"}) {
		t.Fatalf("date asc = %v", got)
	}
	_ = m.SortBy(SortDate)
	got = descs(m.Sorted())
	if !equal(got, []string{"first", "second", "older"}) {
		t.Fatalf("date desc must keep same-day order, got %v", got)
	}
}

func TestSortUnknownField(t *testing.T) {
	m, _ := newExpenses(t)
	if err := m.SortBy("colour"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestPagination(t *testing.T) {
	var seed []core.Expense
	for i := 1; i <= 12; i++ {
		seed = append(seed, expense(fmt.Sprintf("e%02d", i), fmt.Sprint(i), "Food", "2025-06-01"))
	}
	m, _ := newExpenses(t, seed...)
	_ = m.SortBy(SortAmount)

	p := m.View()
	if p.TotalPages != 3 || p.Number != 1 || len(p.Items) != PageSize {
		t.Fatalf("unexpected first page %+v", p)
	}
	if p.CanFirst() || p.CanPrev() || !p.CanNext() || !p.CanLast() {
		t.Fatal("first page navigation flags wrong")
	}

	if n := m.Last(); n != 3 {
		t.Fatalf("Last() = %d", n)
	}
	p = m.View()
	if len(p.Items) != 2 || p.CanNext() || p.CanLast() || !p.CanPrev() {
		t.Fatalf("unexpected last page %+v", p)
	}
	if n := m.Next(); n != 3 {
		t.Fatalf("Next past the end must clamp, got %d", n)
	}
	if n := m.Prev(); n != 2 {
		t.Fatalf("Prev() = %d", n)
	}
	if n := m.GoTo(-4); n != 1 {
		t.Fatalf("GoTo(-4) = %d", n)
	}
}

func TestTotalPages(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 1, 5: 1, 6: 2, 10: 2, 11: 3} {
		if got := TotalPages(n); got != want {
			t.Errorf("TotalPages(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestEmptyListView(t *testing.T) {
	m, _ := newExpenses(t)
	p := m.View()
	if p.Number != 1 || p.TotalPages != 0 || len(p.Items) != 0 {
		t.Fatalf("unexpected empty view %+v", p)
	}
	if p.CanNext() || p.CanLast() || p.CanPrev() || p.CanFirst() {
		t.Fatal("navigation must be disabled on an empty list")
	}
}

func TestPageResetsOnFetchButNotOnSort(t *testing.T) {
	var seed []core.Expense
	for i := 1; i <= 11; i++ {
		seed = append(seed, expense("x", fmt.Sprint(i), "Food", "2025-06-01"))
	}
	m, _ := newExpenses(t, seed...)
	m.GoTo(2)
	_ = m.SortBy(SortAmount)
	if p := m.View(); p.Number != 2 {
		t.Fatalf("sort must keep page, got %d", p.Number)
	}
	if _, err := m.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p := m.View(); p.Number != 1 {
		t.Fatalf("fetch must reset page, got %d", p.Number)
	}
}

func TestInvalidDraftNeverReachesStore(t *testing.T) {
	m, store := newExpenses(t)
	bad := []core.ExpenseDraft{
		{Description: "x", Amount: "-5", Category: "Food", Date: "2025-06-01"},
		{Description: "x", Amount: "5", Category: "Food", Date: "2025-06-11"},
		{Description: "x", Amount: "5", Category: "Cars", Date: "2025-06-01"},
	}
	for _, d := range bad {
		if _, err := m.Create(context.Background(), d); !core.IsValidation(err) {
			t.Fatalf("%+v: expected validation error, got %v", d, err)
		}
		if _, err := m.Update(context.Background(), "seed-0", d); !core.IsValidation(err) {
			t.Fatalf("%+v: expected validation error on update, got %v", d, err)
		}
	}
	if n := store.Calls("CreateExpense") + store.Calls("UpdateExpense"); n != 0 {
		t.Fatalf("store called %d times for invalid drafts", n)
	}
}

func TestWritesRefetch(t *testing.T) {
	ctx := context.Background()
	m, store := newExpenses(t)

	created, err := m.Create(ctx, core.ExpenseDraft{Description: "lunch", Amount: "12.5", Category: "Food", Date: "2025-06-10"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := store.Calls("ListExpenses"); got != 2 {
		t.Fatalf("expected refetch after create, list calls = %d", got)
	}
	if v := m.View(); v.Total != 1 {
		t.Fatalf("expected 1 record after create, got %d", v.Total)
	}

	if _, err := m.Update(ctx, created.ID, core.ExpenseDraft{Description: "dinner", Amount: "20", Category: "Food", Date: "2025-06-09"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := m.Sorted()[0].Description; got != "dinner" {
		t.Fatalf("expected refetched update, got %q", got)
	}

	if err := m.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if v := m.View(); v.Total != 0 {
		t.Fatalf("expected empty list after delete, got %d", v.Total)
	}
	if got := store.Calls("ListExpenses"); got != 4 {
		t.Fatalf("list calls = %d, want 4", got)
	}
}

func TestFailedFetchKeepsPriorData(t *testing.T) {
	m, store := newExpenses(t, expense("kept", "1", "Food", "2025-06-01"))
	netErr := &core.NetworkError{Op: "list expenses", Err: errors.New("connection refused")}
	store.Fail("ListExpenses", netErr)

	if _, err := m.Refresh(context.Background()); !core.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if !core.IsNetwork(m.Err()) {
		t.Fatal("Err() must report the failed fetch")
	}
	if got := descs(m.Sorted()); !equal(got, []string{"kept"}) {
		t.Fatalf("prior data must be retained, got %v", got)
	}
}

func TestHalfOpenRangeIsIgnored(t *testing.T) {
	m, _ := newExpenses(t,
		expense("may", "1", "Food", "2025-05-20"),
		expense("june", "2", "Rent", "2025-06-02"),
	)
	ctx := context.Background()

	got, err := m.List(ctx, records.ExpenseFilter{Start: day("2025-06-01")})
	if err != nil || len(got) != 2 {
		t.Fatalf("start-only range must be ignored, got %d records err=%v", len(got), err)
	}
	got, _ = m.List(ctx, records.ExpenseFilter{Start: day("2025-06-01"), End: day("2025-06-30")})
	if len(got) != 1 || got[0].Description != "june" {
		t.Fatalf("full range must apply, got %v", descs(got))
	}
	got, _ = m.List(ctx, records.ExpenseFilter{Category: "Food"})
	if len(got) != 1 || got[0].Description != "may" {
		t.Fatalf("category filter must apply, got %v", descs(got))
	}
}

func TestIncomeManager(t *testing.T) {
	store := recordstest.New()
	m := NewIncomeManager(store, core.Catalog{"Salary", "Gift"}, WithClock(func() time.Time { return testToday }))
	ctx := context.Background()

	if _, err := m.Create(ctx, core.IncomeDraft{Source: "Salary", Amount: "0", Date: "2025-06-01"}); !core.IsValidation(err) {
		t.Fatalf("zero income must be rejected, got %v", err)
	}
	for _, d := range []core.IncomeDraft{
		{Source: "Salary", Amount: "3000", Date: "2025-06-01"},
		{Source: "Gift", Amount: "50", Date: "2025-06-05"},
	} {
		if _, err := m.Create(ctx, d); err != nil {
			t.Fatalf("create %+v: %v", d, err)
		}
	}
	p := m.View()
	if p.Total != 2 || p.Items[0].Source != "Gift" {
		t.Fatalf("expected newest first, got %+v", p.Items)
	}
	_ = m.SortBy(SortSource)
	if got := m.Sorted()[0].Source; got != "Gift" {
		t.Fatalf("source asc first = %q", got)
	}
}
