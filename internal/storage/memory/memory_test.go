package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

func TestExpenseFilterBoundsApplyAlone(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, d := range []string{"2025-05-31", "2025-06-01", "2025-06-15"} {
		date, _ := time.Parse(core.DayLayout, d)
		_, _ = s.CreateExpense(ctx, "u1", core.Expense{Description: d, Amount: decimal.NewFromInt(1), Category: "Food", Date: date})
	}
	_, _ = s.CreateExpense(ctx, "u2", core.Expense{Description: "other user", Amount: decimal.NewFromInt(1), Category: "Food", Date: time.Now()})

	start, _ := time.Parse(core.DayLayout, "2025-06-01")
	got, _ := s.ListExpenses(ctx, "u1", records.ExpenseFilter{Start: start})
	if len(got) != 2 {
		t.Fatalf("start-only filter returned %d", len(got))
	}
	got, _ = s.ListExpenses(ctx, "u1", records.ExpenseFilter{End: start})
	if len(got) != 2 {
		t.Fatalf("end-only filter returned %d", len(got))
	}
	got, _ = s.ListExpenses(ctx, "u1", records.ExpenseFilter{})
	if len(got) != 3 {
		t.Fatalf("users must not see each other's records, got %d", len(got))
	}
}

func TestCopyBudgets(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.CreateBudgets(ctx, "u1", []core.Budget{
		{Category: "Food", LimitAmount: decimal.NewFromInt(100), MonthYear: "2025-05"},
		{Category: "Rent", LimitAmount: decimal.NewFromInt(900), MonthYear: "2025-05"},
	})

	if _, err := s.CopyBudgets(ctx, "u1", "2025-04", "2025-06"); !core.IsConflict(err) {
		t.Fatalf("copy from empty month must conflict, got %v", err)
	}
	copied, err := s.CopyBudgets(ctx, "u1", "2025-05", "2025-06")
	if err != nil || len(copied) != 2 {
		t.Fatalf("copy: %v (%d rows)", err, len(copied))
	}
	if _, err := s.CopyBudgets(ctx, "u1", "2025-05", "2025-06"); !core.IsConflict(err) {
		t.Fatalf("second copy must conflict, got %v", err)
	}
	june, _ := s.ListBudgets(ctx, "u1", "2025-06")
	if len(june) != 2 {
		t.Fatalf("target month has %d rows, want 2", len(june))
	}
	months, _ := s.BudgetMonths(ctx, "u1")
	if len(months) != 2 || months[0] != "2025-06" {
		t.Fatalf("months = %v", months)
	}
	if _, err := s.CopyBudgets(ctx, "u2", "2025-05", "2025-06"); !core.IsConflict(err) {
		t.Fatal("another user's budgets must not be copied")
	}
}

func TestCreateBudgetsIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.CreateBudgets(ctx, "u1", []core.Budget{{Category: "Rent", LimitAmount: decimal.NewFromInt(1), MonthYear: "2025-06"}})
	_, err := s.CreateBudgets(ctx, "u1", []core.Budget{
		{Category: "Food", LimitAmount: decimal.NewFromInt(1), MonthYear: "2025-06"},
		{Category: "Rent", LimitAmount: decimal.NewFromInt(2), MonthYear: "2025-06"},
	})
	if !core.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	all, _ := s.ListBudgets(ctx, "u1", "")
	if len(all) != 1 {
		t.Fatalf("failed batch must not partially apply, have %d rows", len(all))
	}
}
