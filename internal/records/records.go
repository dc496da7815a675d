// Package records defines the Record Store the client core talks to.
//
// The store is an external collaborator: the remote package implements it over
// HTTP, and tests use the in-memory fake in recordstest.
package records

import (
	"context"
	"time"

	"budgetbuddy/internal/core"
)

// ExpenseFilter narrows an expense listing. Start and End are only applied
// together; a range with one bound missing is ignored.
type ExpenseFilter struct {
	Category string
	Start    time.Time
	End      time.Time
}

// IncomeFilter narrows an income listing by date range.
type IncomeFilter struct {
	Start time.Time
	End   time.Time
}

// HasRange reports whether both bounds are present.
func (f ExpenseFilter) HasRange() bool { return !f.Start.IsZero() && !f.End.IsZero() }

// HasRange reports whether both bounds are present.
func (f IncomeFilter) HasRange() bool { return !f.Start.IsZero() && !f.End.IsZero() }

type (
	ExpenseStore interface {
		ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, id string, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	IncomeStore interface {
		ListIncome(ctx context.Context, f IncomeFilter) ([]core.Income, error)
		CreateIncome(ctx context.Context, i core.Income) (core.Income, error)
		UpdateIncome(ctx context.Context, id string, i core.Income) (core.Income, error)
		DeleteIncome(ctx context.Context, id string) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		// BulkCreateBudgets writes the whole set or nothing.
		BulkCreateBudgets(ctx context.Context, budgets []core.Budget) ([]core.Budget, error)
		// CopyBudgets clones every budget of from into to. It fails with a
		// *core.ConflictError when from has no budgets or to is already set.
		CopyBudgets(ctx context.Context, from, to core.MonthYear) ([]core.Budget, error)
		UpdateBudget(ctx context.Context, id string, b core.Budget) (core.Budget, error)
	}

	AnalyticsStore interface {
		// Summary aggregates one month, or all time when month is empty.
		Summary(ctx context.Context, month core.MonthYear) (core.Summary, error)
		AvailableMonths(ctx context.Context) ([]core.MonthYear, error)
	}

	// Store is the full Record Store surface.
	Store interface {
		ExpenseStore
		IncomeStore
		BudgetStore
		AnalyticsStore
	}
)

// Matches applies the filter the way the server does: each date bound counts
// on its own, compared by calendar day.
func (f ExpenseFilter) Matches(e core.Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	return dayWithin(e.Date, f.Start, f.End)
}

// Matches applies each date bound on its own, compared by calendar day.
func (f IncomeFilter) Matches(i core.Income) bool {
	return dayWithin(i.Date, f.Start, f.End)
}

func dayWithin(t, start, end time.Time) bool {
	d := core.Day(t)
	if !start.IsZero() && d < core.Day(start) {
		return false
	}
	if !end.IsZero() && d > core.Day(end) {
		return false
	}
	return true
}
