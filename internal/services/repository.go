// Package services holds the server-side Record Store: per-user CRUD for
// expenses, income and budgets, budget bulk create and copy, analytics, and
// the activity log. Storage backends implement Repository.
package services

import (
	"context"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

// Expense and income filters on the server apply each date bound on its own:
// a start alone means "on or after", an end alone "on or before".

type ExpenseRepository interface {
	ListExpenses(ctx context.Context, userID string, f records.ExpenseFilter) ([]core.Expense, error)
	GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
	CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, userID, id string, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, userID, id string) error
}

type IncomeRepository interface {
	ListIncome(ctx context.Context, userID string, f records.IncomeFilter) ([]core.Income, error)
	GetIncome(ctx context.Context, userID, id string) (core.Income, error)
	CreateIncome(ctx context.Context, userID string, i core.Income) (core.Income, error)
	UpdateIncome(ctx context.Context, userID, id string, i core.Income) (core.Income, error)
	DeleteIncome(ctx context.Context, userID, id string) error
}

type BudgetRepository interface {
	// ListBudgets returns every budget of the user, or one month's when month is set.
	ListBudgets(ctx context.Context, userID string, month core.MonthYear) ([]core.Budget, error)
	GetBudget(ctx context.Context, userID, id string) (core.Budget, error)
	// CreateBudgets inserts the whole set atomically. A row clashing with an
	// existing (category, month) fails the batch with a *core.ConflictError.
	CreateBudgets(ctx context.Context, userID string, budgets []core.Budget) ([]core.Budget, error)
	// CopyBudgets clones from into to atomically, failing with a
	// *core.ConflictError when from is empty or to is already set.
	CopyBudgets(ctx context.Context, userID string, from, to core.MonthYear) ([]core.Budget, error)
	UpdateBudgetLimit(ctx context.Context, userID, id string, b core.Budget) (core.Budget, error)
	// BudgetMonths returns the distinct months with budgets, newest first.
	BudgetMonths(ctx context.Context, userID string) ([]core.MonthYear, error)
}

type UserRepository interface {
	// CreateUser fails with core.ErrEmailTaken when the email is in use.
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	UserByEmail(ctx context.Context, email string) (core.User, error)
}

type ActivityRepository interface {
	SaveActivity(ctx context.Context, ev core.ActivityEvent) error
	ListActivity(ctx context.Context, userID string, f core.ActivityFilter) ([]core.ActivityEvent, error)
}

// Repository is everything a storage backend provides.
type Repository interface {
	ExpenseRepository
	IncomeRepository
	BudgetRepository
	UserRepository
	ActivityRepository
	Close() error
}
