package ledger

import (
	"context"
	"strings"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

// Sortable expense fields.
const (
	SortDate        = "date"
	SortDescription = "description"
	SortCategory    = "category"
	SortSource      = "source"
	SortAmount      = "amount"
)

// DefaultSort shows the newest records first.
var DefaultSort = Sort{Field: SortDate, Dir: Desc}

type ExpenseManager = Manager[core.Expense, core.ExpenseDraft, records.ExpenseFilter]

// ExpenseComparators orders expenses. Dates compare by calendar day only.
var ExpenseComparators = Comparators[core.Expense]{
	SortDate:        func(a, b core.Expense) int { return strings.Compare(core.Day(a.Date), core.Day(b.Date)) },
	SortDescription: func(a, b core.Expense) int { return strings.Compare(a.Description, b.Description) },
	SortCategory:    func(a, b core.Expense) int { return strings.Compare(a.Category, b.Category) },
	SortAmount:      func(a, b core.Expense) int { return a.Amount.Cmp(b.Amount) },
}

// NewExpenseManager builds the expense list over store, validating categories
// against categories.
func NewExpenseManager(store records.ExpenseStore, categories core.Catalog, opts ...Option) *ExpenseManager {
	parse := func(d core.ExpenseDraft, today time.Time) (core.Expense, error) {
		return d.Parse(categories, today)
	}
	return newManager("expenses", expenseBackend{store}, parse, ExpenseComparators, DefaultSort, opts)
}

type expenseBackend struct{ s records.ExpenseStore }

// List drops a half-open date range before it reaches the store.
func (b expenseBackend) List(ctx context.Context, f records.ExpenseFilter) ([]core.Expense, error) {
	if !f.HasRange() {
		f.Start, f.End = time.Time{}, time.Time{}
	}
	return b.s.ListExpenses(ctx, f)
}

func (b expenseBackend) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	return b.s.CreateExpense(ctx, e)
}

func (b expenseBackend) Update(ctx context.Context, id string, e core.Expense) (core.Expense, error) {
	return b.s.UpdateExpense(ctx, id, e)
}

func (b expenseBackend) Delete(ctx context.Context, id string) error {
	return b.s.DeleteExpense(ctx, id)
}
