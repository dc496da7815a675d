package ledger

import (
	"context"
	"strings"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

type IncomeManager = Manager[core.Income, core.IncomeDraft, records.IncomeFilter]

var IncomeComparators = Comparators[core.Income]{
	SortDate:   func(a, b core.Income) int { return strings.Compare(core.Day(a.Date), core.Day(b.Date)) },
	SortSource: func(a, b core.Income) int { return strings.Compare(a.Source, b.Source) },
	SortAmount: func(a, b core.Income) int { return a.Amount.Cmp(b.Amount) },
}

// NewIncomeManager builds the income list over store.
func NewIncomeManager(store records.IncomeStore, sources core.Catalog, opts ...Option) *IncomeManager {
	parse := func(d core.IncomeDraft, today time.Time) (core.Income, error) {
		return d.Parse(sources, today)
	}
	return newManager("income", incomeBackend{store}, parse, IncomeComparators, DefaultSort, opts)
}

type incomeBackend struct{ s records.IncomeStore }

func (b incomeBackend) List(ctx context.Context, f records.IncomeFilter) ([]core.Income, error) {
	if !f.HasRange() {
		f.Start, f.End = time.Time{}, time.Time{}
	}
	return b.s.ListIncome(ctx, f)
}

func (b incomeBackend) Create(ctx context.Context, i core.Income) (core.Income, error) {
	return b.s.CreateIncome(ctx, i)
}

func (b incomeBackend) Update(ctx context.Context, id string, i core.Income) (core.Income, error) {
	return b.s.UpdateIncome(ctx, id, i)
}

func (b incomeBackend) Delete(ctx context.Context, id string) error {
	return b.s.DeleteIncome(ctx, id)
}
