package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/records"
)

// AnalyticsService aggregates summaries. Results are cached per user and
// month until the user's next write.
type AnalyticsService struct {
	expenses   ExpenseRepository
	incomes    IncomeRepository
	budgets    BudgetRepository
	categories core.Catalog
	cache      cache.Cache[core.Summary]

	mu          sync.Mutex
	generations map[string]uint64
}

func newAnalyticsService(repo Repository, categories core.Catalog, c cache.Cache[core.Summary]) *AnalyticsService {
	return &AnalyticsService{
		expenses:    repo,
		incomes:     repo,
		budgets:     repo,
		categories:  categories,
		cache:       c,
		generations: make(map[string]uint64),
	}
}

func (s *AnalyticsService) key(userID string, month core.MonthYear) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := string(month)
	if m == "" {
		m = "all"
	}
	return fmt.Sprintf("%s|%d|%s", userID, s.generations[userID], m)
}

// Invalidate makes every cached summary of userID unreachable.
func (s *AnalyticsService) Invalidate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
}

// Summary aggregates one month, or all time when month is empty.
func (s *AnalyticsService) Summary(ctx context.Context, userID string, month core.MonthYear) (core.Summary, error) {
	if month != "" && !month.Valid() {
		return core.Summary{}, fieldError("monthYear", core.ErrInvalidMonth)
	}
	key := s.key(userID, month)
	if s.cache != nil {
		if sum, ok := s.cache.Get(key); ok {
			return sum, nil
		}
	}

	var (
		expenses []core.Expense
		incomes  []core.Income
		budgets  []core.Budget
	)
	var ef records.ExpenseFilter
	var inf records.IncomeFilter
	if month != "" {
		start := month.Start()
		end := start.AddDate(0, 1, -1)
		ef = records.ExpenseFilter{Start: start, End: end}
		inf = records.IncomeFilter{Start: start, End: end}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListExpenses(gctx, userID, ef)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = s.incomes.ListIncome(gctx, userID, inf)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.ListBudgets(gctx, userID, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, fmt.Errorf("load summary data: %w", err)
	}

	sum := BuildSummary(s.categories, month, expenses, incomes, budgets)
	if s.cache != nil {
		s.cache.Set(key, sum)
	}
	slog.DebugContext(ctx, "Summary computed", log.FieldComponent, log.ComponentAnalytics,
		"month", month, "expenses", len(expenses), "incomes", len(incomes), "budgets", len(budgets))
	return sum, nil
}

// AvailableMonths lists the months with budgets, newest first.
func (s *AnalyticsService) AvailableMonths(ctx context.Context, userID string) ([]core.MonthYear, error) {
	months, err := s.budgets.BudgetMonths(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budget months: %w", err)
	}
	return months, nil
}

// BuildSummary aggregates records already narrowed to the period. Usage rows
// exist only for categories with a limit, in catalog order, then by name.
func BuildSummary(categories core.Catalog, month core.MonthYear, expenses []core.Expense, incomes []core.Income, budgets []core.Budget) core.Summary {
	in := func(t core.MonthYear) bool { return month == "" || t == month }

	sum := core.Summary{TotalIncome: decimal.Zero, TotalExpenses: decimal.Zero}
	spent := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if !in(core.MonthOf(e.Date)) {
			continue
		}
		sum.TotalExpenses = sum.TotalExpenses.Add(e.Amount)
		spent[e.Category] = spent[e.Category].Add(e.Amount)
	}
	for _, i := range incomes {
		if in(core.MonthOf(i.Date)) {
			sum.TotalIncome = sum.TotalIncome.Add(i.Amount)
		}
	}
	sum.NetSavings = sum.TotalIncome.Sub(sum.TotalExpenses)

	limits := make(map[string]decimal.Decimal)
	for _, b := range budgets {
		if in(b.MonthYear) {
			limits[b.Category] = limits[b.Category].Add(b.LimitAmount)
		}
	}
	names := make([]string, 0, len(limits))
	for c := range limits {
		names = append(names, c)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(order(categories, a), order(categories, b)), cmp.Compare(a, b))
	})

	sum.BudgetUsage = make([]core.BudgetUsage, 0, len(names))
	for _, c := range names {
		sum.BudgetUsage = append(sum.BudgetUsage, core.NewBudgetUsage(c, limits[c], spent[c]))
	}
	return sum
}

func order(c core.Catalog, name string) int {
	if i := c.Index(name); i >= 0 {
		return i
	}
	return len(c)
}
