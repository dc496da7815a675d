// Package recordstest provides an in-memory records.Store for client tests.
package recordstest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

// Store is a records.Store kept in memory. Failures can be injected per
// operation name (the records.Store method name) with Fail.
type Store struct {
	mu        sync.Mutex
	nextID    int
	Expenses  []core.Expense
	Incomes   []core.Income
	Budgets   []core.Budget
	Summaries map[core.MonthYear]core.Summary
	Months    []core.MonthYear

	failures map[string]error
	calls    map[string]int

	// BeforeSummary runs before a summary is served; tests use it to delay
	// one month's response.
	BeforeSummary func(ctx context.Context, month core.MonthYear)
}

var _ records.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		Summaries: make(map[core.MonthYear]core.Summary),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

// Fail makes the next call to op return err.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Store) enter(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *Store) id() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func inRange(d string, startDay, endDay string) bool {
	return d >= startDay && d <= endDay
}

func (s *Store) ListExpenses(_ context.Context, f records.ExpenseFilter) ([]core.Expense, error) {
	if err := s.enter("ListExpenses"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.Expenses {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.HasRange() && !inRange(core.Day(e.Date), core.Day(f.Start), core.Day(f.End)) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := s.enter("CreateExpense"); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.Expenses = append(s.Expenses, e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, id string, e core.Expense) (core.Expense, error) {
	if err := s.enter("UpdateExpense"); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Expenses {
		if s.Expenses[i].ID == id {
			e.ID = id
			s.Expenses[i] = e
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	if err := s.enter("DeleteExpense"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.Expenses)
	s.Expenses = slices.DeleteFunc(s.Expenses, func(e core.Expense) bool { return e.ID == id })
	if len(s.Expenses) == n {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) ListIncome(_ context.Context, f records.IncomeFilter) ([]core.Income, error) {
	if err := s.enter("ListIncome"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Income
	for _, i := range s.Incomes {
		if f.HasRange() && !inRange(core.Day(i.Date), core.Day(f.Start), core.Day(f.End)) {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (s *Store) CreateIncome(_ context.Context, i core.Income) (core.Income, error) {
	if err := s.enter("CreateIncome"); err != nil {
		return core.Income{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i.ID = s.id()
	s.Incomes = append(s.Incomes, i)
	return i, nil
}

func (s *Store) UpdateIncome(_ context.Context, id string, in core.Income) (core.Income, error) {
	if err := s.enter("UpdateIncome"); err != nil {
		return core.Income{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Incomes {
		if s.Incomes[i].ID == id {
			in.ID = id
			s.Incomes[i] = in
			return in, nil
		}
	}
	return core.Income{}, core.ErrNotFound
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	if err := s.enter("DeleteIncome"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.Incomes)
	s.Incomes = slices.DeleteFunc(s.Incomes, func(i core.Income) bool { return i.ID == id })
	if len(s.Incomes) == n {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	if err := s.enter("ListBudgets"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.Budgets), nil
}

func (s *Store) monthSet(m core.MonthYear) bool {
	return slices.ContainsFunc(s.Budgets, func(b core.Budget) bool { return b.MonthYear == m })
}

func (s *Store) BulkCreateBudgets(_ context.Context, budgets []core.Budget) ([]core.Budget, error) {
	if err := s.enter("BulkCreateBudgets"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range budgets {
		if s.monthSet(b.MonthYear) {
			return nil, core.Conflictf("budgets for %s already exist", b.MonthYear)
		}
	}
	out := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		b.ID = s.id()
		out = append(out, b)
	}
	s.Budgets = append(s.Budgets, out...)
	return out, nil
}

func (s *Store) CopyBudgets(_ context.Context, from, to core.MonthYear) ([]core.Budget, error) {
	if err := s.enter("CopyBudgets"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.monthSet(to) {
		return nil, core.Conflictf("budgets for %s already exist", to)
	}
	var out []core.Budget
	for _, b := range s.Budgets {
		if b.MonthYear != from {
			continue
		}
		b.ID = s.id()
		b.MonthYear = to
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, core.Conflictf("no budgets for %s", from)
	}
	s.Budgets = append(s.Budgets, out...)
	return out, nil
}

func (s *Store) UpdateBudget(_ context.Context, id string, b core.Budget) (core.Budget, error) {
	if err := s.enter("UpdateBudget"); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Budgets {
		if s.Budgets[i].ID == id {
			b.ID = id
			s.Budgets[i] = b
			return b, nil
		}
	}
	return core.Budget{}, core.ErrNotFound
}

func (s *Store) Summary(ctx context.Context, month core.MonthYear) (core.Summary, error) {
	if s.BeforeSummary != nil {
		s.BeforeSummary(ctx, month)
	}
	if err := s.enter("Summary"); err != nil {
		return core.Summary{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Summaries[month], nil
}

func (s *Store) AvailableMonths(_ context.Context) ([]core.MonthYear, error) {
	if err := s.enter("AvailableMonths"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.Months), nil
}
