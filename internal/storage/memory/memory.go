// Package memory is a process-local storage backend. Data is lost on exit;
// it backs development servers and service tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

type userRecord[T any] struct {
	userID string
	value  T
}

type Store struct {
	mu       sync.Mutex
	users    []core.User
	expenses []userRecord[core.Expense]
	incomes  []userRecord[core.Income]
	budgets  []userRecord[core.Budget]
	activity []core.ActivityEvent
}

func New() *Store {
	return &Store{}
}

func (s *Store) Close() error { return nil }

func (s *Store) ListExpenses(_ context.Context, userID string, f records.ExpenseFilter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Expense{}
	for _, r := range s.expenses {
		if r.userID == userID && f.Matches(r.value) {
			out = append(out, r.value)
		}
	}
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, userID, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := index(s.expenses, userID, func(e core.Expense) bool { return e.ID == id })
	if i < 0 {
		return core.Expense{}, core.ErrNotFound
	}
	return s.expenses[i].value, nil
}

func (s *Store) CreateExpense(_ context.Context, userID string, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	s.expenses = append(s.expenses, userRecord[core.Expense]{userID, e})
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, userID, id string, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := index(s.expenses, userID, func(e core.Expense) bool { return e.ID == id })
	if i < 0 {
		return core.Expense{}, core.ErrNotFound
	}
	e.ID = id
	s.expenses[i].value = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := index(s.expenses, userID, func(e core.Expense) bool { return e.ID == id })
	if i < 0 {
		return core.ErrNotFound
	}
	s.expenses = slices.Delete(s.expenses, i, i+1)
	return nil
}

func (s *Store) ListIncome(_ context.Context, userID string, f records.IncomeFilter) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Income{}
	for _, r := range s.incomes {
		if r.userID == userID && f.Matches(r.value) {
			out = append(out, r.value)
		}
	}
	return out, nil
}

func (s *Store) GetIncome(_ context.Context, userID, id string) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := index(s.incomes, userID, func(in core.Income) bool { return in.ID == id })
	if i < 0 {
		return core.Income{}, core.ErrNotFound
	}
	return s.incomes[i].value, nil
}

func (s *Store) CreateIncome(_ context.Context, userID string, in core.Income) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = uuid.NewString()
	s.incomes = append(s.incomes, userRecord[core.Income]{userID, in})
	return in, nil
}

func (s *Store) UpdateIncome(_ context.Context, userID, id string, in core.Income) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := index(s.incomes, userID, func(in core.Income) bool { return in.ID == id })
	if i < 0 {
		return core.Income{}, core.ErrNotFound
	}
	in.ID = id
	s.incomes[i].value = in
	return in, nil
}

func (s *Store) DeleteIncome(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := index(s.incomes, userID, func(in core.Income) bool { return in.ID == id })
	if i < 0 {
		return core.ErrNotFound
	}
	s.incomes = slices.Delete(s.incomes, i, i+1)
	return nil
}

func (s *Store) ListBudgets(_ context.Context, userID string, month core.MonthYear) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgetsOf(userID, month), nil
}

// budgetsOf must be called with s.mu held.
func (s *Store) budgetsOf(userID string, month core.MonthYear) []core.Budget {
	out := []core.Budget{}
	for _, r := range s.budgets {
		if r.userID == userID && (month == "" || r.value.MonthYear == month) {
			out = append(out, r.value)
		}
	}
	return out
}

func (s *Store) GetBudget(_ context.Context, userID, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := index(s.budgets, userID, func(b core.Budget) bool { return b.ID == id })
	if i < 0 {
		return core.Budget{}, core.ErrNotFound
	}
	return s.budgets[i].value, nil
}

func (s *Store) CreateBudgets(_ context.Context, userID string, budgets []core.Budget) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range budgets {
		for _, have := range s.budgetsOf(userID, b.MonthYear) {
			if have.Category == b.Category {
				return nil, core.Conflictf("budget for %s in %s already exists", b.Category, b.MonthYear)
			}
		}
	}
	out := make([]core.Budget, len(budgets))
	for i, b := range budgets {
		b.ID = uuid.NewString()
		out[i] = b
		s.budgets = append(s.budgets, userRecord[core.Budget]{userID, b})
	}
	return out, nil
}

func (s *Store) CopyBudgets(_ context.Context, userID string, from, to core.MonthYear) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.budgetsOf(userID, to)) > 0 {
		return nil, core.Conflictf("budgets for %s already exist", to)
	}
	src := s.budgetsOf(userID, from)
	if len(src) == 0 {
		return nil, core.Conflictf("no budgets for %s", from)
	}
	out := make([]core.Budget, len(src))
	for i, b := range src {
		b.ID = uuid.NewString()
		b.MonthYear = to
		out[i] = b
		s.budgets = append(s.budgets, userRecord[core.Budget]{userID, b})
	}
	return out, nil
}

func (s *Store) UpdateBudgetLimit(_ context.Context, userID, id string, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := index(s.budgets, userID, func(b core.Budget) bool { return b.ID == id })
	if i < 0 {
		return core.Budget{}, core.ErrNotFound
	}
	s.budgets[i].value.LimitAmount = b.LimitAmount
	return s.budgets[i].value, nil
}

func (s *Store) BudgetMonths(_ context.Context, userID string) ([]core.MonthYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var months []core.MonthYear
	for _, r := range s.budgets {
		if r.userID == userID && !slices.Contains(months, r.value.MonthYear) {
			months = append(months, r.value.MonthYear)
		}
	}
	slices.SortFunc(months, func(a, b core.MonthYear) int { return cmp.Compare(b, a) })
	return months, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.users {
		if strings.EqualFold(have.Email, u.Email) {
			return core.User{}, core.ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) SaveActivity(_ context.Context, ev core.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	s.activity = append(s.activity, ev)
	return nil
}

// ListActivity returns the user's events, newest first.
func (s *Store) ListActivity(_ context.Context, userID string, f core.ActivityFilter) ([]core.ActivityEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.ActivityEvent{}
	for _, ev := range s.activity {
		if ev.UserID != userID {
			continue
		}
		if f.EntityType != "" && ev.EntityType != f.EntityType {
			continue
		}
		if !f.From.IsZero() && ev.Timestamp.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && ev.Timestamp.After(f.To) {
			continue
		}
		out = append(out, ev)
	}
	slices.SortStableFunc(out, func(a, b core.ActivityEvent) int { return b.Timestamp.Compare(a.Timestamp) })
	return out, nil
}

func index[T any](rs []userRecord[T], userID string, match func(T) bool) int {
	return slices.IndexFunc(rs, func(r userRecord[T]) bool { return r.userID == userID && match(r.value) })
}
