package remote

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

// Wire shapes use pointers so that a missing field can be told apart from a
// zero value.

type expenseJSON struct {
	ID          *string          `json:"id"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Date        *string          `json:"date"`
}

type incomeJSON struct {
	ID     *string          `json:"id"`
	Source *string          `json:"source"`
	Amount *decimal.Decimal `json:"amount"`
	Date   *string          `json:"date"`
}

type budgetJSON struct {
	ID          *string          `json:"id"`
	Category    *string          `json:"category"`
	LimitAmount *decimal.Decimal `json:"limitAmount"`
	MonthYear   *string          `json:"monthYear"`
}

type usageJSON struct {
	Category *string          `json:"category"`
	Limit    *decimal.Decimal `json:"limit"`
	Spent    *decimal.Decimal `json:"spent"`
}

type summaryJSON struct {
	TotalIncome   *decimal.Decimal `json:"totalIncome"`
	TotalExpenses *decimal.Decimal `json:"totalExpenses"`
	NetSavings    *decimal.Decimal `json:"netSavings"`
	BudgetUsage   []usageJSON      `json:"budgetUsage"`
}

type expenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

type incomeRequest struct {
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

type budgetRequest struct {
	Category    string          `json:"category"`
	LimitAmount decimal.Decimal `json:"limitAmount"`
	MonthYear   string          `json:"monthYear"`
}

func encodeExpense(e core.Expense) expenseRequest {
	return expenseRequest{Description: e.Description, Amount: e.Amount, Category: e.Category, Date: e.Date.Format(time.RFC3339)}
}

func encodeIncome(i core.Income) incomeRequest {
	return incomeRequest{Source: i.Source, Amount: i.Amount, Date: i.Date.Format(time.RFC3339)}
}

func encodeBudget(b core.Budget) budgetRequest {
	return budgetRequest{Category: b.Category, LimitAmount: b.LimitAmount, MonthYear: string(b.MonthYear)}
}

var (
	errMissingID   = errors.New("missing id")
	errMissingDate = errors.New("missing date")
)

func text(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func required(p *string, field string) (string, error) {
	if s := text(p); s != "" {
		return s, nil
	}
	return "", fmt.Errorf("missing %s", field)
}

func amount(p *decimal.Decimal, field string, allowZero bool) (decimal.Decimal, error) {
	switch {
	case p == nil:
		return decimal.Zero, fmt.Errorf("missing %s", field)
	case p.IsNegative():
		return decimal.Zero, fmt.Errorf("negative %s", field)
	case !allowZero && p.IsZero():
		return decimal.Zero, fmt.Errorf("zero %s", field)
	}
	return *p, nil
}

func date(p *string) (time.Time, error) {
	s := text(p)
	if s == "" {
		return time.Time{}, errMissingDate
	}
	return core.ParseDate(s)
}

func (w expenseJSON) decode() (core.Expense, error) {
	var e core.Expense
	var err error
	if e.ID, err = required(w.ID, "id"); err != nil {
		return e, errMissingID
	}
	if e.Description, err = required(w.Description, "description"); err != nil {
		return e, err
	}
	if e.Category, err = required(w.Category, "category"); err != nil {
		return e, err
	}
	if e.Amount, err = amount(w.Amount, "amount", false); err != nil {
		return e, err
	}
	e.Date, err = date(w.Date)
	return e, err
}

func (w incomeJSON) decode() (core.Income, error) {
	var i core.Income
	var err error
	if i.ID, err = required(w.ID, "id"); err != nil {
		return i, errMissingID
	}
	if i.Source, err = required(w.Source, "source"); err != nil {
		return i, err
	}
	if i.Amount, err = amount(w.Amount, "amount", false); err != nil {
		return i, err
	}
	i.Date, err = date(w.Date)
	return i, err
}

func (w budgetJSON) decode() (core.Budget, error) {
	var b core.Budget
	var err error
	if b.ID, err = required(w.ID, "id"); err != nil {
		return b, errMissingID
	}
	if b.Category, err = required(w.Category, "category"); err != nil {
		return b, err
	}
	if b.LimitAmount, err = amount(w.LimitAmount, "limitAmount", true); err != nil {
		return b, err
	}
	b.MonthYear, err = core.ParseMonthYear(text(w.MonthYear))
	return b, err
}

func (w summaryJSON) decode() (core.Summary, error) {
	var s core.Summary
	if w.TotalIncome == nil || w.TotalExpenses == nil {
		return s, errors.New("missing totals")
	}
	s.TotalIncome = *w.TotalIncome
	s.TotalExpenses = *w.TotalExpenses
	s.NetSavings = s.TotalIncome.Sub(s.TotalExpenses)
	if w.NetSavings != nil && !w.NetSavings.Equal(s.NetSavings) {
		return s, fmt.Errorf("netSavings %s does not match totals", w.NetSavings)
	}
	s.BudgetUsage = make([]core.BudgetUsage, 0, len(w.BudgetUsage))
	for i, u := range w.BudgetUsage {
		cat, err := required(u.Category, "category")
		if err != nil {
			return s, fmt.Errorf("budgetUsage[%d]: %w", i, err)
		}
		limit, err := amount(u.Limit, "limit", true)
		if err != nil {
			return s, fmt.Errorf("budgetUsage[%d]: %w", i, err)
		}
		if u.Spent == nil {
			return s, fmt.Errorf("budgetUsage[%d]: missing spent", i)
		}
		s.BudgetUsage = append(s.BudgetUsage, core.NewBudgetUsage(cat, limit, *u.Spent))
	}
	return s, nil
}

func decodeOne[W, T any](op string, w W, decode func(W) (T, error)) (T, error) {
	v, err := decode(w)
	if err != nil {
		var zero T
		return zero, &core.NetworkError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return v, nil
}

func decodeAll[W, T any](op string, ws []W, decode func(W) (T, error)) ([]T, error) {
	out := make([]T, 0, len(ws))
	for i, w := range ws {
		v, err := decode(w)
		if err != nil {
			return nil, &core.NetworkError{Op: op, Err: fmt.Errorf("%w: item %d: %v", ErrMalformed, i, err)}
		}
		out = append(out, v)
	}
	return out, nil
}
