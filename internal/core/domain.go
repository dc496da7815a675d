package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout is the calendar-day form used for filters, sorting and trend buckets.
const DayLayout = "2006-01-02"

// MonthLayout is the "YYYY-MM" form of a MonthYear.
const MonthLayout = "2006-01"

const (
	KindExpense Kind = "Expense"
	KindIncome  Kind = "Income"
)

type (
	// Kind tags a transaction with the stream it came from.
	Kind string

	// MonthYear identifies a calendar month in "YYYY-MM" form.
	MonthYear string

	Expense struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Date        time.Time       `json:"date"`
	}

	Income struct {
		ID     string          `json:"id"`
		Source string          `json:"source"`
		Amount decimal.Decimal `json:"amount"`
		Date   time.Time       `json:"date"`
	}

	Budget struct {
		ID          string          `json:"id"`
		Category    string          `json:"category"`
		LimitAmount decimal.Decimal `json:"limitAmount"`
		MonthYear   MonthYear       `json:"monthYear"`
	}
)

var ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")

// ParseMonthYear validates s and returns it as a MonthYear.
func ParseMonthYear(s string) (MonthYear, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthYear(t.Format(MonthLayout)), nil
}

// MonthOf returns the month t falls in.
func MonthOf(t time.Time) MonthYear {
	return MonthYear(t.Format(MonthLayout))
}

// CurrentMonth returns the calendar month of now.
func CurrentMonth(now time.Time) MonthYear {
	return MonthOf(now)
}

// Start returns the first instant of the month in UTC. A malformed month yields the zero time.
func (m MonthYear) Start() time.Time {
	t, err := time.Parse(MonthLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Previous returns the calendar-previous month; January rolls back to December.
func (m MonthYear) Previous() MonthYear {
	start := m.Start()
	if start.IsZero() {
		return ""
	}
	return MonthOf(start.AddDate(0, -1, 0))
}

// Contains reports whether t falls inside the month.
func (m MonthYear) Contains(t time.Time) bool {
	return MonthOf(t) == m
}

func (m MonthYear) Valid() bool {
	_, err := ParseMonthYear(string(m))
	return err == nil
}

func (m MonthYear) String() string { return string(m) }

// Day formats t as a calendar day, ignoring time of day.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDate accepts a calendar day or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("date is empty")
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// EndOfDay returns the last instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// Validate checks the stored shape of an expense.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Validate checks the stored shape of an income.
func (i Income) Validate() error {
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	if !i.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if i.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Validate checks the stored shape of a budget row.
func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.LimitAmount.IsNegative() {
		return ErrNegativeLimit
	}
	if !b.MonthYear.Valid() {
		return ErrInvalidMonth
	}
	return nil
}
