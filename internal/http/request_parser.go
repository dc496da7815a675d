// Package http provides HTTP server and handler implementations.
//
// This file decodes request bodies and query strings into domain values.
// Every failure becomes a *core.ValidationError keyed by the offending field.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("request body is not valid JSON")

// decodeJSON reads one JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		reason := errMalformedBody
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			reason = fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		} else if errors.Is(err, io.EOF) {
			reason = errors.New("request body is empty")
		}
		return core.FieldErrors{"request": reason}.Err()
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

type expenseBody struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

func (b expenseBody) expense() (core.Expense, error) {
	e := core.Expense{
		Description: sanitizeInput(b.Description),
		Amount:      b.Amount,
		Category:    sanitizeInput(b.Category),
	}
	d, err := parseBodyDate(b.Date)
	if err != nil {
		return e, err
	}
	e.Date = d
	return e, nil
}

type incomeBody struct {
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

func (b incomeBody) income() (core.Income, error) {
	in := core.Income{Source: sanitizeInput(b.Source), Amount: b.Amount}
	d, err := parseBodyDate(b.Date)
	if err != nil {
		return in, err
	}
	in.Date = d
	return in, nil
}

type budgetBody struct {
	Category    string          `json:"category"`
	LimitAmount decimal.Decimal `json:"limitAmount"`
	MonthYear   string          `json:"monthYear"`
}

func (b budgetBody) budget() core.Budget {
	return core.Budget{
		Category:    sanitizeInput(b.Category),
		LimitAmount: b.LimitAmount,
		MonthYear:   core.MonthYear(strings.TrimSpace(b.MonthYear)),
	}
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func parseBodyDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, core.FieldErrors{core.FieldDate: core.ErrMissingDate}.Err()
	}
	t, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, core.FieldErrors{core.FieldDate: err}.Err()
	}
	return t.UTC(), nil
}

// parseDayParam parses an optional YYYY-MM-DD (or RFC 3339) query value.
func parseDayParam(q url.Values, name string, fields core.FieldErrors) time.Time {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return time.Time{}
	}
	t, err := core.ParseDate(v)
	fields.Add(name, err)
	return t
}

// ParseExpenseFilter reads category, startDate and endDate.
func ParseExpenseFilter(q url.Values) (records.ExpenseFilter, error) {
	fields := core.FieldErrors{}
	f := records.ExpenseFilter{
		Category: sanitizeInput(q.Get("category")),
		Start:    parseDayParam(q, "startDate", fields),
		End:      parseDayParam(q, "endDate", fields),
	}
	return f, fields.Err()
}

// ParseIncomeFilter reads startDate and endDate.
func ParseIncomeFilter(q url.Values) (records.IncomeFilter, error) {
	fields := core.FieldErrors{}
	f := records.IncomeFilter{
		Start: parseDayParam(q, "startDate", fields),
		End:   parseDayParam(q, "endDate", fields),
	}
	return f, fields.Err()
}

// ParseMonthParam reads an optional month; empty means "all months".
func ParseMonthParam(q url.Values, name string) (core.MonthYear, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return "", nil
	}
	m, err := core.ParseMonthYear(v)
	if err != nil {
		return "", core.FieldErrors{name: err}.Err()
	}
	return m, nil
}

// ParseActivityFilter reads entityType, from and to. A bare day in "to"
// covers that whole day.
func ParseActivityFilter(q url.Values) (core.ActivityFilter, error) {
	fields := core.FieldErrors{}
	f := core.ActivityFilter{
		EntityType: strings.ToUpper(sanitizeInput(q.Get("entityType"))),
		From:       parseDayParam(q, "from", fields),
		To:         parseDayParam(q, "to", fields),
	}
	if v := strings.TrimSpace(q.Get("to")); len(v) == len(core.DayLayout) && !f.To.IsZero() {
		f.To = core.EndOfDay(f.To)
	}
	switch f.EntityType {
	case "", core.EntityExpense, core.EntityIncome, core.EntityBudget:
	default:
		fields.Add("entityType", fmt.Errorf("unknown entity type %q", f.EntityType))
	}
	return f, fields.Err()
}
