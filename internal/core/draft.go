package core

import (
	"strings"
	"time"
)

// Form field names used as FieldErrors keys.
const (
	FieldDescription = "description"
	FieldSource      = "source"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldLimit       = "limitAmount"
)

// ExpenseDraft is an expense as typed into a form, before validation.
type ExpenseDraft struct {
	Description string
	Amount      string
	Category    string
	Date        string
}

// IncomeDraft is an income as typed into a form, before validation.
type IncomeDraft struct {
	Source string
	Amount string
	Date   string
}

// Parse validates every field independently and returns the expense it describes.
// Failures come back as a *ValidationError keyed by field.
func (d ExpenseDraft) Parse(categories Catalog, today time.Time) (Expense, error) {
	errs := FieldErrors{}
	var e Expense

	e.Description = strings.TrimSpace(d.Description)
	if e.Description == "" {
		errs.Add(FieldDescription, ErrEmptyDescription)
	}

	amount, err := ParseAmount(d.Amount)
	errs.Add(FieldAmount, err)
	e.Amount = amount

	e.Category = strings.TrimSpace(d.Category)
	switch {
	case e.Category == "":
		errs.Add(FieldCategory, ErrEmptyCategory)
	case !categories.Contains(e.Category):
		errs.Add(FieldCategory, ErrUnknownCategory)
	}

	date, err := parseDraftDate(d.Date, today)
	errs.Add(FieldDate, err)
	e.Date = date

	return e, errs.Err()
}

// Parse validates every field independently and returns the income it describes.
func (d IncomeDraft) Parse(sources Catalog, today time.Time) (Income, error) {
	errs := FieldErrors{}
	var i Income

	i.Source = strings.TrimSpace(d.Source)
	switch {
	case i.Source == "":
		errs.Add(FieldSource, ErrEmptySource)
	case !sources.Contains(i.Source):
		errs.Add(FieldSource, ErrUnknownSource)
	}

	amount, err := ParseAmount(d.Amount)
	errs.Add(FieldAmount, err)
	i.Amount = amount

	date, err := parseDraftDate(d.Date, today)
	errs.Add(FieldDate, err)
	i.Date = date

	return i, errs.Err()
}

// ExpenseDraftOf pre-fills an edit form from a stored expense.
func ExpenseDraftOf(e Expense) ExpenseDraft {
	return ExpenseDraft{
		Description: e.Description,
		Amount:      e.Amount.String(),
		Category:    e.Category,
		Date:        Day(e.Date),
	}
}

// IncomeDraftOf pre-fills an edit form from a stored income.
func IncomeDraftOf(i Income) IncomeDraft {
	return IncomeDraft{
		Source: i.Source,
		Amount: i.Amount.String(),
		Date:   Day(i.Date),
	}
}

func parseDraftDate(s string, today time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, ErrMissingDate
	}
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	// Day strings order chronologically, so time of day never matters here.
	if Day(t) > Day(today) {
		return time.Time{}, ErrFutureDate
	}
	return t, nil
}
