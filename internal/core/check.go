package core

import (
	"strings"
	"time"
)

// Check validates an expense received by the server with the same field rules
// the client applies to drafts.
func (e Expense) Check(categories Catalog, today time.Time) error {
	errs := FieldErrors{}
	if strings.TrimSpace(e.Description) == "" {
		errs.Add(FieldDescription, ErrEmptyDescription)
	}
	if !e.Amount.IsPositive() {
		errs.Add(FieldAmount, ErrInvalidAmount)
	}
	switch {
	case strings.TrimSpace(e.Category) == "":
		errs.Add(FieldCategory, ErrEmptyCategory)
	case !categories.Contains(e.Category):
		errs.Add(FieldCategory, ErrUnknownCategory)
	}
	errs.Add(FieldDate, checkDate(e.Date, today))
	return errs.Err()
}

// Check validates an income received by the server.
func (i Income) Check(sources Catalog, today time.Time) error {
	errs := FieldErrors{}
	switch {
	case strings.TrimSpace(i.Source) == "":
		errs.Add(FieldSource, ErrEmptySource)
	case !sources.Contains(i.Source):
		errs.Add(FieldSource, ErrUnknownSource)
	}
	if !i.Amount.IsPositive() {
		errs.Add(FieldAmount, ErrInvalidAmount)
	}
	errs.Add(FieldDate, checkDate(i.Date, today))
	return errs.Err()
}

func checkDate(d, today time.Time) error {
	if d.IsZero() {
		return ErrMissingDate
	}
	if Day(d) > Day(today) {
		return ErrFutureDate
	}
	return nil
}
