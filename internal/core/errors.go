package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidLimit     = errors.New("limit must be a number")
	ErrNegativeLimit    = errors.New("limit must be zero or positive")
	ErrEmptyDescription = errors.New("description is required")
	ErrEmptySource      = errors.New("source is required")
	ErrEmptyCategory    = errors.New("category is required")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownSource    = errors.New("unknown income source")
	ErrMissingDate      = errors.New("date is required")
	ErrFutureDate       = errors.New("date cannot be in the future")

	// ErrAuth means the credential was rejected; the session is over.
	ErrAuth = errors.New("authorization rejected")
	// ErrNotFound means the addressed record does not exist for this user.
	ErrNotFound = errors.New("record not found")
)

// FieldErrors maps a form field name to the reason it was rejected.
type FieldErrors map[string]error

// Add records err for field when err is non-nil.
func (f FieldErrors) Add(field string, err error) {
	if err != nil {
		f[field] = err
	}
}

// Err returns a *ValidationError when any field failed, nil otherwise.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidationError blocks a submission before any Record Store call.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the error for one field, if any.
func (e *ValidationError) Field(name string) error {
	return e.Fields[name]
}

// NetworkError wraps a failed or timed-out Record Store request.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConflictError is a non-fatal rejection of a request that contradicts stored state,
// such as copying budgets from an empty month.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflictf builds a *ConflictError.
func Conflictf(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries field-scoped validation failures.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is a *ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsNetwork reports whether err is a *NetworkError.
func IsNetwork(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}
