// Package memory is an in-process TransactionWriter that keeps the last
// export, for commands run without spreadsheet credentials and for tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"budgetbuddy/internal/export"
	"budgetbuddy/internal/sheets"
)

var _ sheets.TransactionWriter = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	sheet   string
	rows    []export.Row
	exports int
}

func New(sheet string) *Store {
	return &Store{sheet: sheet}
}

// ExportTransactions replaces the stored rows.
func (s *Store) ExportTransactions(ctx context.Context, rows []export.Row) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = slices.Clone(rows)
	s.exports++
	return fmt.Sprintf("'%s'!A1:E%d", s.sheet, len(rows)+1), nil
}

// Rows returns a copy of the last export.
func (s *Store) Rows() []export.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows)
}

// Exports counts completed exports.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
