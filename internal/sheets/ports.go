package sheets

import (
	"context"

	"budgetbuddy/internal/export"
)

// TransactionWriter replaces a spreadsheet tab with the given transactions
// and returns a reference to the written range.
type TransactionWriter interface {
	ExportTransactions(ctx context.Context, rows []export.Row) (rangeRef string, err error)
}
