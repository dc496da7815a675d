package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"budgetbuddy/internal/core"
)

// WriteTransactionsCSV writes a header row and one line per transaction.
func WriteTransactionsCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TransactionHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Cells()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type summaryDocument struct {
	Period string `json:"period"`
	core.Summary
}

// WriteSummaryJSON writes s with its period; an empty period is all time.
func WriteSummaryJSON(w io.Writer, period core.MonthYear, s core.Summary) error {
	if s.BudgetUsage == nil {
		s.BudgetUsage = []core.BudgetUsage{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaryDocument{Period: periodLabel(period), Summary: s}); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}
