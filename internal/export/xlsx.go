package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"budgetbuddy/internal/core"
)

const transactionsSheet = "Transactions"

// WriteTransactionsXLSX writes one sheet with a bold header row. Amounts are
// numeric cells so the spreadsheet can sum them.
func WriteTransactionsXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	for i, h := range TransactionHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(transactionsSheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(transactionsSheet, "A1", "E1", headerStyle); err != nil {
		return err
	}

	for idx, r := range rows {
		row := idx + 2
		values := []any{string(r.Kind), core.Day(r.Date), r.Label, r.Category, r.Amount.InexactFloat64()}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(transactionsSheet, cell, v); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}
	if len(rows) > 0 {
		last := fmt.Sprintf("E%d", len(rows)+1)
		if err := f.SetCellStyle(transactionsSheet, "E2", last, amountStyle); err != nil {
			return err
		}
	}

	f.SetColWidth(transactionsSheet, "A", "A", 10)
	f.SetColWidth(transactionsSheet, "B", "B", 12)
	f.SetColWidth(transactionsSheet, "C", "C", 30)
	f.SetColWidth(transactionsSheet, "D", "D", 15)
	f.SetColWidth(transactionsSheet, "E", "E", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
