package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"budgetbuddy/internal/core"
)

// WriteSummaryPDF renders a one-page report: totals, then a usage table with
// a bar per category.
func WriteSummaryPDF(w io.Writer, period core.MonthYear, s core.Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  BudgetBuddy summary: "+periodLabel(period)), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	pdf.SetTextColor(50, 50, 50)
	totals := []struct {
		label string
		value string
	}{
		{"Total income", core.FormatAmount(s.TotalIncome)},
		{"Total expenses", core.FormatAmount(s.TotalExpenses)},
		{"Net savings", core.FormatAmount(s.NetSavings)},
	}
	for _, t := range totals {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(60, 8, t.label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, tr(t.value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Budget usage")
	pdf.Ln(8)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
	pdf.Ln(3)

	if len(s.BudgetUsage) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 8, "No budgets for this period.")
		pdf.Ln(8)
	}

	widths := []float64{45, 30, 30, 30, 55}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range []string{"Category", "Limit", "Spent", "Remaining", "Used"} {
		if len(s.BudgetUsage) == 0 {
			break
		}
		pdf.CellFormat(widths[i], 7, h, "B", 0, "L", false, 0, "")
	}
	if len(s.BudgetUsage) > 0 {
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "", 10)
	for _, u := range s.BudgetUsage {
		pdf.CellFormat(widths[0], 7, tr(u.Category), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, tr(core.FormatAmount(u.Limit)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(core.FormatAmount(u.Spent)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(core.FormatAmount(u.Remaining)), "", 0, "L", false, 0, "")

		x, y := pdf.GetX(), pdf.GetY()
		barWidth := 35 * core.BarWidth(u.PercentUsed) / 100
		pdf.SetFillColor(230, 230, 230)
		pdf.Rect(x, y+2, 35, 3, "F")
		if u.PercentUsed > 100 {
			pdf.SetFillColor(192, 0, 0)
		} else {
			pdf.SetFillColor(0, 128, 0)
		}
		if barWidth > 0 {
			pdf.Rect(x, y+2, barWidth, 3, "F")
		}
		pdf.SetX(x + 37)
		pdf.CellFormat(widths[4]-37, 7, fmt.Sprintf("%.1f%%", u.PercentUsed), "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
