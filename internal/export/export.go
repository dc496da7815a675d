// Package export writes transactions and summaries to files: CSV and XLSX
// for transactions, JSON and PDF for summaries.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

// Format names an output file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatXLSX, FormatJSON, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, xlsx, json or pdf)", s)
}

// Row is one transaction of either stream.
type Row struct {
	Kind     core.Kind
	Date     time.Time
	Label    string
	Category string
	Amount   decimal.Decimal
}

// Rows merges both streams newest first. Expenses come before income on equal dates.
func Rows(expenses []core.Expense, incomes []core.Income) []Row {
	out := make([]Row, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		out = append(out, Row{Kind: core.KindExpense, Date: e.Date, Label: e.Description, Category: e.Category, Amount: e.Amount})
	}
	for _, i := range incomes {
		out = append(out, Row{Kind: core.KindIncome, Date: i.Date, Label: i.Source, Amount: i.Amount})
	}
	slices.SortStableFunc(out, func(a, b Row) int { return b.Date.Compare(a.Date) })
	return out
}

// TransactionHeaders is the column order shared by every transaction export.
var TransactionHeaders = []string{"Type", "Date", "Description", "Category", "Amount"}

// Cells renders the row in TransactionHeaders order.
func (r Row) Cells() []string {
	return []string{string(r.Kind), core.Day(r.Date), r.Label, r.Category, r.Amount.StringFixed(2)}
}

// Exporter writes timestamped files into one directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// New returns an Exporter writing into dir; empty means the working directory.
func New(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// Transactions writes rows as CSV or XLSX and returns the absolute file path.
func (x *Exporter) Transactions(format Format, base string, rows []Row) (string, error) {
	switch format {
	case FormatCSV:
		return x.write(base, format, func(w io.Writer) error { return WriteTransactionsCSV(w, rows) })
	case FormatXLSX:
		return x.write(base, format, func(w io.Writer) error { return WriteTransactionsXLSX(w, rows) })
	}
	return "", fmt.Errorf("transactions cannot be exported as %s", format)
}

// Summary writes s as JSON or PDF and returns the absolute file path.
func (x *Exporter) Summary(format Format, base string, period core.MonthYear, s core.Summary) (string, error) {
	switch format {
	case FormatJSON:
		return x.write(base, format, func(w io.Writer) error { return WriteSummaryJSON(w, period, s) })
	case FormatPDF:
		return x.write(base, format, func(w io.Writer) error { return WriteSummaryPDF(w, period, s) })
	}
	return "", fmt.Errorf("summaries cannot be exported as %s", format)
}

func (x *Exporter) write(base string, format Format, fn func(io.Writer) error) (string, error) {
	name, err := x.filename(base, string(format))
	if err != nil {
		return "", err
	}
	file, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("create %s file: %w", format, err)
	}
	if err := fn(file); err != nil {
		file.Close()
		os.Remove(name)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close %s file: %w", format, err)
	}
	return filepath.Abs(name)
}

func (x *Exporter) filename(base, ext string) (string, error) {
	dir := x.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", dir, err)
	}
	if base == "" {
		base = "budgetbuddy"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, x.now().Format("20060102_150405"), ext)), nil
}

func periodLabel(period core.MonthYear) string {
	if period == "" {
		return "All time"
	}
	return period.String()
}
