package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/export"
	"budgetbuddy/internal/records"
)

// formatSheets sends transactions to Google Sheets instead of a file.
const formatSheets = "sheets"

func (app *App) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions or a summary",
	}
	cmd.AddCommand(app.exportTransactionsCmd(), app.exportSummaryCmd())
	return cmd
}

func (app *App) exportTransactionsCmd() *cobra.Command {
	var format, name, from, to string
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Export expenses and income as CSV, XLSX or to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			lf := listFlags{from: from, to: to}
			start, end, err := lf.dateRange(app.console)
			if err != nil {
				return err
			}

			var (
				expenses []core.Expense
				incomes  []core.Income
			)
			err = app.withStatus("Loading transactions", func() error {
				g, ctx := errgroup.WithContext(cmd.Context())
				g.Go(func() error {
					var err error
					expenses, err = app.env.Store.ListExpenses(ctx, records.ExpenseFilter{Start: start, End: end})
					return err
				})
				g.Go(func() error {
					var err error
					incomes, err = app.env.Store.ListIncome(ctx, records.IncomeFilter{Start: start, End: end})
					return err
				})
				return g.Wait()
			})
			if err != nil {
				return err
			}
			rows := export.Rows(expenses, incomes)

			if strings.EqualFold(strings.TrimSpace(format), formatSheets) {
				if app.env.Sheets == nil {
					return errors.New("google sheets export is not configured")
				}
				w, err := app.env.Sheets(cmd.Context())
				if err != nil {
					return err
				}
				ref, err := w.ExportTransactions(cmd.Context(), rows)
				if err != nil {
					return err
				}
				app.console.Success("Exported %d transactions to %s", len(rows), ref)
				return nil
			}

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			path, err := app.env.Exporter.Transactions(f, name, rows)
			if err != nil {
				return err
			}
			app.console.Success("Exported %d transactions to %s", len(rows), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, xlsx or sheets")
	cmd.Flags().StringVarP(&name, "name", "n", "transactions", "Base file name")
	cmd.Flags().StringVar(&from, "from", "", "Start date YYYY-MM-DD (needs --to)")
	cmd.Flags().StringVar(&to, "to", "", "End date YYYY-MM-DD (needs --from)")
	return cmd
}

func (app *App) exportSummaryCmd() *cobra.Command {
	var format, name, month string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Export a month's summary, or all time, as JSON or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			var period core.MonthYear
			if month != "" {
				if period, err = core.ParseMonthYear(month); err != nil {
					return err
				}
			}

			var s core.Summary
			if err := app.withStatus("Loading summary", func() error {
				s, err = app.env.Store.Summary(cmd.Context(), period)
				return err
			}); err != nil {
				return err
			}
			path, err := app.env.Exporter.Summary(f, name, period, s)
			if err != nil {
				return err
			}
			app.console.Success("Summary written to %s", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "json or pdf")
	cmd.Flags().StringVarP(&name, "name", "n", "summary", "Base file name")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month YYYY-MM (default: all time)")
	return cmd
}
