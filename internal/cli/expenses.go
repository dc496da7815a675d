package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/records"
)

func (app *App) expenseManager() *ledger.ExpenseManager {
	return ledger.NewExpenseManager(app.env.Store, app.env.Catalogs.Categories, ledger.WithClock(app.env.Now))
}

func (app *App) expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"expense", "exp"},
		Short:   "List, add, edit and delete expenses",
	}
	cmd.AddCommand(app.expensesListCmd(), app.expensesAddCmd(), app.expensesEditCmd(), app.expensesDeleteCmd())
	return cmd
}

func (app *App) expensesListCmd() *cobra.Command {
	var (
		f        listFlags
		category string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			start, end, err := f.dateRange(app.console)
			if err != nil {
				return err
			}
			m := app.expenseManager()
			if err := applySort(m, f.sort, f.order); err != nil {
				return err
			}
			filter := records.ExpenseFilter{Category: category, Start: start, End: end}
			if err := app.withStatus("Loading expenses", func() error {
				_, err := m.List(cmd.Context(), filter)
				return err
			}); err != nil {
				return err
			}
			app.renderExpenses(goToPage(m, &f))
			return nil
		},
	}
	f.bind(cmd, []string{ledger.SortDate, ledger.SortDescription, ledger.SortCategory, ledger.SortAmount})
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category")
	return cmd
}

func (app *App) renderExpenses(p ledger.Page[core.Expense]) {
	if p.Total == 0 {
		app.console.Info("No expenses found")
		return
	}
	rows := make([][]string, len(p.Items))
	for i, e := range p.Items {
		rows[i] = []string{e.ID, core.Day(e.Date), e.Description, e.Category, core.FormatAmount(e.Amount)}
	}
	app.console.Table([]string{"ID", "Date", "Description", "Category", "Amount"}, rows)
	app.console.pageFooter(p.Number, p.TotalPages, p.Total, p.Sort)
}

type expenseFlags struct {
	description string
	amount      string
	category    string
	date        string
}

func (f *expenseFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "What the money was spent on")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount, e.g. 12.50")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category from the catalog")
	cmd.Flags().StringVar(&f.date, "date", "", "Date YYYY-MM-DD (default today)")
}

// apply overlays the flags the user set on d.
func (f *expenseFlags) apply(cmd *cobra.Command, d core.ExpenseDraft) core.ExpenseDraft {
	if cmd.Flags().Changed("description") {
		d.Description = f.description
	}
	if cmd.Flags().Changed("amount") {
		d.Amount = f.amount
	}
	if cmd.Flags().Changed("category") {
		d.Category = f.category
	}
	if cmd.Flags().Changed("date") {
		d.Date = f.date
	}
	return d
}

func (app *App) expensesAddCmd() *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			d := f.apply(cmd, core.ExpenseDraft{Date: core.Day(app.env.Now())})
			m := app.expenseManager()
			var created core.Expense
			if err := app.withStatus("Saving expense", func() error {
				var err error
				created, err = m.Create(cmd.Context(), d)
				return err
			}); err != nil {
				return err
			}
			app.console.Success("Added expense %s: %s %s (%s)", created.ID, created.Description, core.FormatAmount(created.Amount), created.Category)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func findExpense(ctx context.Context, m *ledger.ExpenseManager, id string) (core.Expense, error) {
	items, err := m.List(ctx, records.ExpenseFilter{})
	if err != nil {
		return core.Expense{}, err
	}
	i := slices.IndexFunc(items, func(e core.Expense) bool { return e.ID == id })
	if i < 0 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	return items[i], nil
}

func (app *App) expensesEditCmd() *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an expense; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			m := app.expenseManager()
			current, err := findExpense(cmd.Context(), m, args[0])
			if err != nil {
				return err
			}
			d := f.apply(cmd, core.ExpenseDraftOf(current))
			updated, err := m.Update(cmd.Context(), current.ID, d)
			if err != nil {
				return err
			}
			app.console.Success("Updated expense %s: %s %s (%s)", updated.ID, updated.Description, core.FormatAmount(updated.Amount), updated.Category)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (app *App) expensesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			if !yes && !confirm(fmt.Sprintf("Delete expense %s?", args[0])) {
				app.console.Info("Nothing deleted")
				return nil
			}
			if err := app.expenseManager().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.console.Success("Deleted expense %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func confirm(question string) bool {
	ok, err := pterm.DefaultInteractiveConfirm.Show(question)
	return err == nil && ok
}
