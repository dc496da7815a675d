package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/records"
)

func (app *App) incomeManager() *ledger.IncomeManager {
	return ledger.NewIncomeManager(app.env.Store, app.env.Catalogs.Sources, ledger.WithClock(app.env.Now))
}

func (app *App) incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "income",
		Aliases: []string{"inc"},
		Short:   "List, add, edit and delete income",
	}
	cmd.AddCommand(app.incomeListCmd(), app.incomeAddCmd(), app.incomeEditCmd(), app.incomeDeleteCmd())
	return cmd
}

func (app *App) incomeListCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			start, end, err := f.dateRange(app.console)
			if err != nil {
				return err
			}
			m := app.incomeManager()
			if err := applySort(m, f.sort, f.order); err != nil {
				return err
			}
			if err := app.withStatus("Loading income", func() error {
				_, err := m.List(cmd.Context(), records.IncomeFilter{Start: start, End: end})
				return err
			}); err != nil {
				return err
			}
			app.renderIncome(goToPage(m, &f))
			return nil
		},
	}
	f.bind(cmd, []string{ledger.SortDate, ledger.SortSource, ledger.SortAmount})
	return cmd
}

func (app *App) renderIncome(p ledger.Page[core.Income]) {
	if p.Total == 0 {
		app.console.Info("No income found")
		return
	}
	rows := make([][]string, len(p.Items))
	for i, in := range p.Items {
		rows[i] = []string{in.ID, core.Day(in.Date), in.Source, core.FormatAmount(in.Amount)}
	}
	app.console.Table([]string{"ID", "Date", "Source", "Amount"}, rows)
	app.console.pageFooter(p.Number, p.TotalPages, p.Total, p.Sort)
}

type incomeFlags struct {
	source string
	amount string
	date   string
}

func (f *incomeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "Income source from the catalog")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount, e.g. 1500")
	cmd.Flags().StringVar(&f.date, "date", "", "Date YYYY-MM-DD (default today)")
}

func (f *incomeFlags) apply(cmd *cobra.Command, d core.IncomeDraft) core.IncomeDraft {
	if cmd.Flags().Changed("source") {
		d.Source = f.source
	}
	if cmd.Flags().Changed("amount") {
		d.Amount = f.amount
	}
	if cmd.Flags().Changed("date") {
		d.Date = f.date
	}
	return d
}

func (app *App) incomeAddCmd() *cobra.Command {
	var f incomeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			d := f.apply(cmd, core.IncomeDraft{Date: core.Day(app.env.Now())})
			created, err := app.incomeManager().Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			app.console.Success("Added income %s: %s %s", created.ID, created.Source, core.FormatAmount(created.Amount))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func findIncome(ctx context.Context, m *ledger.IncomeManager, id string) (core.Income, error) {
	items, err := m.List(ctx, records.IncomeFilter{})
	if err != nil {
		return core.Income{}, err
	}
	i := slices.IndexFunc(items, func(in core.Income) bool { return in.ID == id })
	if i < 0 {
		return core.Income{}, fmt.Errorf("income %s: %w", id, core.ErrNotFound)
	}
	return items[i], nil
}

func (app *App) incomeEditCmd() *cobra.Command {
	var f incomeFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an income record; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			m := app.incomeManager()
			current, err := findIncome(cmd.Context(), m, args[0])
			if err != nil {
				return err
			}
			updated, err := m.Update(cmd.Context(), current.ID, f.apply(cmd, core.IncomeDraftOf(current)))
			if err != nil {
				return err
			}
			app.console.Success("Updated income %s: %s %s", updated.ID, updated.Source, core.FormatAmount(updated.Amount))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (app *App) incomeDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an income record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			if !yes && !confirm(fmt.Sprintf("Delete income %s?", args[0])) {
				app.console.Info("Nothing deleted")
				return nil
			}
			if err := app.incomeManager().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.console.Success("Deleted income %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
