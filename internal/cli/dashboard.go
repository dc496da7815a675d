package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budgetbuddy/internal/activity"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

// dashboardData is everything the dashboard shows, fetched in parallel.
type dashboardData struct {
	month    core.MonthYear
	expenses []core.Expense
	incomes  []core.Income
	summary  core.Summary
}

func (app *App) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "This month's totals, budget usage and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			d := dashboardData{month: core.CurrentMonth(app.env.Now())}
			store := app.env.Store

			err := app.withStatus("Loading dashboard", func() error {
				g, ctx := errgroup.WithContext(cmd.Context())
				g.Go(func() error {
					var err error
					d.expenses, err = store.ListExpenses(ctx, records.ExpenseFilter{})
					return err
				})
				g.Go(func() error {
					var err error
					d.incomes, err = store.ListIncome(ctx, records.IncomeFilter{})
					return err
				})
				g.Go(func() error {
					var err error
					d.summary, err = store.Summary(ctx, d.month)
					return err
				})
				return g.Wait()
			})
			if err != nil {
				return err
			}
			app.renderDashboard(d)
			return nil
		},
	}
}

func (app *App) renderDashboard(d dashboardData) {
	app.console.Println(banner(app.version))
	app.console.Title("Dashboard: " + d.month.String())
	app.renderTotals(d.summary)

	if len(d.summary.BudgetUsage) > 0 {
		rows := make([][]string, len(d.summary.BudgetUsage))
		for i, u := range d.summary.BudgetUsage {
			rows[i] = []string{u.Category, core.FormatAmount(u.Remaining), usageBar(core.BarWidth(u.PercentUsed), u.PercentUsed)}
		}
		app.console.Table([]string{"Category", "Remaining", "Used"}, rows)
	} else {
		app.console.Info("No budgets for %s", d.month)
	}

	recent := activity.Merge(d.expenses, d.incomes)
	app.console.Title("Recent activity")
	if len(recent) == 0 {
		app.console.Info("No transactions yet")
		return
	}
	rows := make([][]string, len(recent))
	for i, e := range recent {
		amount := core.FormatAmount(e.Amount)
		if e.Kind == core.KindIncome {
			amount = boldGreen("+" + amount)
		} else {
			amount = boldRed("-" + amount)
		}
		rows[i] = []string{core.Day(e.Date), string(e.Kind), e.Label, e.Category, amount}
	}
	app.console.Table([]string{"Date", "Type", "Description", "Category", "Amount"}, rows)

	trend := activity.Trend(recent)
	trows := make([][]string, len(trend))
	for i, p := range trend {
		trows[i] = []string{p.Date, core.FormatAmount(p.Income), core.FormatAmount(p.Expense)}
	}
	app.console.Title("Daily trend")
	app.console.Table([]string{"Date", "Income", "Expense"}, trows)
}
