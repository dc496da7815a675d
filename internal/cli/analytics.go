package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"budgetbuddy/internal/analytics"
	"budgetbuddy/internal/core"
)

func (app *App) analyticsCmd() *cobra.Command {
	var (
		month   string
		allTime bool
	)
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Income, spending and budget usage for a month or all time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			if month != "" && allTime {
				return errors.New("--month and --all-time are mutually exclusive")
			}
			ctx := cmd.Context()
			o := analytics.New(app.env.Store, app.env.Prefs)

			err := app.withStatus("Loading analytics", func() error {
				switch {
				case allTime:
					if err := o.SelectMonth(ctx, ""); err != nil {
						return err
					}
				case month != "":
					if err := o.SelectMonth(ctx, core.MonthYear(month)); err != nil {
						return err
					}
				}
				return o.Mount(ctx)
			})
			app.renderAnalytics(o.View())
			if analytics.IsSuperseded(err) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month YYYY-MM")
	cmd.Flags().BoolVar(&allTime, "all-time", false, "Summarise every month")
	return cmd
}

func (app *App) renderAnalytics(v analytics.View) {
	period := "All time"
	if !v.AllTime() {
		period = v.Month.String()
	}
	app.console.Title("Analytics: " + period)
	if len(v.Months) > 0 {
		names := make([]string, len(v.Months))
		for i, m := range v.Months {
			names[i] = m.String()
		}
		app.console.Println("Months with budgets: " + strings.Join(names, ", "))
	}

	switch v.State {
	case analytics.StateLoading:
		app.console.Info("Still loading")
	case analytics.StateError:
		app.console.Warning("Could not load the summary. Run the command again to retry.")
	case analytics.StateEmpty:
		app.renderTotals(v.Summary)
		app.console.Info("No budgets for this period yet")
	case analytics.StatePopulated:
		app.renderTotals(v.Summary)
		rows := make([][]string, len(v.Bars))
		for i, b := range v.Bars {
			rows[i] = []string{b.Category, core.FormatAmount(b.Spent), core.FormatAmount(b.Limit), usageBar(b.Width, b.Percent)}
		}
		app.console.Table([]string{"Category", "Spent", "Limit", "Used"}, rows)

		dist := make([][]string, 0, len(v.Distribution))
		for _, s := range v.Distribution {
			dist = append(dist, []string{s.Category, core.FormatAmount(s.Spent), fmt.Sprintf("%.1f%%", s.Share)})
		}
		app.console.Title("Spending distribution")
		app.console.Table([]string{"Category", "Spent", "Share"}, dist)
	}
}

func (app *App) renderTotals(s core.Summary) {
	app.console.Printf("Income: %s   Expenses: %s   Net savings: %s\n",
		money(s.TotalIncome, true), core.FormatAmount(s.TotalExpenses), money(s.NetSavings, true))
}
