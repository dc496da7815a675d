package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"budgetbuddy/internal/budgets"
	"budgetbuddy/internal/core"
)

func (app *App) budgetsCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget"},
		Short:   "Show, create, copy and edit monthly budgets",
	}
	cmd.PersistentFlags().StringVarP(&month, "month", "m", "", "Month YYYY-MM (default: last viewed, then current)")
	cmd.AddCommand(
		app.budgetsShowCmd(&month),
		app.budgetsCreateCmd(&month),
		app.budgetsCopyCmd(&month),
		app.budgetsEditCmd(&month),
	)
	return cmd
}

// openBudgets loads the workspace on the requested month, or on the persisted
// one when month is empty.
func (app *App) openBudgets(ctx context.Context, month string) (*budgets.Manager, error) {
	if err := app.requireSession(); err != nil {
		return nil, err
	}
	m := budgets.New(app.env.Store, app.env.Prefs, app.env.Catalogs.Categories, budgets.WithClock(app.env.Now))
	err := app.withStatus("Loading budgets", func() error {
		if month != "" {
			return m.SelectMonth(ctx, core.MonthYear(month))
		}
		return m.Refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (app *App) budgetsShowCmd(month *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the budgets of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.openBudgets(cmd.Context(), *month)
			if err != nil {
				return err
			}
			app.renderBudgets(m)
			return nil
		},
	}
}

func (app *App) renderBudgets(m *budgets.Manager) {
	app.console.Title("Budgets for " + m.Month().String())
	if !m.IsAlreadySet() {
		app.console.Info("No budgets set for %s", m.Month())
		if m.CanCopy() {
			app.console.Println("Run `budgetbuddy budgets copy` to reuse " + m.Month().Previous().String() + ", or `budgetbuddy budgets create`.")
		} else {
			app.console.Println("Run `budgetbuddy budgets create --limit Category=amount ...` to set them.")
		}
		return
	}
	existing := m.ExistingBudgets()
	rows := make([][]string, len(existing))
	for i, b := range existing {
		rows[i] = []string{b.ID, b.Category, core.FormatAmount(b.LimitAmount)}
	}
	app.console.Table([]string{"ID", "Category", "Limit"}, rows)
	app.console.Printf("Total: %s   Average per category: %s\n",
		core.FormatAmount(m.TotalBudget()), core.FormatAmount(m.AverageBudget()))
}

func (app *App) budgetsCreateCmd(month *string) *cobra.Command {
	var (
		limits   map[string]string
		fallback string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Set a limit for every category of a month in one go",
		Long: "Creates the full budget set of a month. Every catalog category needs a limit:\n" +
			"pass them with --limit Category=amount, and --default for the rest.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.openBudgets(cmd.Context(), *month)
			if err != nil {
				return err
			}
			rows, err := m.BeginCreate()
			if err != nil {
				return fmt.Errorf("%s: %w", m.Month(), err)
			}
			for _, r := range rows {
				if fallback != "" {
					_ = m.SetRowAmount(r.Category, fallback)
				}
			}
			for category, amount := range limits {
				if err := m.SetRowAmount(matchCategory(rows, category), amount); err != nil {
					m.CancelCreate()
					return err
				}
			}
			created, err := m.SubmitCreate(cmd.Context())
			if err != nil {
				return err
			}
			app.console.Success("Created %d budgets for %s", len(created), m.Month())
			app.renderBudgets(m)
			return nil
		},
	}
	cmd.Flags().StringToStringVarP(&limits, "limit", "l", nil, "Category=amount, repeatable")
	cmd.Flags().StringVar(&fallback, "default", "", "Limit for categories without --limit")
	return cmd
}

// matchCategory resolves a case-insensitive category name to its catalog spelling.
func matchCategory(rows []budgets.Row, name string) string {
	i := slices.IndexFunc(rows, func(r budgets.Row) bool { return strings.EqualFold(r.Category, strings.TrimSpace(name)) })
	if i < 0 {
		return name
	}
	return rows[i].Category
}

func (app *App) budgetsCopyCmd(month *string) *cobra.Command {
	return &cobra.Command{
		Use:   "copy",
		Short: "Copy the previous month's budgets into the month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.openBudgets(cmd.Context(), *month)
			if err != nil {
				return err
			}
			copied, err := m.CopyPrevious(cmd.Context())
			if err != nil {
				return err
			}
			app.console.Success("Copied %d budgets from %s to %s", len(copied), m.Month().Previous(), m.Month())
			app.renderBudgets(m)
			return nil
		},
	}
}

func (app *App) budgetsEditCmd(month *string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id|category> <amount>",
		Short: "Change one budget limit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.openBudgets(cmd.Context(), *month)
			if err != nil {
				return err
			}
			id := args[0]
			existing := m.ExistingBudgets()
			if i := slices.IndexFunc(existing, func(b core.Budget) bool { return strings.EqualFold(b.Category, args[0]) }); i >= 0 {
				id = existing[i].ID
			}
			if _, err := m.BeginEdit(id); err != nil {
				return err
			}
			if err := m.SetEditAmount(args[1]); err != nil {
				return err
			}
			updated, err := m.CommitEdit(cmd.Context())
			if err != nil {
				m.CancelEdit()
				return err
			}
			app.console.Success("%s limit for %s is now %s", updated.Category, updated.MonthYear, core.FormatAmount(updated.LimitAmount))
			return nil
		},
	}
}
