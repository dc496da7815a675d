package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"budgetbuddy/internal/core"
)

func (app *App) activityCmd() *cobra.Command {
	var entity, from, to string
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the log of your changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			if app.env.Activity == nil {
				return errors.New("activity log is not available")
			}
			f := core.ActivityFilter{EntityType: strings.ToUpper(strings.TrimSpace(entity))}
			var err error
			if from != "" {
				if f.From, err = core.ParseDate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if f.To, err = core.ParseDate(to); err != nil {
					return err
				}
				if len(strings.TrimSpace(to)) == len(core.DayLayout) {
					f.To = core.EndOfDay(f.To)
				}
			}

			var events []core.ActivityEvent
			if err := app.withStatus("Loading activity", func() error {
				events, err = app.env.Activity.ActivityLogs(cmd.Context(), f)
				return err
			}); err != nil {
				return err
			}
			if len(events) == 0 {
				app.console.Info("No activity recorded")
				return nil
			}
			rows := make([][]string, len(events))
			for i, ev := range events {
				rows[i] = []string{ev.Timestamp.Local().Format(time.DateTime), ev.Action, ev.EntityType, ev.EntityID}
			}
			app.console.Table([]string{"When", "Action", "Entity", "ID"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "Only EXPENSE, INCOME or BUDGET")
	cmd.Flags().StringVar(&from, "from", "", "From date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "To date YYYY-MM-DD (inclusive)")
	return cmd
}
