package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/ledger"
)

// listFlags are the options shared by the expense and income listings.
type listFlags struct {
	from  string
	to    string
	sort  string
	order string
	page  int
	last  bool
}

func (f *listFlags) bind(cmd *cobra.Command, fields []string) {
	cmd.Flags().StringVar(&f.from, "from", "", "Start date YYYY-MM-DD (needs --to)")
	cmd.Flags().StringVar(&f.to, "to", "", "End date YYYY-MM-DD (needs --from)")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", "Sort field: "+strings.Join(fields, ", "))
	cmd.Flags().StringVarP(&f.order, "order", "o", "", "Sort order: asc or desc")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page to show")
	cmd.Flags().BoolVar(&f.last, "last", false, "Show the last page")
}

// dateRange parses both bounds. A single bound is dropped with a warning,
// matching how the list ignores half-open ranges.
func (f *listFlags) dateRange(c *Console) (start, end time.Time, err error) {
	if f.from == "" && f.to == "" {
		return
	}
	if f.from == "" || f.to == "" {
		c.Warning("Date filter needs both --from and --to; showing all dates")
		return time.Time{}, time.Time{}, nil
	}
	if start, err = core.ParseDate(f.from); err != nil {
		return
	}
	if end, err = core.ParseDate(f.to); err != nil {
		return
	}
	return start, end, nil
}

// applySort switches m to the requested field and order using the same
// toggle the interactive list uses.
func applySort[R, D, F any](m *ledger.Manager[R, D, F], field, order string) error {
	if field == "" && order == "" {
		return nil
	}
	if field == "" {
		field = m.Sort().Field
	}
	want := ledger.Asc
	switch strings.ToLower(order) {
	case "", "asc":
	case "desc":
		want = ledger.Desc
	default:
		return fmt.Errorf("invalid sort order %q: must be asc or desc", order)
	}
	if m.Sort().Field != field {
		if err := m.SortBy(field); err != nil {
			return err
		}
	}
	if m.Sort().Dir != want {
		return m.SortBy(field)
	}
	return nil
}

func goToPage[R, D, F any](m *ledger.Manager[R, D, F], f *listFlags) ledger.Page[R] {
	if f.last {
		m.Last()
	} else {
		m.GoTo(f.page)
	}
	return m.View()
}

func (c *Console) pageFooter(number, total, count int, s ledger.Sort) {
	nav := make([]string, 0, 4)
	if number > 1 {
		nav = append(nav, "--page 1", fmt.Sprintf("--page %d", number-1))
	}
	if number < total {
		nav = append(nav, fmt.Sprintf("--page %d", number+1), "--last")
	}
	line := fmt.Sprintf("Page %d of %d (%d records, sorted by %s %s)", number, max(total, 1), count, s.Field, s.Dir)
	if len(nav) > 0 {
		line += "  " + pterm.Gray(strings.Join(nav, " | "))
	}
	c.Println(line)
}
