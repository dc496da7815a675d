package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

var (
	boldBlue   = color.New(color.FgBlue, color.Bold).SprintFunc()
	boldGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldRed    = color.New(color.FgRed, color.Bold).SprintFunc()
	boldYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	boldCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Console renders command output. Spinners only run on a colour terminal.
type Console struct {
	out         io.Writer
	interactive bool
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out, interactive: !color.NoColor}
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) Info(format string, a ...any) {
	pterm.Info.WithWriter(c.out).Printfln(format, a...)
}

func (c *Console) Success(format string, a ...any) {
	pterm.Success.WithWriter(c.out).Printfln(format, a...)
}

func (c *Console) Warning(format string, a ...any) {
	pterm.Warning.WithWriter(c.out).Printfln(format, a...)
}

// Title prints a section heading.
func (c *Console) Title(text string) {
	fmt.Fprintln(c.out, boldBlue(text))
}

// Table prints header followed by rows.
func (c *Console) Table(header []string, rows [][]string) {
	data := pterm.TableData{header}
	data = append(data, rows...)
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithWriter(c.out).WithData(data).Render(); err != nil {
		for _, r := range data {
			fmt.Fprintln(c.out, strings.Join(r, "\t"))
		}
	}
}

// Status starts a spinner and returns the function that stops it.
func (c *Console) Status(text string) func() {
	if !c.interactive {
		return func() {}
	}
	sp, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).WithWriter(c.out).Start(text)
	if err != nil {
		return func() {}
	}
	return func() { _ = sp.Stop() }
}

// Error explains err to the user. Validation failures list every field.
func (c *Console) Error(err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintln(c.out, boldRed("Please fix the following:"))
		names := make([]string, 0, len(verr.Fields))
		for name := range verr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(c.out, "  %s %s\n", boldYellow(name+":"), verr.Fields[name])
		}
	case errors.Is(err, core.ErrAuth):
		fmt.Fprintln(c.out, boldRed("Not signed in or session expired. Run `budgetbuddy login`."))
	case core.IsConflict(err):
		fmt.Fprintln(c.out, boldYellow(err.Error()))
	case core.IsNetwork(err):
		fmt.Fprintln(c.out, boldRed("Could not reach the server: ")+err.Error())
	default:
		fmt.Fprintln(c.out, boldRed("Error: ")+err.Error())
	}
}

// money colours an amount by sign.
func money(d decimal.Decimal, positiveGood bool) string {
	s := core.FormatAmount(d)
	switch {
	case d.IsNegative():
		return boldRed(s)
	case positiveGood && d.IsPositive():
		return boldGreen(s)
	}
	return s
}

// usageBar draws width (0-100) as a 20 cell bar.
func usageBar(width, percent float64) string {
	cells := int(width / 5)
	bar := strings.Repeat("█", cells) + strings.Repeat("░", 20-cells)
	text := fmt.Sprintf("%s %.1f%%", bar, percent)
	switch {
	case percent > 100:
		return boldRed(text)
	case percent >= 80:
		return boldYellow(text)
	}
	return boldGreen(text)
}

func banner(version string) string {
	return boldCyan("BudgetBuddy") + " " + version
}
