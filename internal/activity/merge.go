// Package activity merges the expense and income streams into the recent
// activity feed and the day-bucketed trend shown next to it.
package activity

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

// FeedSize is the number of entries kept in the recent activity feed.
const FeedSize = 5

// Entry is one transaction tagged with the stream it came from. Label is the
// expense description or the income source.
type Entry struct {
	Kind     core.Kind
	ID       string
	Label    string
	Category string
	Amount   decimal.Decimal
	Date     time.Time
}

// Point is one day of the trend series.
type Point struct {
	Date    string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Merge returns the FeedSize most recent transactions across both streams,
// newest first by full timestamp. Equal timestamps keep expenses before income.
func Merge(expenses []core.Expense, incomes []core.Income) []Entry {
	all := make([]Entry, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		all = append(all, Entry{Kind: core.KindExpense, ID: e.ID, Label: e.Description, Category: e.Category, Amount: e.Amount, Date: e.Date})
	}
	for _, i := range incomes {
		all = append(all, Entry{Kind: core.KindIncome, ID: i.ID, Label: i.Source, Amount: i.Amount, Date: i.Date})
	}
	slices.SortStableFunc(all, func(a, b Entry) int { return b.Date.Compare(a.Date) })
	if len(all) > FeedSize {
		all = all[:FeedSize]
	}
	return all
}

// Trend buckets entries by calendar day, oldest day first. It is meant to be
// fed the output of Merge, so days with activity outside the feed window are
// only partially counted.
func Trend(entries []Entry) []Point {
	byDay := make(map[string]*Point)
	var days []string
	for _, e := range entries {
		d := core.Day(e.Date)
		p, ok := byDay[d]
		if !ok {
			p = &Point{Date: d, Income: decimal.Zero, Expense: decimal.Zero}
			byDay[d] = p
			days = append(days, d)
		}
		switch e.Kind {
		case core.KindIncome:
			p.Income = p.Income.Add(e.Amount)
		case core.KindExpense:
			p.Expense = p.Expense.Add(e.Amount)
		}
	}
	slices.Sort(days)
	out := make([]Point, len(days))
	for i, d := range days {
		out[i] = *byDay[d]
	}
	return out
}
