// Package analytics drives the analytics view: month selection, summary
// fetches with a per-month cache, and resolution into exactly one of the
// loading, error, empty or populated states.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/prefs"
	"budgetbuddy/internal/records"
	"budgetbuddy/internal/seq"
)

type State int

const (
	StateLoading State = iota
	StateError
	StateEmpty
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	default:
		return "populated"
	}
}

// allTime is the cache key for the summary with no month filter.
const allTime = "all-time"

const (
	defaultCacheSize = 24
	defaultCacheTTL  = 5 * time.Minute
)

type Option func(*Orchestrator)

// WithCache replaces the summary cache.
func WithCache(c cache.Cache[core.Summary]) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// Orchestrator is safe for concurrent use. Overlapping fetches for the same
// slot resolve in issue order: a response older than the latest request is dropped.
type Orchestrator struct {
	store records.AnalyticsStore
	prefs prefs.Store
	cache cache.Cache[core.Summary]

	mu           sync.Mutex
	month        core.MonthYear
	months       []core.MonthYear
	state        State
	summary      core.Summary
	err          error
	monthsFailed bool

	monthsSlot  seq.Slot
	summarySlot seq.Slot
}

// New restores the last selection from p; an absent or empty value means all time.
func New(store records.AnalyticsStore, p prefs.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store: store,
		prefs: p,
		state: StateLoading,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cache == nil {
		o.cache = cache.NewLRUCache[core.Summary](defaultCacheSize, defaultCacheTTL)
	}
	if v, ok := p.Get(prefs.KeyAnalyticsMonth); ok && v != "" {
		if m, err := core.ParseMonthYear(v); err == nil {
			o.month = m
		}
	}
	return o
}

// Mount loads the available months and then the summary for the current selection.
func (o *Orchestrator) Mount(ctx context.Context) error {
	if err := o.loadMonths(ctx); err != nil {
		return err
	}
	return o.fetch(ctx, true)
}

func (o *Orchestrator) loadMonths(ctx context.Context) error {
	tok := o.monthsSlot.Issue()
	o.mu.Lock()
	o.state = StateLoading
	o.mu.Unlock()

	months, err := o.store.AvailableMonths(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.monthsSlot.Current(tok) {
		return seq.ErrSuperseded
	}
	if err != nil {
		o.state = StateError
		o.err = err
		o.monthsFailed = true
		slog.WarnContext(ctx, "Available months fetch failed", log.FieldComponent, log.ComponentAnalytics, "error", err)
		return err
	}
	months = slices.Clone(months)
	slices.SortFunc(months, func(a, b core.MonthYear) int { return -compareMonth(a, b) })
	o.months = months
	o.monthsFailed = false
	return nil
}

func compareMonth(a, b core.MonthYear) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SelectMonth persists the selection and fetches its summary. The empty month
// selects all time.
func (o *Orchestrator) SelectMonth(ctx context.Context, month core.MonthYear) error {
	if month != "" {
		m, err := core.ParseMonthYear(string(month))
		if err != nil {
			return err
		}
		month = m
	}
	if err := o.prefs.Set(prefs.KeyAnalyticsMonth, string(month)); err != nil {
		slog.WarnContext(ctx, "Failed to persist analytics month", log.FieldComponent, log.ComponentAnalytics, "error", err)
	}
	o.mu.Lock()
	o.month = month
	o.mu.Unlock()
	return o.fetch(ctx, true)
}

// Retry repeats the failed fetch, skipping the cache.
func (o *Orchestrator) Retry(ctx context.Context) error {
	o.mu.Lock()
	months := o.monthsFailed
	o.mu.Unlock()
	if months {
		if err := o.loadMonths(ctx); err != nil {
			return err
		}
	}
	return o.fetch(ctx, false)
}

// Invalidate drops every cached summary, for use after writes that change totals.
func (o *Orchestrator) Invalidate() {
	o.cache.Purge()
}

func cacheKey(m core.MonthYear) string {
	if m == "" {
		return allTime
	}
	return string(m)
}

func (o *Orchestrator) fetch(ctx context.Context, useCache bool) error {
	tok := o.summarySlot.Issue()

	o.mu.Lock()
	month := o.month
	if useCache {
		if s, ok := o.cache.Get(cacheKey(month)); ok {
			o.resolve(s)
			o.mu.Unlock()
			return nil
		}
	}
	o.state = StateLoading
	o.summary = core.Summary{}
	o.err = nil
	o.mu.Unlock()

	s, err := o.store.Summary(ctx, month)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.summarySlot.Current(tok) {
		slog.DebugContext(ctx, "Dropping stale summary", log.FieldComponent, log.ComponentAnalytics, "month", month)
		return seq.ErrSuperseded
	}
	if err != nil {
		o.state = StateError
		o.err = err
		slog.WarnContext(ctx, "Summary fetch failed", log.FieldComponent, log.ComponentAnalytics, "month", month, "error", err)
		return fmt.Errorf("summary for %s: %w", cacheKey(month), err)
	}
	o.cache.Set(cacheKey(month), s)
	o.resolve(s)
	return nil
}

// resolve must be called with o.mu held.
func (o *Orchestrator) resolve(s core.Summary) {
	o.summary = s
	o.err = nil
	if len(s.BudgetUsage) == 0 {
		o.state = StateEmpty
	} else {
		o.state = StatePopulated
	}
}

// Bar is one category's usage, with Width clamped for drawing and Percent raw.
type Bar struct {
	Category string
	Limit    decimal.Decimal
	Spent    decimal.Decimal
	Percent  float64
	Width    float64
}

// Slice is a category's share of total spending.
type Slice struct {
	Category string
	Spent    decimal.Decimal
	Share    float64
}

// View is a snapshot of the analytics screen. Summary, Bars and Distribution
// are only filled in the populated state; the summary totals also in the empty state.
type View struct {
	State        State
	Month        core.MonthYear
	Months       []core.MonthYear
	Summary      core.Summary
	Bars         []Bar
	Distribution []Slice
	Err          error
}

// AllTime reports whether no month is selected.
func (v View) AllTime() bool { return v.Month == "" }

func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := View{
		State:  o.state,
		Month:  o.month,
		Months: slices.Clone(o.months),
	}
	switch o.state {
	case StateError:
		v.Err = o.err
	case StateEmpty:
		v.Summary = o.summary
	case StatePopulated:
		v.Summary = o.summary
		v.Bars = bars(o.summary.BudgetUsage)
		v.Distribution = distribution(o.summary.BudgetUsage)
	}
	return v
}

func bars(usage []core.BudgetUsage) []Bar {
	out := make([]Bar, len(usage))
	for i, u := range usage {
		out[i] = Bar{
			Category: u.Category,
			Limit:    u.Limit,
			Spent:    u.Spent,
			Percent:  u.PercentUsed,
			Width:    core.BarWidth(u.PercentUsed),
		}
	}
	return out
}

func distribution(usage []core.BudgetUsage) []Slice {
	total := decimal.Zero
	for _, u := range usage {
		if u.Spent.IsPositive() {
			total = total.Add(u.Spent)
		}
	}
	out := make([]Slice, 0, len(usage))
	for _, u := range usage {
		s := Slice{Category: u.Category, Spent: u.Spent}
		if total.IsPositive() && u.Spent.IsPositive() {
			s.Share, _ = u.Spent.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		}
		out = append(out, s)
	}
	return out
}

// IsSuperseded reports whether err only means a newer request took over.
func IsSuperseded(err error) bool {
	return errors.Is(err, seq.ErrSuperseded)
}
