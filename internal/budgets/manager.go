// Package budgets holds the per-month budget workspace: bulk creation of a
// month's full set, copying from the previous month, and inline edits.
package budgets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/prefs"
	"budgetbuddy/internal/records"
	"budgetbuddy/internal/seq"
)

var (
	ErrAlreadySet = errors.New("budgets for this month are already set")
	ErrNotSet     = errors.New("budgets for this month are not set")
	ErrNotEditing = errors.New("no budget is being edited")
	ErrNoCreate   = errors.New("not creating budgets")
)

type Mode int

const (
	ModeView Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "view"
	}
}

// Row is one category line of the create form. Amount is raw user input.
type Row struct {
	Category string
	Amount   string
}

type Option func(*Manager)

// WithClock overrides the clock used for the default month.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager is safe for concurrent use; the lock is never held across a store call.
type Manager struct {
	store   records.BudgetStore
	prefs   prefs.Store
	catalog core.Catalog
	now     func() time.Time

	mu      sync.Mutex
	month   core.MonthYear
	budgets []core.Budget
	loaded  bool
	mode    Mode
	rows    []Row
	editID  string
	editAmt string
	lastErr error

	fetches seq.Slot
}

// New restores the selected month from p, falling back to the current month
// when nothing valid was stored.
func New(store records.BudgetStore, p prefs.Store, catalog core.Catalog, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		prefs:   p,
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.month = core.CurrentMonth(m.now())
	if v, ok := p.Get(prefs.KeyBudgetMonth); ok {
		if month, err := core.ParseMonthYear(v); err == nil {
			m.month = month
		}
	}
	return m
}

// Month returns the selected month.
func (m *Manager) Month() core.MonthYear {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.month
}

// SelectMonth persists month, leaves any create or edit mode, clears the last
// error and refetches.
func (m *Manager) SelectMonth(ctx context.Context, month core.MonthYear) error {
	month, err := core.ParseMonthYear(string(month))
	if err != nil {
		return err
	}
	if err := m.prefs.Set(prefs.KeyBudgetMonth, string(month)); err != nil {
		slog.WarnContext(ctx, "Failed to persist budget month", log.FieldComponent, log.ComponentBudget, "month", month, "error", err)
	}

	m.mu.Lock()
	m.month = month
	m.resetMode()
	m.lastErr = nil
	m.mu.Unlock()

	return m.Refresh(ctx)
}

// Refresh fetches every budget of the user.
func (m *Manager) Refresh(ctx context.Context) error {
	tok := m.fetches.Issue()
	budgets, err := m.store.ListBudgets(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fetches.Current(tok) {
		return seq.ErrSuperseded
	}
	if err != nil {
		m.lastErr = err
		slog.WarnContext(ctx, "Budget fetch failed", log.FieldComponent, log.ComponentBudget, "error", err)
		return err
	}
	m.budgets = budgets
	m.loaded = true
	return nil
}

func (m *Manager) resetMode() {
	m.mode = ModeView
	m.rows = nil
	m.editID = ""
	m.editAmt = ""
}

func (m *Manager) existing(month core.MonthYear) []core.Budget {
	var out []core.Budget
	for _, b := range m.budgets {
		if b.MonthYear == month {
			out = append(out, b)
		}
	}
	return out
}

// ExistingBudgets returns the selected month's budgets in catalog order.
func (m *Manager) ExistingBudgets() []core.Budget {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.existing(m.month)
	slices.SortStableFunc(out, func(a, b core.Budget) int {
		return catalogOrder(m.catalog, a.Category) - catalogOrder(m.catalog, b.Category)
	})
	return out
}

func catalogOrder(c core.Catalog, category string) int {
	if i := c.Index(category); i >= 0 {
		return i
	}
	return len(c)
}

// IsAlreadySet reports whether the selected month has any budget.
func (m *Manager) IsAlreadySet() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.existing(m.month)) > 0
}

func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Err returns the last fetch or write error, cleared on month change.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// TotalBudget sums the limits of the selected month.
func (m *Manager) TotalBudget() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, b := range m.existing(m.month) {
		total = total.Add(b.LimitAmount)
	}
	return total
}

// AverageBudget divides TotalBudget by the catalog size, not by the number of
// budgets set, so a partially configured month reads low.
func (m *Manager) AverageBudget() decimal.Decimal {
	if len(m.catalog) == 0 {
		return decimal.Zero
	}
	return m.TotalBudget().Div(decimal.NewFromInt(int64(len(m.catalog))))
}

// BeginCreate enters create mode with one empty row per catalog category.
func (m *Manager) BeginCreate() ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.existing(m.month)) > 0 {
		return nil, ErrAlreadySet
	}
	m.resetMode()
	m.mode = ModeCreate
	m.rows = make([]Row, len(m.catalog))
	for i, c := range m.catalog {
		m.rows[i] = Row{Category: c}
	}
	return slices.Clone(m.rows), nil
}

// Rows returns the create form.
func (m *Manager) Rows() []Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.rows)
}

// SetRowAmount stores raw input for one category of the create form.
func (m *Manager) SetRowAmount(category, amount string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeCreate {
		return ErrNoCreate
	}
	for i := range m.rows {
		if m.rows[i].Category == category {
			m.rows[i].Amount = amount
			return nil
		}
	}
	return fmt.Errorf("%w: %q", core.ErrUnknownCategory, category)
}

// CancelCreate discards the create form.
func (m *Manager) CancelCreate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == ModeCreate {
		m.resetMode()
	}
}

// SubmitCreate validates every row and writes the whole set in one bulk call.
// Row failures come back as a *core.ValidationError keyed by category.
func (m *Manager) SubmitCreate(ctx context.Context) ([]core.Budget, error) {
	m.mu.Lock()
	if m.mode != ModeCreate {
		m.mu.Unlock()
		return nil, ErrNoCreate
	}
	month := m.month
	rows := slices.Clone(m.rows)
	m.mu.Unlock()

	errs := core.FieldErrors{}
	set := make([]core.Budget, 0, len(rows))
	for _, r := range rows {
		limit, err := core.ParseLimit(r.Amount)
		if err != nil {
			errs.Add(r.Category, err)
			continue
		}
		set = append(set, core.Budget{Category: r.Category, LimitAmount: limit, MonthYear: month})
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	created, err := m.store.BulkCreateBudgets(ctx, set)
	if err != nil {
		m.setErr(err)
		return nil, fmt.Errorf("create budgets for %s: %w", month, err)
	}
	slog.InfoContext(ctx, "Budgets created", log.FieldComponent, log.ComponentBudget, "month", month, "count", len(created))

	m.mu.Lock()
	m.resetMode()
	m.mu.Unlock()
	return created, m.refetchAfterWrite(ctx)
}

// CanCopy reports whether the selected month is empty and the previous one is not.
func (m *Manager) CanCopy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.existing(m.month)) == 0 && len(m.existing(m.month.Previous())) > 0
}

// CopyPrevious clones the previous month's budgets into the selected month.
func (m *Manager) CopyPrevious(ctx context.Context) ([]core.Budget, error) {
	m.mu.Lock()
	month := m.month
	prev := month.Previous()
	set := len(m.existing(month)) > 0
	prevCount := len(m.existing(prev))
	m.mu.Unlock()

	if set {
		return nil, ErrAlreadySet
	}
	if prevCount == 0 {
		err := core.Conflictf("no budgets for %s", prev)
		m.setErr(err)
		return nil, err
	}

	copied, err := m.store.CopyBudgets(ctx, prev, month)
	if err != nil {
		m.setErr(err)
		return nil, fmt.Errorf("copy budgets %s to %s: %w", prev, month, err)
	}
	slog.InfoContext(ctx, "Budgets copied", log.FieldComponent, log.ComponentBudget, "from", prev, "to", month, "count", len(copied))

	m.mu.Lock()
	m.resetMode()
	m.mu.Unlock()
	return copied, m.refetchAfterWrite(ctx)
}

// BeginEdit makes budget id the single editable row, pre-filled with its limit.
func (m *Manager) BeginEdit(id string) (core.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.existing(m.month)
	if len(existing) == 0 {
		return core.Budget{}, ErrNotSet
	}
	i := slices.IndexFunc(existing, func(b core.Budget) bool { return b.ID == id })
	if i < 0 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	m.resetMode()
	m.mode = ModeEdit
	m.editID = id
	m.editAmt = existing[i].LimitAmount.String()
	return existing[i], nil
}

// Editing returns the id and raw amount of the row being edited.
func (m *Manager) Editing() (id, amount string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editID, m.editAmt, m.mode == ModeEdit
}

func (m *Manager) SetEditAmount(amount string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeEdit {
		return ErrNotEditing
	}
	m.editAmt = amount
	return nil
}

// CancelEdit discards the draft without writing.
func (m *Manager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == ModeEdit {
		m.resetMode()
	}
}

// CommitEdit validates the draft and writes the new limit, keeping category
// and month unchanged.
func (m *Manager) CommitEdit(ctx context.Context) (core.Budget, error) {
	m.mu.Lock()
	if m.mode != ModeEdit {
		m.mu.Unlock()
		return core.Budget{}, ErrNotEditing
	}
	id, raw := m.editID, m.editAmt
	i := slices.IndexFunc(m.budgets, func(b core.Budget) bool { return b.ID == id })
	var original core.Budget
	if i >= 0 {
		original = m.budgets[i]
	}
	m.mu.Unlock()

	if i < 0 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	limit, err := core.ParseLimit(raw)
	if err != nil {
		errs := core.FieldErrors{}
		errs.Add(core.FieldLimit, err)
		return core.Budget{}, errs.Err()
	}

	next := original
	next.LimitAmount = limit
	updated, err := m.store.UpdateBudget(ctx, id, next)
	if err != nil {
		m.setErr(err)
		return core.Budget{}, fmt.Errorf("update budget %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Budget updated", log.FieldComponent, log.ComponentBudget, "id", id, "category", next.Category)

	m.mu.Lock()
	m.resetMode()
	m.mu.Unlock()
	return updated, m.refetchAfterWrite(ctx)
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}

func (m *Manager) refetchAfterWrite(ctx context.Context) error {
	err := m.Refresh(ctx)
	if errors.Is(err, seq.ErrSuperseded) {
		return nil
	}
	return err
}
