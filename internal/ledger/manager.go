// Package ledger implements the transaction list shared by the expense and
// income screens: fetch under a filter, sort, paginate, and validated writes
// that always end with a refetch.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"budgetbuddy/internal/log"
	"budgetbuddy/internal/seq"
)

// ErrUnknownField is returned when sorting by a field with no comparator.
var ErrUnknownField = errors.New("unknown sort field")

// Backend is the slice of the Record Store one list talks to.
type Backend[R, F any] interface {
	List(ctx context.Context, f F) ([]R, error)
	Create(ctx context.Context, r R) (R, error)
	Update(ctx context.Context, id string, r R) (R, error)
	Delete(ctx context.Context, id string) error
}

// ParseFunc turns a form draft into a record, returning a *core.ValidationError
// when any field is rejected.
type ParseFunc[R, D any] func(d D, today time.Time) (R, error)

type Option func(*options)

type options struct {
	now  func() time.Time
	sort *Sort
}

// WithClock overrides the clock used to reject future dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSort overrides the initial ordering.
func WithSort(s Sort) Option {
	return func(o *options) { o.sort = &s }
}

// Manager holds one list's state. It is safe for concurrent use; the lock is
// never held across a Record Store call.
type Manager[R, D, F any] struct {
	name    string
	backend Backend[R, F]
	parse   ParseFunc[R, D]
	cmp     Comparators[R]
	now     func() time.Time

	mu      sync.Mutex
	filter  F
	items   []R
	sort    Sort
	page    int
	loaded  bool
	lastErr error

	fetches seq.Slot
}

func newManager[R, D, F any](name string, b Backend[R, F], parse ParseFunc[R, D], cmp Comparators[R], def Sort, opts []Option) *Manager[R, D, F] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	s := def
	if o.sort != nil {
		s = *o.sort
	}
	return &Manager[R, D, F]{
		name:    name,
		backend: b,
		parse:   parse,
		cmp:     cmp,
		now:     o.now,
		sort:    s,
		page:    1,
	}
}

// List replaces the active filter and fetches. On success the page resets to 1.
func (m *Manager[R, D, F]) List(ctx context.Context, f F) ([]R, error) {
	m.mu.Lock()
	m.filter = f
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// Refresh fetches again under the current filter. A failed fetch keeps the
// records already shown and is reported through Err as well as returned.
func (m *Manager[R, D, F]) Refresh(ctx context.Context) ([]R, error) {
	m.mu.Lock()
	f := m.filter
	m.mu.Unlock()

	tok := m.fetches.Issue()
	items, err := m.backend.List(ctx, f)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fetches.Current(tok) {
		slog.DebugContext(ctx, "Dropping stale list response", log.FieldComponent, log.ComponentLedger, "list", m.name)
		return nil, seq.ErrSuperseded
	}
	if err != nil {
		m.lastErr = err
		slog.WarnContext(ctx, "List fetch failed", log.FieldComponent, log.ComponentLedger, "list", m.name, "error", err)
		return nil, err
	}
	m.items = items
	m.loaded = true
	m.lastErr = nil
	m.page = 1
	return items, nil
}

// Create validates d and, only when every field passes, writes it and refetches.
func (m *Manager[R, D, F]) Create(ctx context.Context, d D) (R, error) {
	var zero R
	rec, err := m.parse(d, m.now())
	if err != nil {
		return zero, err
	}
	created, err := m.backend.Create(ctx, rec)
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", m.name, err)
	}
	slog.InfoContext(ctx, "Record created", log.FieldComponent, log.ComponentLedger, "list", m.name)
	return created, m.refetchAfterWrite(ctx)
}

// Update validates d and, only when every field passes, replaces record id and refetches.
func (m *Manager[R, D, F]) Update(ctx context.Context, id string, d D) (R, error) {
	var zero R
	rec, err := m.parse(d, m.now())
	if err != nil {
		return zero, err
	}
	updated, err := m.backend.Update(ctx, id, rec)
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", m.name, id, err)
	}
	slog.InfoContext(ctx, "Record updated", log.FieldComponent, log.ComponentLedger, "list", m.name, "id", id)
	return updated, m.refetchAfterWrite(ctx)
}

// Delete removes record id and refetches.
func (m *Manager[R, D, F]) Delete(ctx context.Context, id string) error {
	if err := m.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", m.name, id, err)
	}
	slog.InfoContext(ctx, "Record deleted", log.FieldComponent, log.ComponentLedger, "list", m.name, "id", id)
	return m.refetchAfterWrite(ctx)
}

func (m *Manager[R, D, F]) refetchAfterWrite(ctx context.Context) error {
	_, err := m.Refresh(ctx)
	if errors.Is(err, seq.ErrSuperseded) {
		return nil
	}
	return err
}

// SortBy toggles the ordering on field. The current page is kept, clamped to
// the page count.
func (m *Manager[R, D, F]) SortBy(field string) error {
	if _, ok := m.cmp[field]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sort = m.sort.Toggle(field)
	m.page = clampPage(m.page, TotalPages(len(m.items)))
	return nil
}

// Sort returns the active ordering.
func (m *Manager[R, D, F]) Sort() Sort {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sort
}

// Sorted returns every fetched record in display order.
func (m *Manager[R, D, F]) Sorted() []R {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cmp.apply(m.items, m.sort)
}

// View renders the current page.
func (m *Manager[R, D, F]) View() Page[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := m.cmp.apply(m.items, m.sort)
	total := TotalPages(len(sorted))
	n := clampPage(m.page, total)
	return Page[R]{
		Items:      slicePage(sorted, n),
		Number:     n,
		TotalPages: total,
		Total:      len(sorted),
		Sort:       m.sort,
	}
}

// GoTo moves to page n, clamped to [1, TotalPages].
func (m *Manager[R, D, F]) GoTo(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.page = clampPage(n, TotalPages(len(m.items)))
	return m.page
}

func (m *Manager[R, D, F]) First() int { return m.GoTo(1) }
func (m *Manager[R, D, F]) Last() int  { return m.GoTo(math.MaxInt) }

func (m *Manager[R, D, F]) Next() int {
	m.mu.Lock()
	p := m.page
	m.mu.Unlock()
	return m.GoTo(p + 1)
}

func (m *Manager[R, D, F]) Prev() int {
	m.mu.Lock()
	p := m.page
	m.mu.Unlock()
	return m.GoTo(p - 1)
}

// Filter returns the active filter.
func (m *Manager[R, D, F]) Filter() F {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// Loaded reports whether at least one fetch has succeeded.
func (m *Manager[R, D, F]) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Err returns the error of the last fetch, nil once a fetch succeeds.
func (m *Manager[R, D, F]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
