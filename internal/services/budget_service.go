package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

var (
	ErrEmptyBudgetSet    = errors.New("budget set is empty")
	ErrMixedMonths       = errors.New("every budget in a set must share one month")
	ErrDuplicateBudget   = errors.New("category appears more than once")
	ErrMissingCategory   = errors.New("category has no budget in the set")
	ErrCopyIntoSameMonth = errors.New("source and target month are the same")
)

type BudgetService struct {
	repo       BudgetRepository
	categories core.Catalog
	track      tracker
}

// List returns the user's budgets, optionally narrowed to one month.
func (s *BudgetService) List(ctx context.Context, userID string, month core.MonthYear) ([]core.Budget, error) {
	if month != "" && !month.Valid() {
		return nil, fieldError("monthYear", core.ErrInvalidMonth)
	}
	out, err := s.repo.ListBudgets(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

// BulkCreate stores a month's complete set: exactly one row per catalog category.
// Failures are keyed by category.
func (s *BudgetService) BulkCreate(ctx context.Context, userID string, budgets []core.Budget) ([]core.Budget, error) {
	if len(budgets) == 0 {
		return nil, fieldError("budgets", ErrEmptyBudgetSet)
	}
	errs := core.FieldErrors{}
	month := budgets[0].MonthYear
	seen := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		switch {
		case !s.categories.Contains(b.Category):
			errs.Add(b.Category, core.ErrUnknownCategory)
		case seen[b.Category]:
			errs.Add(b.Category, ErrDuplicateBudget)
		case b.MonthYear != month:
			errs.Add(b.Category, ErrMixedMonths)
		default:
			errs.Add(b.Category, b.Validate())
		}
		seen[b.Category] = true
	}
	for _, c := range s.categories {
		if !seen[c] {
			errs.Add(c, ErrMissingCategory)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateBudgets(ctx, userID, budgets)
	if err != nil {
		return nil, fmt.Errorf("create budgets for %s: %w", month, err)
	}
	slog.InfoContext(ctx, "Budgets created", log.FieldComponent, log.ComponentBudget, "month", month, "count", len(created))
	s.track.changed(ctx, userID, core.ActionCreatedBatch, core.EntityBudget, string(month))
	return created, nil
}

// Copy clones every budget of from into to.
func (s *BudgetService) Copy(ctx context.Context, userID string, from, to core.MonthYear) ([]core.Budget, error) {
	errs := core.FieldErrors{}
	if !from.Valid() {
		errs.Add("from", core.ErrInvalidMonth)
	}
	if !to.Valid() {
		errs.Add("to", core.ErrInvalidMonth)
	}
	if from == to && from != "" {
		errs.Add("to", ErrCopyIntoSameMonth)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	copied, err := s.repo.CopyBudgets(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("copy budgets %s to %s: %w", from, to, err)
	}
	slog.InfoContext(ctx, "Budgets copied", log.FieldComponent, log.ComponentBudget, "from", from, "to", to, "count", len(copied))
	s.track.changed(ctx, userID, core.ActionCopied, core.EntityBudget, string(to))
	return copied, nil
}

// Update changes one budget's limit. Category and month of the stored row are kept.
func (s *BudgetService) Update(ctx context.Context, userID, id string, b core.Budget) (core.Budget, error) {
	if b.LimitAmount.IsNegative() {
		return core.Budget{}, fieldError(core.FieldLimit, core.ErrNegativeLimit)
	}
	updated, err := s.repo.UpdateBudgetLimit(ctx, userID, id, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Budget updated", log.FieldComponent, log.ComponentBudget, "id", id, "limit", updated.LimitAmount.String())
	s.track.changed(ctx, userID, core.ActionUpdated, core.EntityBudget, id)
	return updated, nil
}

func fieldError(field string, err error) error {
	errs := core.FieldErrors{}
	errs.Add(field, err)
	return errs.Err()
}
