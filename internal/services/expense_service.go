package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/records"
)

// ExpenseService validates and stores expenses for one user at a time.
type ExpenseService struct {
	repo       ExpenseRepository
	categories core.Catalog
	track      tracker
}

func (s *ExpenseService) List(ctx context.Context, userID string, f records.ExpenseFilter) ([]core.Expense, error) {
	out, err := s.repo.ListExpenses(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id string) (core.Expense, error) {
	return s.repo.GetExpense(ctx, userID, id)
}

func (s *ExpenseService) Create(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if err := e.Check(s.categories, s.track.now()); err != nil {
		return core.Expense{}, err
	}
	created, err := s.repo.CreateExpense(ctx, userID, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense created", log.FieldComponent, log.ComponentExpense,
		"id", created.ID, "category", created.Category, "amount", created.Amount.String())
	s.track.changed(ctx, userID, core.ActionCreated, core.EntityExpense, created.ID)
	return created, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id string, e core.Expense) (core.Expense, error) {
	if err := e.Check(s.categories, s.track.now()); err != nil {
		return core.Expense{}, err
	}
	updated, err := s.repo.UpdateExpense(ctx, userID, id, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Expense updated", log.FieldComponent, log.ComponentExpense, "id", id)
	s.track.changed(ctx, userID, core.ActionUpdated, core.EntityExpense, id)
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Expense deleted", log.FieldComponent, log.ComponentExpense, "id", id)
	s.track.changed(ctx, userID, core.ActionDeleted, core.EntityExpense, id)
	return nil
}
