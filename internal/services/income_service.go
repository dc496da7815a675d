package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/records"
)

type IncomeService struct {
	repo    IncomeRepository
	sources core.Catalog
	track   tracker
}

func (s *IncomeService) List(ctx context.Context, userID string, f records.IncomeFilter) ([]core.Income, error) {
	out, err := s.repo.ListIncome(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	return out, nil
}

func (s *IncomeService) Get(ctx context.Context, userID, id string) (core.Income, error) {
	return s.repo.GetIncome(ctx, userID, id)
}

func (s *IncomeService) Create(ctx context.Context, userID string, i core.Income) (core.Income, error) {
	if err := i.Check(s.sources, s.track.now()); err != nil {
		return core.Income{}, err
	}
	created, err := s.repo.CreateIncome(ctx, userID, i)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	slog.InfoContext(ctx, "Income created", log.FieldComponent, log.ComponentIncome,
		"id", created.ID, "source", created.Source, "amount", created.Amount.String())
	s.track.changed(ctx, userID, core.ActionCreated, core.EntityIncome, created.ID)
	return created, nil
}

func (s *IncomeService) Update(ctx context.Context, userID, id string, i core.Income) (core.Income, error) {
	if err := i.Check(s.sources, s.track.now()); err != nil {
		return core.Income{}, err
	}
	updated, err := s.repo.UpdateIncome(ctx, userID, id, i)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Income updated", log.FieldComponent, log.ComponentIncome, "id", id)
	s.track.changed(ctx, userID, core.ActionUpdated, core.EntityIncome, id)
	return updated, nil
}

func (s *IncomeService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteIncome(ctx, userID, id); err != nil {
		return fmt.Errorf("delete income %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Income deleted", log.FieldComponent, log.ComponentIncome, "id", id)
	s.track.changed(ctx, userID, core.ActionDeleted, core.EntityIncome, id)
	return nil
}
