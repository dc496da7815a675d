package mongo

import (
	"context"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetbuddy/internal/core"
)

type budgetDoc struct {
	ID          string               `bson:"_id"`
	UserID      string               `bson:"user_id"`
	Category    string               `bson:"category"`
	LimitAmount primitive.Decimal128 `bson:"limit_amount"`
	MonthYear   string               `bson:"month_year"`
}

func (d budgetDoc) toCore() core.Budget {
	return core.Budget{
		ID:          d.ID,
		Category:    d.Category,
		LimitAmount: fromDecimal128(d.LimitAmount),
		MonthYear:   core.MonthYear(d.MonthYear),
	}
}

var byMonthAndCategory = options.Find().SetSort(bson.D{{Key: "month_year", Value: 1}, {Key: "category", Value: 1}})

func (s *Store) ListBudgets(ctx context.Context, userID string, month core.MonthYear) ([]core.Budget, error) {
	filter := bson.M{"user_id": userID}
	if month != "" {
		filter["month_year"] = string(month)
	}
	return findAll(ctx, s.col(colBudgets), filter, byMonthAndCategory, budgetDoc.toCore)
}

func (s *Store) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	return findOne(ctx, s.col(colBudgets), bson.M{"_id": id, "user_id": userID}, budgetDoc.toCore)
}

// insertBudgets writes the whole batch or nothing. Standalone servers have
// no multi-document transactions, so a failed batch removes the rows it got in.
func (s *Store) insertBudgets(ctx context.Context, userID string, budgets []core.Budget) ([]core.Budget, error) {
	docs := make([]any, len(budgets))
	ids := make([]string, len(budgets))
	out := make([]core.Budget, len(budgets))
	for i, b := range budgets {
		limit, err := toDecimal128(b.LimitAmount)
		if err != nil {
			return nil, err
		}
		b.ID = newID()
		ids[i] = b.ID
		out[i] = b
		docs[i] = budgetDoc{ID: b.ID, UserID: userID, Category: b.Category, LimitAmount: limit, MonthYear: string(b.MonthYear)}
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.col(colBudgets).InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return out, nil
	}
	if _, derr := s.col(colBudgets).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); derr != nil {
		return nil, fmt.Errorf("roll back budget batch: %w (after %v)", derr, err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, core.Conflictf("budgets for %s already exist", budgets[0].MonthYear)
	}
	return nil, fmt.Errorf("insert budgets: %w", err)
}

func (s *Store) CreateBudgets(ctx context.Context, userID string, budgets []core.Budget) ([]core.Budget, error) {
	if len(budgets) == 0 {
		return []core.Budget{}, nil
	}
	return s.insertBudgets(ctx, userID, budgets)
}

func (s *Store) CopyBudgets(ctx context.Context, userID string, from, to core.MonthYear) ([]core.Budget, error) {
	existing, err := s.ListBudgets(ctx, userID, to)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, core.Conflictf("budgets for %s already exist", to)
	}
	src, err := s.ListBudgets(ctx, userID, from)
	if err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, core.Conflictf("no budgets for %s", from)
	}
	for i := range src {
		src[i].MonthYear = to
	}
	return s.insertBudgets(ctx, userID, src)
}

func (s *Store) UpdateBudgetLimit(ctx context.Context, userID, id string, b core.Budget) (core.Budget, error) {
	limit, err := toDecimal128(b.LimitAmount)
	if err != nil {
		return core.Budget{}, err
	}
	if err := s.updateOwned(ctx, colBudgets, userID, id, bson.M{"limit_amount": limit}); err != nil {
		return core.Budget{}, err
	}
	return s.GetBudget(ctx, userID, id)
}

func (s *Store) BudgetMonths(ctx context.Context, userID string) ([]core.MonthYear, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	values, err := s.col(colBudgets).Distinct(ctx, "month_year", bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("distinct budget months: %w", err)
	}
	months := make([]core.MonthYear, 0, len(values))
	for _, v := range values {
		if m, ok := v.(string); ok {
			months = append(months, core.MonthYear(m))
		}
	}
	slices.Sort(months)
	slices.Reverse(months)
	return months, nil
}
