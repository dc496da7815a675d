package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

type expenseDoc struct {
	ID          string               `bson:"_id"`
	UserID      string               `bson:"user_id"`
	Description string               `bson:"description"`
	Amount      primitive.Decimal128 `bson:"amount"`
	Category    string               `bson:"category"`
	Date        time.Time            `bson:"date"`
	Day         string               `bson:"day"`
	CreatedAt   time.Time            `bson:"created_at"`
}

func (d expenseDoc) toCore() core.Expense {
	return core.Expense{
		ID:          d.ID,
		Description: d.Description,
		Amount:      fromDecimal128(d.Amount),
		Category:    d.Category,
		Date:        d.Date.UTC(),
	}
}

type incomeDoc struct {
	ID        string               `bson:"_id"`
	UserID    string               `bson:"user_id"`
	Source    string               `bson:"source"`
	Amount    primitive.Decimal128 `bson:"amount"`
	Date      time.Time            `bson:"date"`
	Day       string               `bson:"day"`
	CreatedAt time.Time            `bson:"created_at"`
}

func (d incomeDoc) toCore() core.Income {
	return core.Income{
		ID:     d.ID,
		Source: d.Source,
		Amount: fromDecimal128(d.Amount),
		Date:   d.Date.UTC(),
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})

func (s *Store) ListExpenses(ctx context.Context, userID string, f records.ExpenseFilter) ([]core.Expense, error) {
	filter := bson.M{"user_id": userID}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	dayRange(filter, "day", f.Start, f.End)
	return findAll(ctx, s.col(colExpenses), filter, newestFirst, expenseDoc.toCore)
}

func (s *Store) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	return findOne(ctx, s.col(colExpenses), bson.M{"_id": id, "user_id": userID}, expenseDoc.toCore)
}

func (s *Store) CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = newID()
	doc := expenseDoc{
		ID: e.ID, UserID: userID, Description: e.Description, Amount: amount,
		Category: e.Category, Date: e.Date.UTC(), Day: core.Day(e.Date), CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := s.col(colExpenses).InsertOne(ctx, doc); err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, userID, id string, e core.Expense) (core.Expense, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	set := bson.M{
		"description": e.Description, "amount": amount, "category": e.Category,
		"date": e.Date.UTC(), "day": core.Day(e.Date),
	}
	if err := s.updateOwned(ctx, colExpenses, userID, id, set); err != nil {
		return core.Expense{}, err
	}
	e.ID = id
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.col(colExpenses), userID, id)
}

func (s *Store) ListIncome(ctx context.Context, userID string, f records.IncomeFilter) ([]core.Income, error) {
	filter := bson.M{"user_id": userID}
	dayRange(filter, "day", f.Start, f.End)
	return findAll(ctx, s.col(colIncomes), filter, newestFirst, incomeDoc.toCore)
}

func (s *Store) GetIncome(ctx context.Context, userID, id string) (core.Income, error) {
	return findOne(ctx, s.col(colIncomes), bson.M{"_id": id, "user_id": userID}, incomeDoc.toCore)
}

func (s *Store) CreateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	amount, err := toDecimal128(in.Amount)
	if err != nil {
		return core.Income{}, err
	}
	in.ID = newID()
	doc := incomeDoc{
		ID: in.ID, UserID: userID, Source: in.Source, Amount: amount,
		Date: in.Date.UTC(), Day: core.Day(in.Date), CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := s.col(colIncomes).InsertOne(ctx, doc); err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	return in, nil
}

func (s *Store) UpdateIncome(ctx context.Context, userID, id string, in core.Income) (core.Income, error) {
	amount, err := toDecimal128(in.Amount)
	if err != nil {
		return core.Income{}, err
	}
	set := bson.M{"source": in.Source, "amount": amount, "date": in.Date.UTC(), "day": core.Day(in.Date)}
	if err := s.updateOwned(ctx, colIncomes, userID, id, set); err != nil {
		return core.Income{}, err
	}
	in.ID = id
	return in, nil
}

func (s *Store) DeleteIncome(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.col(colIncomes), userID, id)
}

func (s *Store) updateOwned(ctx context.Context, col, userID, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.col(col).UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s: %w", col, err)
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}
