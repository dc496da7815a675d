// Package mongo is the MongoDB storage backend. Each record kind lives in its
// own collection and every document carries the owning user's id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

const (
	colUsers    = "users"
	colExpenses = "expenses"
	colIncomes  = "incomes"
	colBudgets  = "budgets"
	colActivity = "activity_logs"

	opTimeout = 5 * time.Second
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, selects database and ensures the indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	slog.Info("MongoDB repository ready", log.FieldComponent, log.ComponentStorage, "database", database)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {{
			Keys:    bson.D{{Key: "email_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		colExpenses: {{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "day", Value: -1}}}},
		colIncomes:  {{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "day", Value: -1}}}},
		colBudgets: {{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "category", Value: 1}, {Key: "month_year", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		colActivity: {{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}}},
	}
	for col, models := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", col, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func newID() string { return uuid.NewString() }

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.ErrNotFound
	}
	return err
}

// dayRange adds an inclusive calendar-day bound on field for each non-zero end.
func dayRange(filter bson.M, field string, start, end time.Time) {
	r := bson.M{}
	if !start.IsZero() {
		r["$gte"] = core.Day(start)
	}
	if !end.IsZero() {
		r["$lte"] = core.Day(end)
	}
	if len(r) > 0 {
		filter[field] = r
	}
}

func findAll[D any, T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts *options.FindOptions, conv func(D) T) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.Name(), err)
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Name(), err)
	}
	out := make([]T, len(docs))
	for i, d := range docs {
		out[i] = conv(d)
	}
	return out, nil
}

func findOne[D any, T any](ctx context.Context, c *mongo.Collection, filter bson.M, conv func(D) T) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc D
	if err := c.FindOne(ctx, filter).Decode(&doc); err != nil {
		var zero T
		return zero, notFound(err)
	}
	return conv(doc), nil
}

func deleteOwned(ctx context.Context, c *mongo.Collection, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.Name(), err)
	}
	if res.DeletedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}
