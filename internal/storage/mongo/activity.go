package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetbuddy/internal/core"
)

type activityDoc struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"user_id"`
	Action     string    `bson:"action"`
	EntityType string    `bson:"entity_type"`
	EntityID   string    `bson:"entity_id"`
	Timestamp  time.Time `bson:"timestamp"`
}

func (d activityDoc) toCore() core.ActivityEvent {
	return core.ActivityEvent{
		ID: d.ID, UserID: d.UserID, Action: d.Action,
		EntityType: d.EntityType, EntityID: d.EntityID, Timestamp: d.Timestamp.UTC(),
	}
}

// SaveActivity ignores an event whose id is already stored, so broker
// redeliveries are harmless.
func (s *Store) SaveActivity(ctx context.Context, ev core.ActivityEvent) error {
	doc := activityDoc{
		ID: ev.ID, UserID: ev.UserID, Action: ev.Action,
		EntityType: ev.EntityType, EntityID: ev.EntityID, Timestamp: ev.Timestamp.UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := s.col(colActivity).InsertOne(ctx, doc)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *Store) ListActivity(ctx context.Context, userID string, f core.ActivityFilter) ([]core.ActivityEvent, error) {
	filter := bson.M{"user_id": userID}
	if f.EntityType != "" {
		filter["entity_type"] = f.EntityType
	}
	ts := bson.M{}
	if !f.From.IsZero() {
		ts["$gte"] = f.From.UTC()
	}
	if !f.To.IsZero() {
		ts["$lte"] = f.To.UTC()
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	return findAll(ctx, s.col(colActivity), filter, opts, activityDoc.toCore)
}
