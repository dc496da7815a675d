package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

// ActivityPublisher ships activity events off the request path.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, ev core.ActivityEvent) error
}

// DirectPublisher writes events straight to the repository, for deployments
// without a message broker.
type DirectPublisher struct {
	Repo ActivityRepository
}

func (d DirectPublisher) PublishActivity(ctx context.Context, ev core.ActivityEvent) error {
	return d.Repo.SaveActivity(ctx, ev)
}

// ActivityService records and lists activity events.
type ActivityService struct {
	repo ActivityRepository
}

func NewActivityService(repo ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record persists one event, filling in a missing id or timestamp.
func (s *ActivityService) Record(ctx context.Context, ev core.ActivityEvent) error {
	if ev.UserID == "" || ev.Action == "" || ev.EntityType == "" {
		return fmt.Errorf("activity event is incomplete: %+v", ev)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if err := s.repo.SaveActivity(ctx, ev); err != nil {
		return fmt.Errorf("save activity: %w", err)
	}
	slog.DebugContext(ctx, "Activity recorded", log.FieldComponent, log.ComponentActivity,
		"user_id", ev.UserID, "action", ev.Action, "entity_type", ev.EntityType)
	return nil
}

func (s *ActivityService) List(ctx context.Context, userID string, f core.ActivityFilter) ([]core.ActivityEvent, error) {
	return s.repo.ListActivity(ctx, userID, f)
}

// tracker runs the side effects shared by every write: the user's cached
// summaries are dropped and an activity event is published. Publish failures
// are logged and never fail the write.
type tracker struct {
	pub       ActivityPublisher
	analytics *AnalyticsService
	now       func() time.Time
}

func (t tracker) changed(ctx context.Context, userID, action, entity, entityID string) {
	if t.analytics != nil {
		t.analytics.Invalidate(userID)
	}
	if t.pub == nil {
		slog.WarnContext(ctx, "Activity publisher not available, skipping event", log.FieldComponent, log.ComponentActivity)
		return
	}
	ev := core.ActivityEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		Action:     action,
		EntityType: entity,
		EntityID:   entityID,
		Timestamp:  t.now().UTC(),
	}
	if err := t.pub.PublishActivity(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish activity event", log.FieldComponent, log.ComponentActivity,
			"action", action, "entity_type", entity, "entity_id", entityID, "error", err)
	}
}
