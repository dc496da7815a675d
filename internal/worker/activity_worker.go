// Package worker persists activity events published by the API.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

// Recorder stores one activity event.
type Recorder interface {
	Record(ctx context.Context, ev core.ActivityEvent) error
}

// Consumer delivers events to a handler until its context ends.
type Consumer interface {
	ConsumeActivity(ctx context.Context, handler func(context.Context, core.ActivityEvent) error) error
}

// ActivityWorker drains the activity queue into the repository.
type ActivityWorker struct {
	recorder  Recorder
	processed atomic.Int64
	failed    atomic.Int64
}

func NewActivityWorker(recorder Recorder) *ActivityWorker {
	return &ActivityWorker{recorder: recorder}
}

// HandleActivity stores a single event. A returned error makes the consumer
// requeue the message.
func (w *ActivityWorker) HandleActivity(ctx context.Context, ev core.ActivityEvent) error {
	fields := log.NewFields().
		WithComponent(log.ComponentWorker).
		WithUser(ev.UserID).
		WithEntity(ev.EntityType, ev.EntityID).
		WithOperation(ev.Action)
	slog.DebugContext(ctx, "Processing activity event", fields.ToSlice()...)

	if err := w.recorder.Record(ctx, ev); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("record activity %s: %w", ev.ID, err)
	}
	w.processed.Add(1)
	return nil
}

// Run blocks until ctx is cancelled or the consumer fails for good.
func (w *ActivityWorker) Run(ctx context.Context, c Consumer) error {
	slog.InfoContext(ctx, "Activity worker started", log.FieldComponent, log.ComponentWorker)
	err := c.ConsumeActivity(ctx, w.HandleActivity)
	slog.InfoContext(ctx, "Activity worker stopped",
		log.FieldComponent, log.ComponentWorker,
		"processed", w.processed.Load(),
		"failed", w.failed.Load())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stats reports how many events were stored and how many failed.
func (w *ActivityWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
