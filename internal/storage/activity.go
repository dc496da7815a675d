package storage

import (
	"context"
	"fmt"
	"strings"

	"budgetbuddy/internal/core"
)

// SaveActivity stores one event. Redelivered events with a known id are ignored.
func (r *SQLiteRepository) SaveActivity(ctx context.Context, ev core.ActivityEvent) error {
	if ev.ID == "" {
		ev.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, user_id, action, entity_type, entity_id, timestamp) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		ev.ID, ev.UserID, ev.Action, ev.EntityType, ev.EntityID, formatTime(ev.Timestamp))
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListActivity returns the user's events, newest first.
func (r *SQLiteRepository) ListActivity(ctx context.Context, userID string, f core.ActivityFilter) ([]core.ActivityEvent, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.EntityType != "" {
		where = append(where, "entity_type = ?")
		args = append(args, f.EntityType)
	}
	if !f.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, formatTime(f.To))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, action, entity_type, entity_id, timestamp FROM activity_logs WHERE `+
			strings.Join(where, " AND ")+` ORDER BY timestamp DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	out := []core.ActivityEvent{}
	for rows.Next() {
		var ev core.ActivityEvent
		var ts string
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Action, &ev.EntityType, &ev.EntityID, &ts); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		ev.Timestamp, _ = parseTime(ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}
