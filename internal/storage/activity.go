package storage

import (
	"context"
	"fmt"
	"time"
)

// Activity is one recorded entity change.
type Activity struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entityId"`
	Version    uint64    `json:"version"`
	OccurredAt time.Time `json:"occurredAt"`
}

// AppendActivity records a change and returns its row id.
func (r *SQLiteRepository) AppendActivity(ctx context.Context, a Activity) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (kind, action, entity_id, version, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.Kind, a.Action, a.EntityID, int64(a.Version), a.OccurredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("append activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("activity id: %w", err)
	}
	r.logger.DebugContext(ctx, "Activity recorded", "id", id, "kind", a.Kind, "action", a.Action, "entity_id", a.EntityID)
	return id, nil
}

// ListActivity returns the most recent entries first. limit <= 0 means 50.
func (r *SQLiteRepository) ListActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, action, entity_id, version, occurred_at
		FROM activity_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	out := []Activity{}
	for rows.Next() {
		var (
			a       Activity
			version int64
			at      string
		)
		if err := rows.Scan(&a.ID, &a.Kind, &a.Action, &a.EntityID, &version, &at); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.Version = uint64(version)
		if a.OccurredAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("activity %d time: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
