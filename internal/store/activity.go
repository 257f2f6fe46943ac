package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const activityColumns = "id, entity_type, entity_id, action, actor, details_json, created_at"

// RecordActivity appends one audit row. Rows are never updated; only
// retention pruning removes them.
func (s *Store) RecordActivity(ctx context.Context, activity *Activity) error {
	if activity == nil {
		return errors.New("activity is nil")
	}
	activity.CreatedAt = time.Now().UTC()

	details, err := marshalJSON(activity.Details)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO activity (entity_type, entity_id, action, actor, details_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		activity.EntityType,
		nullableString(activity.EntityID),
		activity.Action,
		nullableString(activity.Actor),
		details,
		activity.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		activity.ID = id
	}
	return nil
}

// RecentActivity returns the latest audit rows, newest first, optionally
// filtered by entity type.
func (s *Store) RecentActivity(ctx context.Context, entityType string, limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if entityType == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+activityColumns+` FROM activity ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+activityColumns+` FROM activity WHERE entity_type = ? ORDER BY id DESC LIMIT ?`, entityType, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer rows.Close()

	var items []*Activity
	for rows.Next() {
		item, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PruneActivity removes audit rows older than the cutoff and returns the
// count removed. Retention is driven by the logging config.
func (s *Store) PruneActivity(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM activity WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	return res.RowsAffected()
}

func scanActivity(scanner interface{ Scan(dest ...any) error }) (*Activity, error) {
	var (
		id         int64
		entityType string
		entityID   sql.NullString
		action     string
		actor      sql.NullString
		detailsRaw sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(&id, &entityType, &entityID, &action, &actor, &detailsRaw, &createdRaw); err != nil {
		return nil, err
	}

	item := &Activity{
		ID:         id,
		EntityType: entityType,
		EntityID:   entityID.String,
		Action:     action,
		Actor:      actor.String,
	}
	if err := unmarshalInto(detailsRaw, &item.Details); err != nil {
		return nil, fmt.Errorf("decode activity details: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	return item, nil
}
