// ABOUTME: Append-only activity log recording actor, action, and timestamp
// ABOUTME: Consumed most-recent-first; entries are never updated or deleted

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// nowRFC3339 formats the current time the way all timestamps are stored.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// AppendActivity appends one entry to the activity log. Generates the ID
// (LOG-<unix-nanos>, roughly chronological) and timestamp when unset.
// Returns ErrConflict on a duplicate log ID.
func (s *SQLiteStore) AppendActivity(ctx context.Context, e *ActivityEntry) error {
	if e.ID == "" {
		e.ID = fmt.Sprintf("LOG-%d", time.Now().UnixNano())
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (log_id, username, activity, ts)
		VALUES (?, ?, ?, ?)
	`, e.ID, e.Username, e.Activity, e.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting activity entry: %w", err)
	}

	s.logger.Debug("appended activity", "id", e.ID, "username", e.Username)
	s.notify(CollectionActivityLog)
	return nil
}

// normalizeActivityLimit applies default (100) and cap (1000) to a limit.
func normalizeActivityLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

// ListActivity returns the most recent entries, newest first.
func (s *SQLiteStore) ListActivity(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT log_id, username, activity, ts
		FROM activity_log
		ORDER BY ts DESC, log_id DESC
		LIMIT ?
	`, normalizeActivityLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying activity log: %w", err)
	}
	defer rows.Close()
	return scanActivityEntries(rows)
}

// ListActivityByUsername returns the most recent entries for one actor,
// newest first, using idx_activity_username.
func (s *SQLiteStore) ListActivityByUsername(ctx context.Context, username string, limit int) ([]*ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT log_id, username, activity, ts
		FROM activity_log
		WHERE username = ?
		ORDER BY ts DESC, log_id DESC
		LIMIT ?
	`, username, normalizeActivityLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying activity log by username: %w", err)
	}
	defer rows.Close()
	return scanActivityEntries(rows)
}

func scanActivityEntries(rows *sql.Rows) ([]*ActivityEntry, error) {
	var entries []*ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var tsStr string
		if err := rows.Scan(&e.ID, &e.Username, &e.Activity, &tsStr); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return nil, fmt.Errorf("parsing activity timestamp: %w", err)
		}
		e.Timestamp = ts
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity entries: %w", err)
	}
	return entries, nil
}

// CountActivity returns the number of activity entries.
func (s *SQLiteStore) CountActivity(ctx context.Context) (int, error) {
	return s.count(ctx, "activity_log")
}
