package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const activityColumns = "id, action, details, status, error_message, created_at"

// LogActivity appends an audit record. Entries are write-only from the
// pipeline's perspective.
func (s *Store) LogActivity(ctx context.Context, action, details string, status ActivityStatus, errorMessage string) error {
	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO activity_log (action, details, status, error_message, created_at) VALUES (?, ?, ?, ?, ?)",
		action,
		nullableString(details),
		status,
		nullableString(errorMessage),
		formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

// ListActivity returns the most recent entries, newest first.
func (s *Store) ListActivity(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		"SELECT "+activityColumns+" FROM activity_log ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var entries []*ActivityEntry
	for rows.Next() {
		var (
			id           int64
			action       string
			details      sql.NullString
			statusStr    string
			errorMessage sql.NullString
			createdRaw   sql.NullString
		)
		if err := rows.Scan(&id, &action, &details, &statusStr, &errorMessage, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entry := &ActivityEntry{
			ID:           id,
			Action:       action,
			Details:      details.String,
			Status:       ActivityStatus(statusStr),
			ErrorMessage: errorMessage.String,
		}
		if created, err := parseTimeString(createdRaw.String); err == nil {
			entry.CreatedAt = created
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return entries, nil
}
