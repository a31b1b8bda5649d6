package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const episodeColumns = "id, filename, source_path, duration, status, created_at, processed_at"

// NewEpisode inserts a pending episode for the given source file.
func (s *Store) NewEpisode(ctx context.Context, filename, sourcePath string) (*Episode, error) {
	timestamp := formatTime(time.Now())

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO episodes (filename, source_path, status, created_at) VALUES (?, ?, ?, ?)`,
		filename,
		sourcePath,
		EpisodePending,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert episode: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetEpisode(ctx, id)
}

// GetEpisode fetches an episode by id.
func (s *Store) GetEpisode(ctx context.Context, id int64) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+episodeColumns+" FROM episodes WHERE id = ?", id)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("episode %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return episode, nil
}

// ListEpisodes returns all episodes, newest first.
func (s *Store) ListEpisodes(ctx context.Context) ([]*Episode, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+episodeColumns+" FROM episodes ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, episode)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}
	return episodes, nil
}

// SetEpisodeDuration persists the resolved media duration in seconds.
func (s *Store) SetEpisodeDuration(ctx context.Context, id int64, duration float64) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE episodes SET duration = ? WHERE id = ?", duration, id); err != nil {
		return fmt.Errorf("set episode duration: %w", err)
	}
	return nil
}

// SetEpisodeStatus transitions an episode. Reaching the completed status also
// stamps processed_at.
func (s *Store) SetEpisodeStatus(ctx context.Context, id int64, status EpisodeStatus) error {
	var processedAt any
	if status == EpisodeCompleted {
		processedAt = formatTime(time.Now())
	}
	if _, err := s.db.ExecContext(
		ctx,
		"UPDATE episodes SET status = ?, processed_at = COALESCE(?, processed_at) WHERE id = ?",
		status, processedAt, id,
	); err != nil {
		return fmt.Errorf("set episode status: %w", err)
	}
	return nil
}

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*Episode, error) {
	var (
		id           int64
		filename     string
		sourcePath   string
		duration     sql.NullFloat64
		statusStr    string
		createdRaw   sql.NullString
		processedRaw sql.NullString
	)

	if err := scanner.Scan(&id, &filename, &sourcePath, &duration, &statusStr, &createdRaw, &processedRaw); err != nil {
		return nil, err
	}

	episode := &Episode{
		ID:         id,
		Filename:   filename,
		SourcePath: sourcePath,
		Duration:   duration.Float64,
		Status:     EpisodeStatus(statusStr),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		episode.CreatedAt = created
	}
	if processedRaw.Valid {
		if processed, err := parseTimeString(processedRaw.String); err == nil {
			episode.ProcessedAt = &processed
		}
	}
	return episode, nil
}
