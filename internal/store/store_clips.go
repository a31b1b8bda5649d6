package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const clipColumns = "id, episode_id, start_time, end_time, duration, score, transcript, file_path, thumbnail_path, title, caption, hashtags_json, status, created_at"

// InsertClip persists a fully materialized clip and returns the stored row.
func (s *Store) InsertClip(ctx context.Context, clip *Clip) (*Clip, error) {
	status := clip.Status
	if status == "" {
		status = ClipReady
	}
	timestamp := formatTime(time.Now())

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO clips (
            episode_id, start_time, end_time, duration, score, transcript,
            file_path, thumbnail_path, title, caption, hashtags_json, status, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		clip.EpisodeID,
		clip.StartTime,
		clip.EndTime,
		clip.Duration,
		clip.Score,
		nullableString(clip.Transcript),
		nullableString(clip.FilePath),
		nullableString(clip.ThumbnailPath),
		nullableString(clip.Title),
		nullableString(clip.Caption),
		encodeHashtags(clip.Hashtags),
		status,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert clip: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetClip(ctx, id)
}

// GetClip fetches a clip by id.
func (s *Store) GetClip(ctx context.Context, id int64) (*Clip, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+clipColumns+" FROM clips WHERE id = ?", id)
	clip, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clip %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get clip: %w", err)
	}
	return clip, nil
}

// ListClips returns all clips, newest first.
func (s *Store) ListClips(ctx context.Context) ([]*Clip, error) {
	return s.queryClips(ctx, "SELECT "+clipColumns+" FROM clips ORDER BY created_at DESC, id DESC")
}

// ListClipsByEpisode returns an episode's clips in insertion order.
func (s *Store) ListClipsByEpisode(ctx context.Context, episodeID int64) ([]*Clip, error) {
	return s.queryClips(ctx, "SELECT "+clipColumns+" FROM clips WHERE episode_id = ? ORDER BY id ASC", episodeID)
}

// SetClipStatus transitions a clip.
func (s *Store) SetClipStatus(ctx context.Context, id int64, status ClipStatus) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE clips SET status = ? WHERE id = ?", status, id); err != nil {
		return fmt.Errorf("set clip status: %w", err)
	}
	return nil
}

func (s *Store) queryClips(ctx context.Context, query string, args ...any) ([]*Clip, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var clips []*Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clips = append(clips, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clips: %w", err)
	}
	return clips, nil
}

func scanClip(scanner interface{ Scan(dest ...any) error }) (*Clip, error) {
	var (
		id            int64
		episodeID     int64
		startTime     float64
		endTime       float64
		duration      float64
		score         float64
		transcript    sql.NullString
		filePath      sql.NullString
		thumbnailPath sql.NullString
		title         sql.NullString
		caption       sql.NullString
		hashtagsRaw   sql.NullString
		statusStr     string
		createdRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&episodeID,
		&startTime,
		&endTime,
		&duration,
		&score,
		&transcript,
		&filePath,
		&thumbnailPath,
		&title,
		&caption,
		&hashtagsRaw,
		&statusStr,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	clip := &Clip{
		ID:            id,
		EpisodeID:     episodeID,
		StartTime:     startTime,
		EndTime:       endTime,
		Duration:      duration,
		Score:         score,
		Transcript:    transcript.String,
		FilePath:      filePath.String,
		ThumbnailPath: thumbnailPath.String,
		Title:         title.String,
		Caption:       caption.String,
		Hashtags:      decodeHashtags(hashtagsRaw.String),
		Status:        ClipStatus(statusStr),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		clip.CreatedAt = created
	}
	return clip, nil
}
