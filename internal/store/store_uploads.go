package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const uploadColumns = "id, clip_id, platform, video_id, url, scheduled_time, uploaded_at, status, error_message, comment_posted, created_at"

// ScheduleUpload inserts a scheduled upload for a clip. A past scheduledTime
// is allowed and simply makes the upload immediately due.
func (s *Store) ScheduleUpload(ctx context.Context, clipID int64, platform string, scheduledTime time.Time) (*Upload, error) {
	timestamp := formatTime(time.Now())

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO uploads (clip_id, platform, scheduled_time, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		clipID,
		platform,
		formatTime(scheduledTime),
		UploadScheduled,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert upload: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetUpload(ctx, id)
}

// GetUpload fetches an upload by id.
func (s *Store) GetUpload(ctx context.Context, id int64) (*Upload, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+uploadColumns+" FROM uploads WHERE id = ?", id)
	upload, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get upload: %w", err)
	}
	return upload, nil
}

// ListUploads returns all uploads ordered by scheduled time.
func (s *Store) ListUploads(ctx context.Context) ([]*Upload, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+uploadColumns+" FROM uploads ORDER BY datetime(scheduled_time) ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*Upload
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		uploads = append(uploads, upload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return uploads, nil
}

// NextDue returns the earliest scheduled upload whose time has passed, joined
// with its owning clip, or nil when nothing is due. The read never mutates
// state: calling it twice without an intervening status change returns the
// same upload.
func (s *Store) NextDue(ctx context.Context, now time.Time) (*DueUpload, error) {
	row := s.db.QueryRowContext(
		ctx,
		"SELECT "+dueColumns+` FROM uploads u
            JOIN clips c ON c.id = u.clip_id
            WHERE u.status = ? AND datetime(u.scheduled_time) <= datetime(?)
            ORDER BY datetime(u.scheduled_time) ASC, u.id ASC
            LIMIT 1`,
		UploadScheduled,
		formatTime(now),
	)

	due, err := scanDueUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next due upload: %w", err)
	}
	return due, nil
}

// MarkUploadInProgress transitions a scheduled upload to uploading.
func (s *Store) MarkUploadInProgress(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE uploads SET status = ? WHERE id = ?", UploadUploading, id); err != nil {
		return fmt.Errorf("mark upload in progress: %w", err)
	}
	return nil
}

// MarkUploaded records a successful publish.
func (s *Store) MarkUploaded(ctx context.Context, id int64, videoID, url string) error {
	if _, err := s.db.ExecContext(
		ctx,
		"UPDATE uploads SET status = ?, video_id = ?, url = ?, uploaded_at = ?, error_message = NULL WHERE id = ?",
		UploadUploaded, videoID, url, formatTime(time.Now()), id,
	); err != nil {
		return fmt.Errorf("mark uploaded: %w", err)
	}
	return nil
}

// MarkUploadFailed records a publish failure.
func (s *Store) MarkUploadFailed(ctx context.Context, id int64, message string) error {
	if _, err := s.db.ExecContext(
		ctx,
		"UPDATE uploads SET status = ?, error_message = ? WHERE id = ?",
		UploadFailed, nullableString(message), id,
	); err != nil {
		return fmt.Errorf("mark upload failed: %w", err)
	}
	return nil
}

// MarkCommentPosted records that the follow-up comment landed.
func (s *Store) MarkCommentPosted(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE uploads SET comment_posted = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark comment posted: %w", err)
	}
	return nil
}

const dueColumns = "u.id, u.clip_id, u.platform, u.video_id, u.url, u.scheduled_time, u.uploaded_at, u.status, u.error_message, u.comment_posted, u.created_at, " +
	"c.id, c.episode_id, c.start_time, c.end_time, c.duration, c.score, c.transcript, c.file_path, c.thumbnail_path, c.title, c.caption, c.hashtags_json, c.status, c.created_at"

func scanUpload(scanner interface{ Scan(dest ...any) error }) (*Upload, error) {
	var (
		id            int64
		clipID        int64
		platform      string
		videoID       sql.NullString
		url           sql.NullString
		scheduledRaw  sql.NullString
		uploadedRaw   sql.NullString
		statusStr     string
		errorMessage  sql.NullString
		commentPosted sql.NullInt64
		createdRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&clipID,
		&platform,
		&videoID,
		&url,
		&scheduledRaw,
		&uploadedRaw,
		&statusStr,
		&errorMessage,
		&commentPosted,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	upload := &Upload{
		ID:           id,
		ClipID:       clipID,
		Platform:     platform,
		VideoID:      videoID.String,
		URL:          url.String,
		Status:       UploadStatus(statusStr),
		ErrorMessage: errorMessage.String,
	}
	if commentPosted.Valid {
		upload.CommentPosted = commentPosted.Int64 != 0
	}
	if scheduled, err := parseTimeString(scheduledRaw.String); err == nil {
		upload.ScheduledTime = scheduled
	}
	if uploadedRaw.Valid {
		if uploaded, err := parseTimeString(uploadedRaw.String); err == nil {
			upload.UploadedAt = &uploaded
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		upload.CreatedAt = created
	}
	return upload, nil
}

func scanDueUpload(scanner interface{ Scan(dest ...any) error }) (*DueUpload, error) {
	var (
		uploadID      int64
		clipRef       int64
		platform      string
		videoID       sql.NullString
		url           sql.NullString
		scheduledRaw  sql.NullString
		uploadedRaw   sql.NullString
		uploadStatus  string
		errorMessage  sql.NullString
		commentPosted sql.NullInt64
		uploadCreated sql.NullString

		clipID        int64
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
		clipStatus    string
		clipCreated   sql.NullString
	)

	if err := scanner.Scan(
		&uploadID,
		&clipRef,
		&platform,
		&videoID,
		&url,
		&scheduledRaw,
		&uploadedRaw,
		&uploadStatus,
		&errorMessage,
		&commentPosted,
		&uploadCreated,
		&clipID,
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
		&clipStatus,
		&clipCreated,
	); err != nil {
		return nil, err
	}

	due := &DueUpload{
		Upload: Upload{
			ID:           uploadID,
			ClipID:       clipRef,
			Platform:     platform,
			VideoID:      videoID.String,
			URL:          url.String,
			Status:       UploadStatus(uploadStatus),
			ErrorMessage: errorMessage.String,
		},
		Clip: Clip{
			ID:            clipID,
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
			Status:        ClipStatus(clipStatus),
		},
	}
	if commentPosted.Valid {
		due.Upload.CommentPosted = commentPosted.Int64 != 0
	}
	if scheduled, err := parseTimeString(scheduledRaw.String); err == nil {
		due.Upload.ScheduledTime = scheduled
	}
	if uploadedRaw.Valid {
		if uploaded, err := parseTimeString(uploadedRaw.String); err == nil {
			due.Upload.UploadedAt = &uploaded
		}
	}
	if created, err := parseTimeString(uploadCreated.String); err == nil {
		due.Upload.CreatedAt = created
	}
	if created, err := parseTimeString(clipCreated.String); err == nil {
		due.Clip.CreatedAt = created
	}
	return due, nil
}
