package store

import "time"

// EpisodeStatus tracks an episode through the processing pipeline.
type EpisodeStatus string

const (
	EpisodePending    EpisodeStatus = "pending"
	EpisodeProcessing EpisodeStatus = "processing"
	EpisodeCompleted  EpisodeStatus = "completed"
	EpisodeFailed     EpisodeStatus = "failed"
)

// ClipStatus tracks a clip from materialization to publication.
type ClipStatus string

const (
	ClipPending   ClipStatus = "pending"
	ClipReady     ClipStatus = "ready"
	ClipScheduled ClipStatus = "scheduled"
	ClipPublished ClipStatus = "published"
	ClipFailed    ClipStatus = "failed"
)

// UploadStatus tracks a scheduled upload through the publish worker.
type UploadStatus string

const (
	UploadScheduled UploadStatus = "scheduled"
	UploadUploading UploadStatus = "uploading"
	UploadUploaded  UploadStatus = "uploaded"
	UploadFailed    UploadStatus = "failed"
)

// ActivityStatus classifies an activity log entry.
type ActivityStatus string

const (
	ActivityPending ActivityStatus = "pending"
	ActivitySuccess ActivityStatus = "success"
	ActivityError   ActivityStatus = "error"
)

// Episode is a source recording registered for processing.
type Episode struct {
	ID          int64
	Filename    string
	SourcePath  string
	Duration    float64
	Status      EpisodeStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// Clip is a rendered short extracted from an episode. An episode owns its
// clips; deleting the episode cascades to them.
type Clip struct {
	ID            int64
	EpisodeID     int64
	StartTime     float64
	EndTime       float64
	Duration      float64
	Score         float64
	Transcript    string
	FilePath      string
	ThumbnailPath string
	Title         string
	Caption       string
	Hashtags      []string
	Status        ClipStatus
	CreatedAt     time.Time
}

// Upload is a scheduled publication of a clip to an external platform.
type Upload struct {
	ID            int64
	ClipID        int64
	Platform      string
	VideoID       string
	URL           string
	ScheduledTime time.Time
	UploadedAt    *time.Time
	Status        UploadStatus
	ErrorMessage  string
	CommentPosted bool
	CreatedAt     time.Time
}

// DueUpload joins a due upload with its owning clip so the publish worker has
// the render, caption, and thumbnail fields in one read.
type DueUpload struct {
	Upload Upload
	Clip   Clip
}

// ActivityEntry is an append-only audit record. Entries are never mutated
// after insertion.
type ActivityEntry struct {
	ID           int64
	Action       string
	Details      string
	Status       ActivityStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// Stats summarizes row counts for the status command.
type Stats struct {
	Episodes         int64
	ClipsReady       int64
	ClipsPublished   int64
	UploadsScheduled int64
	UploadsUploaded  int64
	UploadsFailed    int64
}
