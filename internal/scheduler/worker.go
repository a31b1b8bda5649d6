package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services/captioner"
	"clipforge/internal/services/youtube"
	"clipforge/internal/store"
)

// Publisher is the platform side of the publish flow. Thumbnail and comment
// calls are best-effort for the worker; only Upload failures fail the tick.
type Publisher interface {
	Upload(ctx context.Context, videoPath string, options youtube.UploadOptions) (string, error)
	SetThumbnail(ctx context.Context, videoID, thumbnailPath string) error
	PostComment(ctx context.Context, videoID, text string) (string, error)
	VideoURL(videoID string) string
}

// Worker drains the due-queue on a fixed interval, publishing at most one
// upload per tick. A single in-flight guard skips a tick outright if the
// previous one is still running, so publish calls are never concurrent.
type Worker struct {
	cfg       *config.Config
	store     *store.Store
	publisher Publisher
	logger    *slog.Logger

	interval time.Duration
	lock     *flock.Flock
	rng      *rand.Rand
	now      func() time.Time
	inFlight atomic.Bool
}

// WorkerOption customizes a Worker.
type WorkerOption func(*Worker)

// WithClock overrides the worker clock, primarily for tests.
func WithClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithRand overrides the comment picker's randomness source.
func WithRand(rng *rand.Rand) WorkerOption {
	return func(w *Worker) {
		if rng != nil {
			w.rng = rng
		}
	}
}

// NewWorker creates the publish worker.
func NewWorker(cfg *config.Config, st *store.Store, publisher Publisher, logger *slog.Logger, opts ...WorkerOption) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	w := &Worker{
		cfg:       cfg,
		store:     st,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		lock:      flock.New(filepath.Join(cfg.Paths.LogDir, "clipforge-worker.lock")),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run acquires the single-instance lock and polls until the context is
// canceled. Tick failures are logged and never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	locked, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire worker lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another worker instance holds %s", w.lock.Path())
	}
	defer func() { _ = w.lock.Unlock() }()

	w.logger.Info("upload worker started", logging.Duration("poll_interval", w.interval))

	// Drain anything already due before the first tick fires.
	if _, err := w.Tick(ctx); err != nil {
		w.logger.Error("upload tick failed", logging.Error(err))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("upload worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Tick(ctx); err != nil {
				w.logger.Error("upload tick failed", logging.Error(err))
			}
		}
	}
}

// Tick processes at most one due upload. It returns false without doing any
// work when a previous tick is still in flight or nothing is due.
func (w *Worker) Tick(ctx context.Context) (bool, error) {
	if !w.inFlight.CompareAndSwap(false, true) {
		w.logger.Warn("skipping tick, previous tick still running")
		return false, nil
	}
	defer w.inFlight.Store(false)

	due, err := w.store.NextDue(ctx, w.now())
	if err != nil {
		return false, err
	}
	if due == nil {
		return false, nil
	}
	return true, w.publish(ctx, due)
}

func (w *Worker) publish(ctx context.Context, due *store.DueUpload) error {
	logger := w.logger.With(
		logging.Int64("upload_id", due.Upload.ID),
		logging.Int64("clip_id", due.Clip.ID))
	logger.Info("publishing clip", logging.String("platform", due.Upload.Platform))

	if err := w.store.MarkUploadInProgress(ctx, due.Upload.ID); err != nil {
		return err
	}

	description := captioner.FormatDescription(captioner.Caption{
		Title:       due.Clip.Title,
		Caption:     due.Clip.Caption,
		Hashtags:    due.Clip.Hashtags,
		Description: due.Clip.Transcript,
	}, "", due.Clip.StartTime, due.Clip.EndTime)

	videoID, err := w.publisher.Upload(ctx, due.Clip.FilePath, youtube.UploadOptions{
		Title:       due.Clip.Title,
		Description: description,
		Tags:        due.Clip.Hashtags,
	})
	if err != nil {
		if markErr := w.store.MarkUploadFailed(ctx, due.Upload.ID, err.Error()); markErr != nil {
			logger.Error("recording upload failure failed", logging.Error(markErr))
		}
		_ = w.store.LogActivity(ctx, "upload_error",
			fmt.Sprintf("upload=%d clip=%d", due.Upload.ID, due.Clip.ID), store.ActivityError, err.Error())
		return err
	}

	// Thumbnail attachment is best-effort and never rolls back the upload.
	if due.Clip.ThumbnailPath != "" {
		if err := w.publisher.SetThumbnail(ctx, videoID, due.Clip.ThumbnailPath); err != nil {
			logger.Warn("thumbnail attach failed", logging.Error(err))
		}
	}

	url := w.publisher.VideoURL(videoID)
	if err := w.store.MarkUploaded(ctx, due.Upload.ID, videoID, url); err != nil {
		return err
	}
	if err := w.store.SetClipStatus(ctx, due.Clip.ID, store.ClipPublished); err != nil {
		return err
	}

	if _, err := w.publisher.PostComment(ctx, videoID, captioner.RandomComment(w.rng)); err != nil {
		logger.Warn("engagement comment failed", logging.Error(err))
	} else if err := w.store.MarkCommentPosted(ctx, due.Upload.ID); err != nil {
		logger.Error("recording comment failed", logging.Error(err))
	}

	_ = w.store.LogActivity(ctx, "video_uploaded",
		fmt.Sprintf("upload=%d clip=%d video=%s url=%s", due.Upload.ID, due.Clip.ID, videoID, url),
		store.ActivitySuccess, "")
	logger.Info("clip published", logging.String("url", url))
	return nil
}
