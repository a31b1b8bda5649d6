package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/store"
)

// Scheduler assigns publish timestamps to materialized clips.
type Scheduler struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// New creates a Scheduler.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{cfg: cfg, store: st, logger: logger}
}

// ScheduleForUpload pairs clip ids with scheduled times positionally,
// truncated to the shorter sequence. Past timestamps are accepted and simply
// make the upload immediately due.
func (s *Scheduler) ScheduleForUpload(ctx context.Context, clipIDs []int64, times []time.Time) error {
	count := len(clipIDs)
	if len(times) < count {
		count = len(times)
	}

	for i := 0; i < count; i++ {
		upload, err := s.store.ScheduleUpload(ctx, clipIDs[i], s.cfg.Worker.Platform, times[i])
		if err != nil {
			return fmt.Errorf("schedule clip %d: %w", clipIDs[i], err)
		}
		if err := s.store.SetClipStatus(ctx, clipIDs[i], store.ClipScheduled); err != nil {
			return fmt.Errorf("mark clip %d scheduled: %w", clipIDs[i], err)
		}
		s.logger.Info("clip scheduled",
			logging.Int64("clip_id", clipIDs[i]),
			logging.Int64("upload_id", upload.ID),
			logging.Time("scheduled_time", times[i]))
	}

	_ = s.store.LogActivity(ctx, "clips_scheduled",
		fmt.Sprintf("clips=%d", count), store.ActivitySuccess, "")
	return nil
}
