package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"clipforge/internal/config"
	"clipforge/internal/detect"
	"clipforge/internal/fileutil"
	"clipforge/internal/logging"
	"clipforge/internal/services"
	"clipforge/internal/services/captioner"
	"clipforge/internal/store"
	"clipforge/internal/transcript"
)

// Transcriber produces timestamped segments for a source file. A failure here
// is fatal for the whole episode.
type Transcriber interface {
	Transcribe(ctx context.Context, sourcePath string) ([]transcript.Segment, error)
}

// Detector finds clip candidates in a normalized transcript.
type Detector interface {
	Detect(ctx context.Context, segments []transcript.Segment, maxDuration float64, topN int) ([]detect.Candidate, error)
}

// Captioner generates social metadata for a candidate transcript. Generation
// never fails; malformed model output falls back deterministically.
type Captioner interface {
	Generate(ctx context.Context, transcriptText string) captioner.Caption
}

// Renderer performs the media operations for clip materialization.
type Renderer interface {
	Duration(ctx context.Context, source string) (float64, error)
	ExtractClip(ctx context.Context, source string, start, duration float64, dest string) error
	BurnSubtitles(ctx context.Context, mediaPath string, segments []transcript.Segment, start, end float64, dest string) error
	ExtractFrame(ctx context.Context, mediaPath string, timestamp float64, dest string) error
}

// Thumbnailer composites a title card over a captured frame.
type Thumbnailer interface {
	Composite(ctx context.Context, framePath, title, dest string) error
}

// Result reports a finished episode run. Callers must inspect Errors: a
// completed run with candidate failures returns normally.
type Result struct {
	EpisodeID      int64
	ClipsGenerated int
	ClipIDs        []int64
	Errors         []string
}

// Deps bundles the collaborators a Pipeline needs. All are injected so the
// orchestration is testable with fakes.
type Deps struct {
	Store       *store.Store
	Transcriber Transcriber
	Detector    Detector
	Captioner   Captioner
	Renderer    Renderer
	Thumbnailer Thumbnailer
	Logger      *slog.Logger
}

// Pipeline turns a source episode into rendered, captioned clip rows.
type Pipeline struct {
	cfg         *config.Config
	store       *store.Store
	transcriber Transcriber
	detector    Detector
	captioner   Captioner
	renderer    Renderer
	thumbnailer Thumbnailer
	logger      *slog.Logger
}

// New creates a Pipeline from its dependencies.
func New(cfg *config.Config, deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:         cfg,
		store:       deps.Store,
		transcriber: deps.Transcriber,
		detector:    deps.Detector,
		captioner:   deps.Captioner,
		renderer:    deps.Renderer,
		thumbnailer: deps.Thumbnailer,
		logger:      logger,
	}
}

// ProcessEpisode runs the full pipeline for one source file. Per-candidate
// failures are captured in the result's Errors list and never abort the run;
// only whole-episode faults (episode row creation, duration probe,
// transcription) return an error, leaving the episode in the processing
// state.
func (p *Pipeline) ProcessEpisode(ctx context.Context, sourcePath, filename string, topN int) (*Result, error) {
	if err := p.store.LogActivity(ctx, "process_episode_start", fmt.Sprintf("filename=%s", filename), store.ActivityPending, ""); err != nil {
		return nil, err
	}

	episode, err := p.store.NewEpisode(ctx, filename, sourcePath)
	if err != nil {
		return nil, p.fail(ctx, filename, err)
	}
	if err := p.store.SetEpisodeStatus(ctx, episode.ID, store.EpisodeProcessing); err != nil {
		return nil, p.fail(ctx, filename, err)
	}

	ctx = services.WithEpisodeID(ctx, episode.ID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("processing episode", logging.String("filename", filename))

	duration, err := p.renderer.Duration(ctx, sourcePath)
	if err != nil {
		return nil, p.fail(ctx, filename, err)
	}
	if err := p.store.SetEpisodeDuration(ctx, episode.ID, duration); err != nil {
		return nil, p.fail(ctx, filename, err)
	}

	_ = p.store.LogActivity(ctx, "transcription_start", fmt.Sprintf("episode=%d", episode.ID), store.ActivityPending, "")
	rawSegments, err := p.transcriber.Transcribe(ctx, sourcePath)
	if err != nil {
		return nil, p.fail(ctx, filename, err)
	}
	segments := transcript.Clean(rawSegments)
	_ = p.store.LogActivity(ctx, "transcription_complete",
		fmt.Sprintf("episode=%d segments=%d", episode.ID, len(segments)), store.ActivitySuccess, "")

	_ = p.store.LogActivity(ctx, "clip_detection_start", fmt.Sprintf("episode=%d", episode.ID), store.ActivityPending, "")
	candidates, err := p.detector.Detect(ctx, segments, p.cfg.Detection.MaxClipSeconds, topN)
	if err != nil {
		return nil, p.fail(ctx, filename, err)
	}
	_ = p.store.LogActivity(ctx, "clip_detection_complete",
		fmt.Sprintf("episode=%d candidates=%d", episode.ID, len(candidates)), store.ActivitySuccess, "")

	workdir, cleanup, err := fileutil.NewWorkDir(p.cfg.Paths.StagingDir, fmt.Sprintf("episode-%d", episode.ID))
	if err != nil {
		return nil, p.fail(ctx, filename, err)
	}
	defer cleanup()

	result := &Result{EpisodeID: episode.ID}
	for i, candidate := range candidates {
		number := i + 1
		clipID, err := p.processCandidate(ctx, workdir, sourcePath, episode.ID, number, segments, candidate)
		if err != nil {
			message := fmt.Sprintf("Clip %d failed: %s", number, err.Error())
			result.Errors = append(result.Errors, message)
			logger.Warn("candidate materialization failed",
				logging.Int("clip_number", number),
				logging.Error(err))
			_ = p.store.LogActivity(ctx, "clip_processing_error",
				fmt.Sprintf("episode=%d clip=%d", episode.ID, number), store.ActivityError, err.Error())
			continue
		}
		result.ClipIDs = append(result.ClipIDs, clipID)
		_ = p.store.LogActivity(ctx, "clip_processed",
			fmt.Sprintf("episode=%d clip_id=%d number=%d", episode.ID, clipID, number), store.ActivitySuccess, "")
	}
	result.ClipsGenerated = len(result.ClipIDs)

	if err := p.store.SetEpisodeStatus(ctx, episode.ID, store.EpisodeCompleted); err != nil {
		return nil, p.fail(ctx, filename, err)
	}

	completeStatus := store.ActivitySuccess
	if len(result.Errors) > 0 {
		completeStatus = store.ActivityError
	}
	_ = p.store.LogActivity(ctx, "process_episode_complete",
		fmt.Sprintf("episode=%d clips=%d errors=%d", episode.ID, result.ClipsGenerated, len(result.Errors)),
		completeStatus, "")

	logger.Info("episode processed",
		logging.Int("clips_generated", result.ClipsGenerated),
		logging.Int("errors", len(result.Errors)))
	return result, nil
}

// processCandidate materializes a single candidate. Every artifact is staged
// in the run's private workdir and only moved into the output directory right
// before the clip row is inserted, so a failed candidate leaves no partial
// clip behind.
func (p *Pipeline) processCandidate(ctx context.Context, workdir, sourcePath string, episodeID int64, number int, segments []transcript.Segment, candidate detect.Candidate) (int64, error) {
	clipName := fmt.Sprintf("clip_%d_%d.mp4", episodeID, number)
	thumbName := fmt.Sprintf("thumb_%d_%d.jpg", episodeID, number)

	tempClip := filepath.Join(workdir, "temp_"+clipName)
	stagedClip := filepath.Join(workdir, clipName)
	framePath := filepath.Join(workdir, fmt.Sprintf("frame_%d_%d.jpg", episodeID, number))
	stagedThumb := filepath.Join(workdir, thumbName)

	if err := p.renderer.ExtractClip(ctx, sourcePath, candidate.Start, candidate.Duration, tempClip); err != nil {
		return 0, err
	}
	if err := p.renderer.BurnSubtitles(ctx, tempClip, segments, candidate.Start, candidate.End, stagedClip); err != nil {
		return 0, err
	}
	_ = os.Remove(tempClip)

	if err := p.renderer.ExtractFrame(ctx, stagedClip, candidate.Duration/2, framePath); err != nil {
		return 0, err
	}

	caption := p.captioner.Generate(ctx, candidate.Transcript)

	if err := p.thumbnailer.Composite(ctx, framePath, caption.Title, stagedThumb); err != nil {
		return 0, err
	}
	_ = os.Remove(framePath)

	clipPath := filepath.Join(p.cfg.Paths.OutputDir, clipName)
	thumbPath := filepath.Join(p.cfg.Paths.OutputDir, thumbName)
	if err := fileutil.MoveFile(stagedClip, clipPath); err != nil {
		return 0, err
	}
	if err := fileutil.MoveFile(stagedThumb, thumbPath); err != nil {
		_ = os.Remove(clipPath)
		return 0, err
	}

	clip, err := p.store.InsertClip(ctx, &store.Clip{
		EpisodeID:     episodeID,
		StartTime:     candidate.Start,
		EndTime:       candidate.End,
		Duration:      candidate.Duration,
		Score:         candidate.Score,
		Transcript:    candidate.Transcript,
		FilePath:      clipPath,
		ThumbnailPath: thumbPath,
		Title:         caption.Title,
		Caption:       caption.Caption,
		Hashtags:      caption.Hashtags,
		Status:        store.ClipReady,
	})
	if err != nil {
		_ = os.Remove(clipPath)
		_ = os.Remove(thumbPath)
		return 0, err
	}
	return clip.ID, nil
}

func (p *Pipeline) fail(ctx context.Context, filename string, err error) error {
	_ = p.store.LogActivity(ctx, "process_episode_error",
		fmt.Sprintf("filename=%s", filename), store.ActivityError, err.Error())
	return err
}
