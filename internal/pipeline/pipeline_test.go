package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/detect"
	"clipforge/internal/pipeline"
	"clipforge/internal/services/captioner"
	"clipforge/internal/store"
	"clipforge/internal/testsupport"
	"clipforge/internal/transcript"
)

type fakeTranscriber struct {
	segments []transcript.Segment
	err      error
}

func (f fakeTranscriber) Transcribe(context.Context, string) ([]transcript.Segment, error) {
	return f.segments, f.err
}

type fakeDetector struct {
	candidates []detect.Candidate
}

func (f fakeDetector) Detect(context.Context, []transcript.Segment, float64, int) ([]detect.Candidate, error) {
	return f.candidates, nil
}

type fakeCaptioner struct{}

func (fakeCaptioner) Generate(_ context.Context, transcriptText string) captioner.Caption {
	return captioner.FallbackCaption(transcriptText)
}

// fakeRenderer writes placeholder artifacts and can fail extraction for one
// configured start offset.
type fakeRenderer struct {
	failStart float64
}

func (f fakeRenderer) Duration(context.Context, string) (float64, error) {
	return 1800, nil
}

func (f fakeRenderer) ExtractClip(_ context.Context, _ string, start, _ float64, dest string) error {
	if start == f.failStart {
		return errors.New("render exploded")
	}
	return os.WriteFile(dest, []byte("clip"), 0o644)
}

func (f fakeRenderer) BurnSubtitles(_ context.Context, _ string, _ []transcript.Segment, _, _ float64, dest string) error {
	return os.WriteFile(dest, []byte("captioned"), 0o644)
}

func (f fakeRenderer) ExtractFrame(_ context.Context, _ string, _ float64, dest string) error {
	return os.WriteFile(dest, []byte("frame"), 0o644)
}

type fakeThumbnailer struct{}

func (fakeThumbnailer) Composite(_ context.Context, _, _, dest string) error {
	return os.WriteFile(dest, []byte("thumb"), 0o644)
}

func testCandidates() []detect.Candidate {
	return []detect.Candidate{
		{Start: 10, End: 40, Duration: 30, Score: 0.9, Transcript: "first moment", Reason: "viral keywords"},
		{Start: 100, End: 130, Duration: 30, Score: 0.8, Transcript: "second moment", Reason: "high energy"},
		{Start: 200, End: 230, Duration: 30, Score: 0.7, Transcript: "third moment", Reason: "engaging question"},
	}
}

func testSegments() []transcript.Segment {
	return []transcript.Segment{
		{Text: "first moment", Start: 10, End: 40},
		{Text: "second moment", Start: 100, End: 130},
		{Text: "third moment", Start: 200, End: 230},
	}
}

func TestProcessEpisodeIsolatesCandidateFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	p := pipeline.New(cfg, pipeline.Deps{
		Store:       st,
		Transcriber: fakeTranscriber{segments: testSegments()},
		Detector:    fakeDetector{candidates: testCandidates()},
		Captioner:   fakeCaptioner{},
		Renderer:    fakeRenderer{failStart: 100},
		Thumbnailer: fakeThumbnailer{},
	})

	result, err := p.ProcessEpisode(context.Background(), "/library/ep.mp3", "ep.mp3", 10)
	if err != nil {
		t.Fatalf("process episode: %v", err)
	}

	if result.ClipsGenerated != 2 {
		t.Fatalf("expected 2 clips, got %d", result.ClipsGenerated)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Clip 2 failed:") {
		t.Fatalf("expected error to reference clip 2, got %q", result.Errors[0])
	}

	ctx := context.Background()
	clips, err := st.ListClipsByEpisode(ctx, result.EpisodeID)
	if err != nil {
		t.Fatalf("list clips: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected 2 clip rows, got %d", len(clips))
	}
	for _, clip := range clips {
		if clip.StartTime == 100 {
			t.Fatalf("failed candidate must not produce a clip row: %+v", clip)
		}
		if clip.Status != store.ClipReady {
			t.Fatalf("expected ready status, got %s", clip.Status)
		}
		if clip.Title == "" || clip.Caption == "" || len(clip.Hashtags) == 0 {
			t.Fatalf("expected caption metadata, got %+v", clip)
		}
		if _, err := os.Stat(clip.FilePath); err != nil {
			t.Fatalf("expected rendered clip on disk: %v", err)
		}
		if _, err := os.Stat(clip.ThumbnailPath); err != nil {
			t.Fatalf("expected thumbnail on disk: %v", err)
		}
	}

	episode, err := st.GetEpisode(ctx, result.EpisodeID)
	if err != nil {
		t.Fatalf("get episode: %v", err)
	}
	if episode.Status != store.EpisodeCompleted {
		t.Fatalf("expected completed even with candidate errors, got %s", episode.Status)
	}
	if episode.Duration != 1800 {
		t.Fatalf("expected probed duration persisted, got %v", episode.Duration)
	}
	if episode.ProcessedAt == nil {
		t.Fatal("expected processed_at stamped")
	}
}

func TestProcessEpisodeCleansWorkDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	p := pipeline.New(cfg, pipeline.Deps{
		Store:       st,
		Transcriber: fakeTranscriber{segments: testSegments()},
		Detector:    fakeDetector{candidates: testCandidates()[:1]},
		Captioner:   fakeCaptioner{},
		Renderer:    fakeRenderer{failStart: -1},
		Thumbnailer: fakeThumbnailer{},
	})

	if _, err := p.ProcessEpisode(context.Background(), "/library/ep.mp3", "ep.mp3", 10); err != nil {
		t.Fatalf("process episode: %v", err)
	}

	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected staging dir cleaned, found %d entries", len(entries))
	}
}

func TestProcessEpisodeTranscriptionFailureIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	p := pipeline.New(cfg, pipeline.Deps{
		Store:       st,
		Transcriber: fakeTranscriber{err: errors.New("service unreachable")},
		Detector:    fakeDetector{},
		Captioner:   fakeCaptioner{},
		Renderer:    fakeRenderer{failStart: -1},
		Thumbnailer: fakeThumbnailer{},
	})

	_, err := p.ProcessEpisode(context.Background(), "/library/ep.mp3", "ep.mp3", 10)
	if err == nil {
		t.Fatal("expected transcription failure to propagate")
	}

	ctx := context.Background()
	episodes, err := st.ListEpisodes(ctx)
	if err != nil {
		t.Fatalf("list episodes: %v", err)
	}
	if len(episodes) != 1 {
		t.Fatalf("expected one episode row, got %d", len(episodes))
	}
	if episodes[0].Status != store.EpisodeProcessing {
		t.Fatalf("expected episode left in processing, got %s", episodes[0].Status)
	}

	entries, err := st.ListActivity(ctx, 10)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if entries[0].Action != "process_episode_error" {
		t.Fatalf("expected fatal activity entry, got %q", entries[0].Action)
	}
}

func TestProcessEpisodeOutputsNamedByEpisodeAndIndex(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	p := pipeline.New(cfg, pipeline.Deps{
		Store:       st,
		Transcriber: fakeTranscriber{segments: testSegments()},
		Detector:    fakeDetector{candidates: testCandidates()[:1]},
		Captioner:   fakeCaptioner{},
		Renderer:    fakeRenderer{failStart: -1},
		Thumbnailer: fakeThumbnailer{},
	})

	result, err := p.ProcessEpisode(context.Background(), "/library/ep.mp3", "ep.mp3", 10)
	if err != nil {
		t.Fatalf("process episode: %v", err)
	}

	clip, err := st.GetClip(context.Background(), result.ClipIDs[0])
	if err != nil {
		t.Fatalf("get clip: %v", err)
	}
	wantClip := filepath.Join(cfg.Paths.OutputDir, "clip_1_1.mp4")
	if clip.FilePath != wantClip {
		t.Fatalf("expected %q, got %q", wantClip, clip.FilePath)
	}
	wantThumb := filepath.Join(cfg.Paths.OutputDir, "thumb_1_1.jpg")
	if clip.ThumbnailPath != wantThumb {
		t.Fatalf("expected %q, got %q", wantThumb, clip.ThumbnailPath)
	}
}
