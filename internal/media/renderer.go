package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services"
	"clipforge/internal/transcript"
)

const (
	fadeSeconds   = 0.3
	subtitleStyle = "FontName=Arial Bold,FontSize=24,PrimaryColour=&Hffffff,OutlineColour=&H000000,Outline=2,MarginV=45"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

type commandProber func(ctx context.Context, name string, args ...string) ([]byte, error)

// Renderer drives ffmpeg and ffprobe for clip materialization.
type Renderer struct {
	ffmpegBin  string
	ffprobeBin string
	logger     *slog.Logger
	run        commandRunner
	probe      commandProber
}

// NewRenderer creates a Renderer using the binaries configured in cfg.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{
		ffmpegBin:  cfg.FFmpegBinary(),
		ffprobeBin: cfg.FFprobeBinary(),
		logger:     logger,
		run:        defaultCommandRunner,
		probe:      defaultCommandProber,
	}
}

// WithCommandRunner overrides command execution, primarily for tests.
func (r *Renderer) WithCommandRunner(run func(ctx context.Context, name string, args ...string) error) {
	if run != nil {
		r.run = run
	}
}

// WithProber overrides ffprobe execution, primarily for tests.
func (r *Renderer) WithProber(probe func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	if probe != nil {
		r.probe = probe
	}
}

// Duration returns the container duration of the source file in seconds.
func (r *Renderer) Duration(ctx context.Context, source string) (float64, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0, services.Wrap(services.ErrValidation, "media", "duration", "empty source path", nil)
	}

	output, err := r.probe(ctx, r.ffprobeBin, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", source)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "media", "duration", "ffprobe inspect failed", err)
	}

	result, err := parseProbeOutput(output)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "media", "duration", "ffprobe parse failed", err)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return 0, services.Wrap(services.ErrExternalTool, "media", "duration", fmt.Sprintf("no usable duration for %s", source), nil)
	}
	return duration, nil
}

// ExtractClip cuts [start, start+duration) out of source, re-encoding with
// short audio and video fades on both edges.
func (r *Renderer) ExtractClip(ctx context.Context, source string, start, duration float64, dest string) error {
	fadeOutStart := duration - fadeSeconds
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}
	videoFilter := fmt.Sprintf("fade=t=in:st=0:d=%.1f,fade=t=out:st=%.2f:d=%.1f", fadeSeconds, fadeOutStart, fadeSeconds)
	audioFilter := fmt.Sprintf("afade=t=in:st=0:d=%.1f,afade=t=out:st=%.2f:d=%.1f", fadeSeconds, fadeOutStart, fadeSeconds)

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", source,
		"-vf", videoFilter,
		"-af", audioFilter,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ar", "44100",
		dest,
	}
	if err := r.run(ctx, r.ffmpegBin, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "media", "extract_clip", "ffmpeg extract failed", err)
	}
	r.logger.Debug("extracted clip",
		logging.String("source", source),
		logging.Float64("start", start),
		logging.Float64("duration", duration))
	return nil
}

// BurnSubtitles writes the segments as a temporary SRT file offset to the
// clip's start and burns them into the video. Audio is copied untouched.
func (r *Renderer) BurnSubtitles(ctx context.Context, mediaPath string, segments []transcript.Segment, start, end float64, dest string) error {
	window := transcript.Slice(segments, start, end)
	srtPath := dest + ".srt"
	if err := os.WriteFile(srtPath, []byte(GenerateSRT(window, start)), 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "media", "burn_subtitles", "write srt", err)
	}
	defer os.Remove(srtPath)

	filter := fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(srtPath), subtitleStyle)
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", mediaPath,
		"-vf", filter,
		"-c:a", "copy",
		dest,
	}
	if err := r.run(ctx, r.ffmpegBin, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "media", "burn_subtitles", "ffmpeg subtitle burn failed", err)
	}
	return nil
}

// ExtractFrame captures a single 1280x720 frame at the given offset.
func (r *Renderer) ExtractFrame(ctx context.Context, mediaPath string, timestamp float64, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(timestamp),
		"-i", mediaPath,
		"-frames:v", "1",
		"-vf", "scale=1280:720:force_original_aspect_ratio=increase,crop=1280:720",
		dest,
	}
	if err := r.run(ctx, r.ffmpegBin, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "media", "extract_frame", "ffmpeg frame capture failed", err)
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func defaultCommandProber(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

func formatSeconds(value float64) string {
	return fmt.Sprintf("%.3f", value)
}

// escapeFilterPath escapes characters that ffmpeg's filter parser treats
// specially inside a subtitles= argument.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, `:`, `\:`)
	path = strings.ReplaceAll(path, `'`, `\'`)
	return path
}
