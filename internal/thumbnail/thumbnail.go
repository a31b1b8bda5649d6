package thumbnail

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// Compositor renders clip thumbnails by overlaying the clip title on a frame
// captured from the rendered video.
type Compositor struct {
	ffmpegBin string
	logger    *slog.Logger
	run       commandRunner
}

// NewCompositor creates a Compositor using the ffmpeg binary from cfg.
func NewCompositor(cfg *config.Config, logger *slog.Logger) *Compositor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Compositor{
		ffmpegBin: cfg.FFmpegBinary(),
		logger:    logger,
		run:       defaultRunner,
	}
}

// WithCommandRunner overrides command execution, primarily for tests.
func (c *Compositor) WithCommandRunner(run func(ctx context.Context, name string, args ...string) error) {
	if run != nil {
		c.run = run
	}
}

// Composite scales the frame to 1280x720, darkens a title band, and draws the
// upper-cased title across it.
func (c *Compositor) Composite(ctx context.Context, framePath, title, dest string) error {
	filter := strings.Join([]string{
		"scale=1280:720:force_original_aspect_ratio=increase",
		"crop=1280:720",
		"drawbox=x=0:y=520:w=1280:h=200:color=black@0.6:t=fill",
		fmt.Sprintf("drawtext=text='%s':fontcolor=white:fontsize=56:x=(w-text_w)/2:y=560:borderw=3:bordercolor=black", escapeDrawText(strings.ToUpper(title))),
	}, ",")

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", framePath,
		"-vf", filter,
		"-frames:v", "1",
		"-q:v", "2",
		dest,
	}
	if err := c.run(ctx, c.ffmpegBin, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "thumbnail", "composite", "ffmpeg thumbnail composite failed", err)
	}
	c.logger.Debug("composited thumbnail", logging.String("dest", dest))
	return nil
}

// escapeDrawText escapes characters that terminate or confuse ffmpeg's
// drawtext argument parsing.
func escapeDrawText(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `'`, `\'`)
	text = strings.ReplaceAll(text, `:`, `\:`)
	text = strings.ReplaceAll(text, `%`, `\%`)
	return text
}

func defaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
