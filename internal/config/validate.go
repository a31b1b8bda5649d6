package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures deep inside the pipeline.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		problems = append(problems, "paths.output_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		problems = append(problems, "paths.staging_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must not be empty")
	}
	if c.Detection.MaxClipSeconds <= 0 {
		problems = append(problems, "detection.max_clip_seconds must be positive")
	}
	if c.Detection.TopClips <= 0 {
		problems = append(problems, "detection.top_clips must be positive")
	}
	if c.Worker.PollIntervalSeconds <= 0 {
		problems = append(problems, "worker.poll_interval_seconds must be positive")
	}
	if strings.TrimSpace(c.Worker.Platform) == "" {
		problems = append(problems, "worker.platform must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console or json)", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
