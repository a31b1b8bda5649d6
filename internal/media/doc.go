// Package media wraps the ffmpeg and ffprobe binaries behind a Renderer:
// duration probing, sub-clip extraction with fades, subtitle burn-in, and
// still-frame capture.
package media
