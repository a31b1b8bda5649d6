// Package transcript defines the timestamped segment carriers produced by
// transcription and consumed by detection and rendering, plus the pure text
// normalization applied between the two.
package transcript
