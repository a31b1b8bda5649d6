// Package pipeline orchestrates episode processing: duration probe,
// transcription, candidate detection, and per-candidate clip materialization
// with isolated failure handling.
package pipeline
