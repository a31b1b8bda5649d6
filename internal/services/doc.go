// Package services provides shared plumbing for external collaborator
// clients: sentinel error markers used to classify failures as episode-scoped
// or candidate-scoped, and context annotation helpers that let stage code tag
// log lines with episode and correlation identifiers.
package services
