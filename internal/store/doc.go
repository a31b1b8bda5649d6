// Package store persists episodes, clips, uploads, and the activity log in a
// SQLite database. All timestamps are stored as RFC 3339 UTC strings and all
// writes are single-row inserts or updates.
package store
