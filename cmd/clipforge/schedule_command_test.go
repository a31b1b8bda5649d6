package main

import (
	"context"
	"testing"
	"time"

	"clipforge/internal/store"
	"clipforge/internal/testsupport"
)

func TestParseScheduleTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	when, err := parseScheduleTime("2026-03-11T09:30:00Z", now)
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if !when.Equal(time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339: got %s", when)
	}

	when, err = parseScheduleTime("14:00", now)
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	if when.Day() != 10 || when.Hour() != 14 {
		t.Fatalf("future clock time must stay on the same day, got %s", when)
	}

	when, err = parseScheduleTime("09:00", now)
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	if when.Day() != 11 || when.Hour() != 9 {
		t.Fatalf("past clock time must roll to the next day, got %s", when)
	}

	if _, err := parseScheduleTime("not a time", now); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestParseClipIDs(t *testing.T) {
	ids, err := parseClipIDs([]string{"1", "42"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 42 {
		t.Fatalf("got %v", ids)
	}
	if _, err := parseClipIDs([]string{"0"}); err == nil {
		t.Fatal("expected error for non-positive id")
	}
	if _, err := parseClipIDs([]string{"abc"}); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestScheduleCommandCreatesUpload(t *testing.T) {
	env := setupCLITestEnv(t)
	st := testsupport.MustOpenStore(t, env.cfg)
	ctx := context.Background()

	episode, err := st.NewEpisode(ctx, "ep.mp3", "/library/ep.mp3")
	if err != nil {
		t.Fatalf("new episode: %v", err)
	}
	clip, err := st.InsertClip(ctx, &store.Clip{
		EpisodeID: episode.ID,
		StartTime: 10,
		EndTime:   40,
		Duration:  30,
		Score:     0.6,
		FilePath:  "/outputs/clip.mp4",
		Title:     "Title",
	})
	if err != nil {
		t.Fatalf("insert clip: %v", err)
	}

	at := time.Now().Add(2 * time.Hour).Format(time.RFC3339)
	out, _, err := runCLI(t, []string{"schedule", "1", "--at", at}, env.configPath)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	requireContains(t, out, "Clip #1 scheduled")

	uploads, err := st.ListUploads(ctx)
	if err != nil {
		t.Fatalf("list uploads: %v", err)
	}
	if len(uploads) != 1 || uploads[0].ClipID != clip.ID {
		t.Fatalf("expected one upload for clip %d, got %+v", clip.ID, uploads)
	}

	// A clip that is no longer ready cannot be scheduled again.
	if _, _, err := runCLI(t, []string{"schedule", "1", "--at", at}, env.configPath); err == nil {
		t.Fatal("expected error scheduling an already scheduled clip")
	}
}
