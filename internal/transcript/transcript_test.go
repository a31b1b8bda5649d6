package transcript_test

import (
	"reflect"
	"testing"

	"clipforge/internal/transcript"
)

func TestCleanNormalizesText(t *testing.T) {
	segments := []transcript.Segment{
		{Text: "  hello   world ", Start: 0, End: 2},
		{Text: "wait , what ?", Start: 2, End: 4},
	}

	cleaned := transcript.Clean(segments)
	if cleaned[0].Text != "hello world" {
		t.Fatalf("whitespace collapse: got %q", cleaned[0].Text)
	}
	if cleaned[1].Text != "wait, what?" {
		t.Fatalf("punctuation spacing: got %q", cleaned[1].Text)
	}
	if cleaned[0].Start != 0 || cleaned[0].End != 2 {
		t.Fatal("time bounds must be untouched")
	}

	// Cleaning twice must be a no-op.
	again := transcript.Clean(cleaned)
	if !reflect.DeepEqual(cleaned, again) {
		t.Fatal("Clean must be idempotent")
	}
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	segments := []transcript.Segment{{Text: "a  b", Start: 0, End: 1}}
	_ = transcript.Clean(segments)
	if segments[0].Text != "a  b" {
		t.Fatalf("input mutated: %q", segments[0].Text)
	}
}

func TestSliceKeepsFullyContainedSegments(t *testing.T) {
	segments := []transcript.Segment{
		{Text: "before", Start: 0, End: 9},
		{Text: "straddles start", Start: 8, End: 12},
		{Text: "inside", Start: 10, End: 15},
		{Text: "at the edge", Start: 15, End: 20},
		{Text: "straddles end", Start: 18, End: 25},
	}

	got := transcript.Slice(segments, 10, 20)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(got), got)
	}
	if got[0].Text != "inside" || got[1].Text != "at the edge" {
		t.Fatalf("unexpected segments: %+v", got)
	}
}

func TestTextJoinsNonEmptySegments(t *testing.T) {
	segments := []transcript.Segment{
		{Text: "one"},
		{Text: "   "},
		{Text: "two "},
	}
	if got := transcript.Text(segments); got != "one two" {
		t.Fatalf("got %q", got)
	}
}
