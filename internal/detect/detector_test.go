package detect

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"clipforge/internal/transcript"
)

func TestEngagementScorePacingOnly(t *testing.T) {
	// 45 neutral lowercase words over 15 seconds is exactly 3.0 words/sec:
	// no keywords, no punctuation, no capitalization, pacing bonus only.
	text := strings.TrimSpace(strings.Repeat("pebble stone river ", 15))
	score := engagementScore(text, 15)
	if score != 0.1 {
		t.Fatalf("expected exact pacing-only score 0.1, got %v", score)
	}
}

func TestEngagementScoreClampedToOne(t *testing.T) {
	text := strings.Repeat("Wait! Really? The Secret truth is crazy! Let me tell you, check this out! ", 20)
	score := engagementScore(text, 20)
	if score < 0 || score > 1 {
		t.Fatalf("score out of range: %v", score)
	}
}

func TestScoreRationaleCategories(t *testing.T) {
	reason := scoreRationale("Wait, is this the secret? Amazing!")
	for _, fragment := range []string{"viral keywords", "engaging question", "high energy", "specific examples"} {
		if !strings.Contains(reason, fragment) {
			t.Fatalf("expected %q in rationale %q", fragment, reason)
		}
	}

	if reason := scoreRationale("plain steady narration with no signals"); reason != "good pacing" {
		t.Fatalf("expected fallback rationale, got %q", reason)
	}
}

func TestDetectKeywordSaturatedWindow(t *testing.T) {
	segments := make([]transcript.Segment, 20)
	for i := range segments {
		segments[i] = transcript.Segment{Text: "actually wait", Start: float64(i), End: float64(i + 1)}
	}

	candidates, err := NewDetector().Detect(context.Background(), segments, 60, 5)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}
	found := false
	for _, cand := range candidates {
		if strings.Contains(cand.Reason, "viral keywords") {
			found = true
		}
		if cand.Duration < 15 || cand.Duration > 60 {
			t.Fatalf("candidate duration out of bounds: %v", cand.Duration)
		}
		if cand.Score < 0 || cand.Score > 1 {
			t.Fatalf("candidate score out of range: %v", cand.Score)
		}
	}
	if !found {
		t.Fatalf("expected a candidate citing viral keywords, got %+v", candidates)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	segments := energeticSegments()
	first, err := NewDetector().Detect(context.Background(), segments, 60, 5)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	second, err := NewDetector().Detect(context.Background(), segments, 60, 5)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output across runs:\n%+v\n%+v", first, second)
	}
}

func TestDetectCandidatesNeverOverlap(t *testing.T) {
	candidates, err := NewDetector().Detect(context.Background(), energeticSegments(), 60, 10)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("expected candidates from an energetic transcript")
	}
	for i := range candidates {
		for j := range candidates {
			if i == j {
				continue
			}
			a, b := candidates[i], candidates[j]
			if !(a.End <= b.Start || a.Start >= b.End) {
				t.Fatalf("candidates %d and %d overlap: [%v,%v) and [%v,%v)", i, j, a.Start, a.End, b.Start, b.End)
			}
		}
	}
}

func TestDetectShortEpisodeYieldsNothing(t *testing.T) {
	segments := []transcript.Segment{
		{Text: "Wait, this is crazy!", Start: 0, End: 5},
		{Text: "Unbelievable, actually!", Start: 5, End: 10},
	}
	candidates, err := NewDetector().Detect(context.Background(), segments, 60, 5)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates under the minimum duration, got %d", len(candidates))
	}
}

func TestRemoveOverlapsGreedyByScore(t *testing.T) {
	candidates := []Candidate{
		{Start: 20, End: 40, Score: 0.9},
		{Start: 50, End: 70, Score: 0.8},
		{Start: 10, End: 60, Score: 0.95},
	}
	kept := removeOverlaps(candidates)
	if len(kept) != 1 {
		t.Fatalf("expected a single surviving candidate, got %d", len(kept))
	}
	if kept[0].Score != 0.95 {
		t.Fatalf("expected the highest-scoring window to win, got %+v", kept[0])
	}
}

func TestRemoveOverlapsKeepsTouchingRanges(t *testing.T) {
	candidates := []Candidate{
		{Start: 0, End: 20, Score: 0.9},
		{Start: 20, End: 40, Score: 0.8},
	}
	kept := removeOverlaps(candidates)
	if len(kept) != 2 {
		t.Fatalf("expected adjacent ranges to both survive, got %d", len(kept))
	}
}

type stubRefiner struct {
	score float64
	err   error
}

func (s stubRefiner) RefineScore(context.Context, string, float64) (float64, error) {
	return s.score, s.err
}

func TestDetectBlendsRefinedScore(t *testing.T) {
	segments := energeticSegments()
	base, err := NewDetector().Detect(context.Background(), segments, 60, 1)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(base) != 1 {
		t.Fatalf("expected one candidate, got %d", len(base))
	}

	refined, err := NewDetector(WithRefiner(stubRefiner{score: 1})).Detect(context.Background(), segments, 60, 1)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := (base[0].Score + 1) / 2
	if refined[0].Score != want {
		t.Fatalf("expected blended score %v, got %v", want, refined[0].Score)
	}
}

func TestDetectIgnoresRefinerFailure(t *testing.T) {
	segments := energeticSegments()
	base, err := NewDetector().Detect(context.Background(), segments, 60, 1)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	refined, err := NewDetector(WithRefiner(stubRefiner{err: errors.New("unavailable")})).Detect(context.Background(), segments, 60, 1)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if refined[0].Score != base[0].Score {
		t.Fatalf("expected heuristic score %v retained, got %v", base[0].Score, refined[0].Score)
	}
}

func energeticSegments() []transcript.Segment {
	lines := []string{
		"Wait, let me tell you something crazy!",
		"Nobody expected this, it was unbelievable!",
		"What if the secret was hiding in plain sight?",
		"Here's the thing, the truth finally came out!",
		"Honestly Steve was shocked, literally shocked!",
		"Check this out, the numbers were insane!",
		"Everyone always asked the same question, right?",
		"And then it was revealed, a real game-changer!",
	}
	segments := make([]transcript.Segment, 0, len(lines)*3)
	at := 0.0
	for i := 0; i < 3; i++ {
		for _, line := range lines {
			segments = append(segments, transcript.Segment{Text: line, Start: at, End: at + 3})
			at += 3
		}
	}
	return segments
}
