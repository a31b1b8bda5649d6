package detect

import (
	"context"
	"log/slog"
	"sort"

	"clipforge/internal/logging"
	"clipforge/internal/transcript"
)

// Candidate is a scored clip-worthy span of an episode. Start and End are
// absolute offsets in seconds from the beginning of the source media.
type Candidate struct {
	Start      float64
	End        float64
	Duration   float64
	Score      float64
	Transcript string
	Reason     string
}

// Refiner re-scores a single candidate using an external judge. Detect blends
// the refined value with the heuristic score and ignores refiner failures.
type Refiner interface {
	RefineScore(ctx context.Context, transcriptText string, heuristic float64) (float64, error)
}

const (
	minClipSeconds = 15.0
	scoreThreshold = 0.3
)

// Detector finds high-engagement windows in a transcript.
type Detector struct {
	refiner Refiner
	logger  *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithRefiner attaches an external scorer consulted for the selected
// candidates.
func WithRefiner(refiner Refiner) Option {
	return func(d *Detector) {
		d.refiner = refiner
	}
}

// WithLogger sets the detector logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a Detector. Both the refiner and the logger are
// optional.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect scans the transcript with a sliding window and returns at most topN
// non-overlapping candidates ordered by descending score. Output is
// deterministic for a given input when no refiner is attached.
func (d *Detector) Detect(ctx context.Context, segments []transcript.Segment, maxDuration float64, topN int) ([]Candidate, error) {
	if len(segments) == 0 || topN <= 0 {
		return nil, nil
	}

	var candidates []Candidate
	for i := range segments {
		text := ""
		duration := 0.0
		for end := i; end < len(segments); end++ {
			next := segments[end].End - segments[i].Start
			if next > maxDuration {
				break
			}
			text += segments[end].Text + " "
			duration = next

			if duration < minClipSeconds {
				continue
			}
			score := engagementScore(text, duration)
			if score < scoreThreshold {
				continue
			}
			candidates = append(candidates, Candidate{
				Start:      segments[i].Start,
				End:        segments[end].End,
				Duration:   duration,
				Score:      score,
				Transcript: transcript.CleanText(text),
				Reason:     scoreRationale(text),
			})
		}
	}

	selected := removeOverlaps(candidates)
	if len(selected) > topN {
		selected = selected[:topN]
	}

	if d.refiner != nil {
		for i := range selected {
			refined, err := d.refiner.RefineScore(ctx, selected[i].Transcript, selected[i].Score)
			if err != nil {
				d.logger.Warn("candidate refinement failed",
					logging.Float64("start", selected[i].Start),
					logging.Error(err))
				continue
			}
			selected[i].Score = blendScores(selected[i].Score, refined)
		}
	}

	d.logger.Info("clip detection finished",
		logging.Int("windows_scored", len(candidates)),
		logging.Int("candidates", len(selected)))
	return selected, nil
}

// removeOverlaps keeps the highest-scoring candidates whose time ranges do
// not intersect. Ties break on earlier start so selection is stable.
func removeOverlaps(candidates []Candidate) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Score != sorted[b].Score {
			return sorted[a].Score > sorted[b].Score
		}
		if sorted[a].Start != sorted[b].Start {
			return sorted[a].Start < sorted[b].Start
		}
		return sorted[a].End < sorted[b].End
	})

	var kept []Candidate
	for _, cand := range sorted {
		if !overlapsAny(cand, kept) {
			kept = append(kept, cand)
		}
	}
	return kept
}

func overlapsAny(cand Candidate, kept []Candidate) bool {
	for _, other := range kept {
		// Ranges are half-open: candidates that merely touch do not overlap.
		if cand.End <= other.Start || cand.Start >= other.End {
			continue
		}
		return true
	}
	return false
}

func blendScores(heuristic, refined float64) float64 {
	if refined < 0 {
		refined = 0
	}
	if refined > 1 {
		refined = 1
	}
	return (heuristic + refined) / 2
}
