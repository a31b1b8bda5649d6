package transcript

import (
	"regexp"
	"strings"
)

// Word is a single transcribed word with its time bounds in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a contiguous, timestamped span of transcript text. Segments
// arrive in non-decreasing start order but are not guaranteed gap-free or
// non-overlapping.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

var (
	multiSpaceRE = regexp.MustCompile(`\s+`)
	punctSpaceRE = regexp.MustCompile(`\s+([.,!?])`)
)

// Clean normalizes segment text: whitespace collapsed to single spaces,
// spaces before punctuation removed, leading/trailing space trimmed. The
// transformation is pure and idempotent; time bounds and words are untouched.
func Clean(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		seg.Text = CleanText(seg.Text)
		out[i] = seg
	}
	return out
}

// CleanText applies the same normalization to a single string.
func CleanText(text string) string {
	text = multiSpaceRE.ReplaceAllString(text, " ")
	text = punctSpaceRE.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// Slice returns the segments fully contained in [start, end].
func Slice(segments []Segment, start, end float64) []Segment {
	var out []Segment
	for _, seg := range segments {
		if seg.Start >= start && seg.End <= end {
			out = append(out, seg)
		}
	}
	return out
}

// Text concatenates segment texts separated by single spaces.
func Text(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if trimmed := strings.TrimSpace(seg.Text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
