package media

import (
	"fmt"
	"strings"

	"clipforge/internal/transcript"
)

// GenerateSRT renders segments as SubRip text. Timestamps are shifted by
// offset seconds so a clip cut from mid-episode starts at zero; negative
// results clamp to zero.
func GenerateSRT(segments []transcript.Segment, offset float64) string {
	var b strings.Builder
	for i, seg := range segments {
		start := seg.Start - offset
		end := seg.End - offset
		if start < 0 {
			start = 0
		}
		if end < 0 {
			end = 0
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, formatSRTTime(start), formatSRTTime(end), strings.TrimSpace(seg.Text))
	}
	return b.String()
}

func formatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
