package captioner

import (
	"fmt"
	"math/rand"
	"strings"
)

var commentTemplates = []string{
	"🔥 What would you have said here? Drop it below 👇",
	"😂 Who else relates? Tell us your story!",
	"💭 Agree or disagree — explain in one sentence.",
	"🤔 What's your take on this? Comment below!",
	"👀 Would you do the same? Let me know!",
	"💬 Drop your thoughts — I read every comment!",
	"🎯 Tag someone who needs to hear this!",
	"⚡ Your turn — what would YOU do?",
	"🚀 Let's discuss in the comments!",
	"💡 Share your perspective below!",
}

// RandomComment picks an engagement comment. The rng is injectable so tests
// can pin the choice; a nil rng falls back to the first template.
func RandomComment(rng *rand.Rand) string {
	if rng == nil {
		return commentTemplates[0]
	}
	return commentTemplates[rng.Intn(len(commentTemplates))]
}

// FormatDescription assembles the publish description: caption description,
// hashtags, an optional full-episode pointer, and the subscribe footer.
func FormatDescription(caption Caption, episodeURL string, start, end float64) string {
	var b strings.Builder
	b.WriteString(caption.Description)
	b.WriteString("\n\n")

	tags := make([]string, 0, len(caption.Hashtags))
	for _, tag := range caption.Hashtags {
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
	}
	b.WriteString(strings.Join(tags, " "))

	if episodeURL != "" {
		b.WriteString("\n\n---\n")
		fmt.Fprintf(&b, "Full episode: %s\n", episodeURL)
		fmt.Fprintf(&b, "Timestamp: %s - %s", FormatTimestamp(start), FormatTimestamp(end))
	}

	b.WriteString("\n\n---\n")
	b.WriteString("🎙️ Subscribe for more clips!\n")
	b.WriteString("🔔 Turn on notifications to never miss a post!")
	return b.String()
}

// FormatTimestamp renders seconds as M:SS, or H:MM:SS past an hour.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
