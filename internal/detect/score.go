package detect

import (
	"regexp"
	"strings"
)

// Signal weights and caps for the additive engagement score. Each term is
// independently capped so no single signal can dominate, and the final value
// is clamped to [0, 1].
const (
	keywordWeight    = 0.05
	keywordCap       = 0.3
	phraseWeight     = 0.1
	phraseCap        = 0.2
	questionWeight   = 0.05
	questionCap      = 0.15
	exclaimWeight    = 0.05
	exclaimCap       = 0.15
	properNounWeight = 0.02
	properNounCap    = 0.1
	pacingBonus      = 0.1
	pacingMinWPS     = 2.5
	pacingMaxWPS     = 4.0
)

var viralKeywords = []string{
	"what if", "never", "wait", "actually", "literally", "crazy", "insane",
	"unbelievable", "shocking", "secret", "truth", "nobody", "everyone",
	"always", "finally", "revealed", "exposed", "mind-blowing", "game-changer",
}

var engagementPhrases = []string{
	"let me tell you", "here's the thing", "you won't believe",
	"i'm telling you", "listen to this", "check this out", "get this",
}

var properNounRE = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

// engagementScore computes the heuristic score for a window of text spanning
// the given duration in seconds.
func engagementScore(text string, duration float64) float64 {
	score := 0.0
	lower := strings.ToLower(text)

	score += capped(float64(countOccurrences(lower, viralKeywords))*keywordWeight, keywordCap)
	score += capped(float64(countOccurrences(lower, engagementPhrases))*phraseWeight, phraseCap)

	score += capped(float64(strings.Count(text, "?"))*questionWeight, questionCap)
	score += capped(float64(strings.Count(text, "!"))*exclaimWeight, exclaimCap)
	score += capped(float64(len(properNounRE.FindAllString(text, -1)))*properNounWeight, properNounCap)

	if duration > 0 {
		wps := float64(len(strings.Fields(text))) / duration
		if wps >= pacingMinWPS && wps <= pacingMaxWPS {
			score += pacingBonus
		}
	}

	if score > 1 {
		return 1
	}
	return score
}

// scoreRationale names the signal categories that fired for a window. The
// result is observability-only and never participates in ranking.
func scoreRationale(text string) string {
	var reasons []string

	if countOccurrences(strings.ToLower(text), viralKeywords) > 0 {
		reasons = append(reasons, "viral keywords")
	}
	if strings.Contains(text, "?") {
		reasons = append(reasons, "engaging question")
	}
	if strings.Contains(text, "!") {
		reasons = append(reasons, "high energy")
	}
	if properNounRE.MatchString(text) {
		reasons = append(reasons, "specific examples")
	}

	if len(reasons) == 0 {
		return "good pacing"
	}
	return strings.Join(reasons, ", ")
}

func countOccurrences(lower string, needles []string) int {
	total := 0
	for _, needle := range needles {
		total += strings.Count(lower, needle)
	}
	return total
}

func capped(value, limit float64) float64 {
	if value > limit {
		return limit
	}
	return value
}
