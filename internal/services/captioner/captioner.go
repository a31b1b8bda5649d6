package captioner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"clipforge/internal/logging"
)

// Caption is the generated social metadata for a clip. All four fields are
// always non-empty: malformed or failed generations fall back to a
// deterministic derivation from the transcript.
type Caption struct {
	Title       string   `json:"title"`
	Caption     string   `json:"caption"`
	Hashtags    []string `json:"hashtags"`
	Description string   `json:"description"`
}

const captionSystemPrompt = "You are a viral content expert."

const captionPromptTemplate = `You are a viral short-form video content expert specializing in YouTube Shorts, TikTok, and Instagram Reels.

Given the following video clip transcript, create engaging content that maximizes views and engagement:

TRANSCRIPT:
%s

Generate:
1. A punchy, attention-grabbing TITLE (5-10 words max, capitalize key words)
2. A short CAPTION (8-14 words) that creates curiosity or emotion
3. 8-12 relevant HASHTAGS (mix of broad and niche, trending style)
4. A full DESCRIPTION (2-3 sentences) expanding on the clip

Format your response as JSON:
{
  "title": "...",
  "caption": "...",
  "hashtags": ["tag1", "tag2", ...],
  "description": "..."
}

Make it viral, concise, and platform-optimized for short-form video.`

var defaultHashtags = []string{"#shorts", "#viral", "#trending", "#podcast", "#clips"}

// Generate produces social metadata for a clip transcript. Generation is
// best-effort: any API or parse failure falls back to FallbackCaption, so the
// result always has all four fields populated.
func (c *Client) Generate(ctx context.Context, transcriptText string) Caption {
	content, err := c.completeJSON(ctx, captionSystemPrompt, fmt.Sprintf(captionPromptTemplate, transcriptText))
	if err != nil {
		c.logger.Warn("caption generation failed, using fallback", logging.Error(err))
		return FallbackCaption(transcriptText)
	}

	var parsed Caption
	if err := decodeJSON(content, &parsed); err != nil {
		c.logger.Warn("caption payload unparseable, using fallback", logging.Error(err))
		return FallbackCaption(transcriptText)
	}

	fallback := FallbackCaption(transcriptText)
	if strings.TrimSpace(parsed.Title) == "" {
		parsed.Title = fallback.Title
	}
	if strings.TrimSpace(parsed.Caption) == "" {
		parsed.Caption = fallback.Caption
	}
	if len(parsed.Hashtags) == 0 {
		parsed.Hashtags = fallback.Hashtags
	}
	if strings.TrimSpace(parsed.Description) == "" {
		parsed.Description = fallback.Description
	}
	return parsed
}

// FallbackCaption derives metadata deterministically from the transcript's
// leading words.
func FallbackCaption(transcriptText string) Caption {
	words := strings.Fields(transcriptText)
	title := strings.Join(firstN(words, 8), " ")
	if title == "" {
		title = "Untitled Clip"
	}
	caption := strings.Join(firstN(words, 12), " ")
	if caption == "" {
		caption = title
	}
	description := strings.TrimSpace(transcriptText)
	if description == "" {
		description = title
	}
	return Caption{
		Title:       title,
		Caption:     caption,
		Hashtags:    append([]string(nil), defaultHashtags...),
		Description: description,
	}
}

const refinePromptTemplate = `Rate the viral potential of this short-form video clip transcript on a scale from 0.0 to 1.0, where 1.0 is extremely likely to go viral.

TRANSCRIPT:
%s

Heuristic pre-score: %.2f

Respond as JSON: {"score": 0.0}`

var numberRE = regexp.MustCompile(`[0-9]*\.?[0-9]+`)

// RefineScore asks the model to re-rate a candidate transcript. Callers treat
// any error as a signal to keep the heuristic score.
func (c *Client) RefineScore(ctx context.Context, transcriptText string, heuristic float64) (float64, error) {
	content, err := c.completeJSON(ctx, captionSystemPrompt, fmt.Sprintf(refinePromptTemplate, transcriptText, heuristic))
	if err != nil {
		return 0, err
	}

	var parsed struct {
		Score *float64 `json:"score"`
	}
	if err := decodeJSON(content, &parsed); err == nil && parsed.Score != nil {
		return *parsed.Score, nil
	}
	if match := numberRE.FindString(content); match != "" {
		if score, err := strconv.ParseFloat(match, 64); err == nil {
			return score, nil
		}
	}
	return 0, errors.New("refine score: no numeric score in response")
}

func firstN(words []string, n int) []string {
	if len(words) < n {
		return words
	}
	return words[:n]
}
