package media

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// probeResult is the subset of ffprobe's JSON output the renderer needs.
type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeFormat struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

func parseProbeOutput(output []byte) (probeResult, error) {
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return probeResult{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	return result, nil
}

// DurationSeconds returns the container duration, falling back to the longest
// stream duration when the container omits it.
func (r probeResult) DurationSeconds() float64 {
	if duration := parseProbeFloat(r.Format.Duration); duration > 0 {
		return duration
	}
	longest := 0.0
	for _, stream := range r.Streams {
		if duration := parseProbeFloat(stream.Duration); duration > longest {
			longest = duration
		}
	}
	return longest
}

func parseProbeFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}
