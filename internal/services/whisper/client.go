package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipforge/internal/services"
	"clipforge/internal/transcript"
)

const defaultHTTPTimeout = 120 * time.Second

// Segment grouping thresholds: a segment closes at sentence-ending
// punctuation, a pause longer than maxWordGap, or once it spans maxSegmentSpan
// seconds.
const (
	maxWordGap     = 1.0
	maxSegmentSpan = 10.0
)

// Config captures the runtime settings required to talk to the transcription
// API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the OpenAI audio transcription API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a transcription client using the supplied
// configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.openai.com/v1"
	}
	if client.cfg.Model == "" {
		client.cfg.Model = "whisper-1"
	}
	return client
}

type wordStamp struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type transcriptionResponse struct {
	Text  string      `json:"text"`
	Words []wordStamp `json:"words"`
}

// Transcribe uploads the source file and returns timestamped segments grouped
// from word-level stamps. An empty transcript is an error: the caller treats
// transcription failures as fatal for the episode.
func (c *Client) Transcribe(ctx context.Context, sourcePath string) ([]transcript.Segment, error) {
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcription", "transcribe", "api key required", nil)
	}

	file, err := os.Open(sourcePath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcription", "transcribe", "open source file", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(sourcePath))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe", "build request", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe", "read source file", err)
	}
	fields := [][2]string{
		{"model", c.cfg.Model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "word"},
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe", "build request", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe", "build request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcription", "transcribe", "transcription request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcription", "transcribe", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}

	var decoded transcriptionResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe", "decode response", err)
	}

	segments := groupWords(decoded.Words)
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "transcribe", "transcription returned no segments", errors.New("empty transcript"))
	}
	return segments, nil
}

// groupWords folds word-level timestamps into sentence-sized segments.
func groupWords(words []wordStamp) []transcript.Segment {
	var segments []transcript.Segment
	var current []transcript.Word

	flush := func() {
		if len(current) == 0 {
			return
		}
		parts := make([]string, len(current))
		for i, word := range current {
			parts[i] = word.Word
		}
		segments = append(segments, transcript.Segment{
			Text:  strings.Join(parts, " "),
			Start: current[0].Start,
			End:   current[len(current)-1].End,
			Words: current,
		})
		current = nil
	}

	for i, stamp := range words {
		word := strings.TrimSpace(stamp.Word)
		if word == "" {
			continue
		}
		current = append(current, transcript.Word{Word: word, Start: stamp.Start, End: stamp.End})

		endsSentence := strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
		longPause := i+1 < len(words) && words[i+1].Start-stamp.End > maxWordGap
		tooLong := stamp.End-current[0].Start > maxSegmentSpan
		if endsSentence || longPause || tooLong {
			flush()
		}
	}
	flush()
	return segments
}
