package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	UploadDir  string `toml:"upload_dir"`
	OutputDir  string `toml:"output_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// OpenAI contains connection settings for the transcription and caption APIs.
type OpenAI struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ChatModel      string `toml:"chat_model"`
	WhisperModel   string `toml:"whisper_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// YouTube contains OAuth and upload settings for the publishing platform.
type YouTube struct {
	ClientID      string `toml:"client_id"`
	ClientSecret  string `toml:"client_secret"`
	RefreshToken  string `toml:"refresh_token"`
	CategoryID    string `toml:"category_id"`
	PrivacyStatus string `toml:"privacy_status"`
}

// Detection contains tuning for the clip candidate detection engine.
type Detection struct {
	MaxClipSeconds float64 `toml:"max_clip_seconds"`
	TopClips       int     `toml:"top_clips"`
	RefineWithLLM  bool    `toml:"refine_with_llm"`
}

// Worker contains settings for the upload worker loop.
type Worker struct {
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	Platform            string `toml:"platform"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipforge.
//
// Configuration sections by subsystem:
//   - Paths: upload/output/staging/log directories
//   - OpenAI: transcription (whisper) and caption/refinement (chat) API
//   - YouTube: OAuth credentials and upload defaults
//   - Detection: candidate detection tuning
//   - Worker: upload worker polling
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	OpenAI    OpenAI    `toml:"openai"`
	YouTube   YouTube   `toml:"youtube"`
	Detection Detection `toml:"detection"`
	Worker    Worker    `toml:"worker"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// applyEnv overlays credential settings from the environment. Environment
// values win over the file so secrets can stay out of config.toml.
func (c *Config) applyEnv() {
	for _, binding := range []struct {
		key    string
		target *string
	}{
		{"OPENAI_API_KEY", &c.OpenAI.APIKey},
		{"YOUTUBE_CLIENT_ID", &c.YouTube.ClientID},
		{"YOUTUBE_CLIENT_SECRET", &c.YouTube.ClientSecret},
		{"YOUTUBE_REFRESH_TOKEN", &c.YouTube.RefreshToken},
	} {
		if value := strings.TrimSpace(os.Getenv(binding.key)); value != "" {
			*binding.target = value
		}
	}
}

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.UploadDir,
		&c.Paths.OutputDir,
		&c.Paths.StagingDir,
		&c.Paths.LogDir,
	} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	c.YouTube.ClientID = strings.TrimSpace(c.YouTube.ClientID)
	c.YouTube.ClientSecret = strings.TrimSpace(c.YouTube.ClientSecret)
	c.YouTube.RefreshToken = strings.TrimSpace(c.YouTube.RefreshToken)
	return nil
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadDir, c.Paths.OutputDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for clip rendering.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
