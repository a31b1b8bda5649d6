package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.Detection.MaxClipSeconds != 60 {
		t.Fatalf("max clip seconds: got %v", cfg.Detection.MaxClipSeconds)
	}
	if cfg.Worker.Platform != "youtube" {
		t.Fatalf("platform: got %q", cfg.Worker.Platform)
	}
}

func TestLoadAppliesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`output_dir = "` + filepath.Join(dir, "out") + `"`,
		"",
		"[detection]",
		"top_clips = 3",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %s to exist, got %s exists=%t", path, resolved, exists)
	}
	if cfg.Detection.TopClips != 3 {
		t.Fatalf("top_clips override: got %d", cfg.Detection.TopClips)
	}
	if cfg.Paths.OutputDir != filepath.Join(dir, "out") {
		t.Fatalf("output_dir override: got %q", cfg.Paths.OutputDir)
	}
	// Untouched sections keep their defaults.
	if cfg.OpenAI.WhisperModel != "whisper-1" {
		t.Fatalf("whisper model default: got %q", cfg.OpenAI.WhisperModel)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, _, exists, err := config.Load(filepath.Join(dir, "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("file must not exist")
	}
	if cfg.Detection.TopClips != 10 {
		t.Fatalf("expected default top_clips, got %d", cfg.Detection.TopClips)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[openai]\napi_key = \"from-file\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAI.APIKey != "from-env" {
		t.Fatalf("expected env to win, got %q", cfg.OpenAI.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := config.Default()
	cfg.Detection.TopClips = 0
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "top_clips") || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected both problems reported, got %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample must parse and validate: %v", err)
	}
	if !exists {
		t.Fatal("sample file must exist")
	}
	if cfg.Worker.PollIntervalSeconds != 60 {
		t.Fatalf("sample poll interval: got %d", cfg.Worker.PollIntervalSeconds)
	}
}
