package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/logging"
)

func TestConsoleHandlerWritesKeyValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("clip rendered", logging.Int64("clip_id", 7), logging.String("status", "ready"))
	logger.Debug("should be filtered")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "clip rendered") {
		t.Fatalf("missing level or message: %q", out)
	}
	if !strings.Contains(out, "clip_id=7") || !strings.Contains(out, "status=ready") {
		t.Fatalf("missing attrs: %q", out)
	}
	if strings.Contains(out, "should be filtered") {
		t.Fatalf("debug record leaked at info level: %q", out)
	}
}

func TestComponentLoggerPrefixesMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logging.NewComponentLogger(logger, "worker").Info("tick")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "worker: tick") {
		t.Fatalf("expected component prefix, got %q", string(data))
	}
}

func TestJSONFormatProducesStructuredOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Warn("upload slow", logging.String("platform", "youtube"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"upload slow"`) || !strings.Contains(out, `"platform":"youtube"`) {
		t.Fatalf("unexpected json payload: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
