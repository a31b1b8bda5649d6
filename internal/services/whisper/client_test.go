package whisper_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/services/whisper"
)

func TestTranscribeGroupsWordsIntoSegments(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		if r.FormValue("response_format") != "verbose_json" {
			t.Fatalf("expected verbose_json, got %q", r.FormValue("response_format"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text": "Hello there. How are you",
			"words": []map[string]any{
				{"word": "Hello", "start": 0.0, "end": 0.4},
				{"word": "there.", "start": 0.5, "end": 0.9},
				{"word": "How", "start": 2.5, "end": 2.8},
				{"word": "are", "start": 2.9, "end": 3.1},
				{"word": "you", "start": 3.2, "end": 3.4},
			},
		})
	}))
	defer server.Close()

	source := filepath.Join(t.TempDir(), "ep.mp3")
	if err := os.WriteFile(source, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	client := whisper.NewClient(whisper.Config{APIKey: "test", BaseURL: server.URL, Model: "whisper-1"})
	segments, err := client.Transcribe(context.Background(), source)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}

	if gotModel != "whisper-1" {
		t.Fatalf("expected model forwarded, got %q", gotModel)
	}
	if len(segments) != 2 {
		t.Fatalf("expected sentence break to split segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "Hello there." {
		t.Fatalf("unexpected first segment %q", segments[0].Text)
	}
	if segments[0].Start != 0 || segments[0].End != 0.9 {
		t.Fatalf("unexpected first segment bounds %+v", segments[0])
	}
	if segments[1].Text != "How are you" {
		t.Fatalf("unexpected second segment %q", segments[1].Text)
	}
	if len(segments[1].Words) != 3 {
		t.Fatalf("expected word stamps retained, got %d", len(segments[1].Words))
	}
}

func TestTranscribeEmptyTranscriptFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "", "words": []any{}})
	}))
	defer server.Close()

	source := filepath.Join(t.TempDir(), "ep.mp3")
	if err := os.WriteFile(source, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	client := whisper.NewClient(whisper.Config{APIKey: "test", BaseURL: server.URL})
	if _, err := client.Transcribe(context.Background(), source); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	client := whisper.NewClient(whisper.Config{})
	if _, err := client.Transcribe(context.Background(), "/nonexistent"); err == nil {
		t.Fatal("expected error without api key")
	}
}
