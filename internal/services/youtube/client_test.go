package youtube_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/services/youtube"
)

func newTestClient(t *testing.T, handler http.Handler) (*youtube.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := youtube.NewClient(
		youtube.Config{
			ClientID:      "id",
			ClientSecret:  "secret",
			RefreshToken:  "refresh",
			CategoryID:    "22",
			PrivacyStatus: "public",
		},
		youtube.WithEndpoints(server.URL+"/token", server.URL+"/upload", server.URL+"/api"),
	)
	return client, server
}

func TestUploadExchangesTokenAndSendsMetadata(t *testing.T) {
	var sawRefreshToken, sawMetadata string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		sawRefreshToken = r.FormValue("refresh_token")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "token-1", "expires_in": 3600})
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Fatalf("unexpected auth header %q", got)
		}
		if !strings.Contains(r.URL.RawQuery, "uploadType=multipart") {
			t.Fatalf("expected multipart upload query, got %q", r.URL.RawQuery)
		}
		body, _ := io.ReadAll(r.Body)
		sawMetadata = string(body)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "vid123"})
	})

	client, _ := newTestClient(t, mux)

	videoPath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	videoID, err := client.Upload(context.Background(), videoPath, youtube.UploadOptions{
		Title:       "Clip Title",
		Description: "Description",
		Tags:        []string{"#shorts"},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if videoID != "vid123" {
		t.Fatalf("expected vid123, got %q", videoID)
	}
	if sawRefreshToken != "refresh" {
		t.Fatalf("expected refresh token exchanged, got %q", sawRefreshToken)
	}
	for _, fragment := range []string{`"categoryId":"22"`, `"privacyStatus":"public"`, `"selfDeclaredMadeForKids":false`, "Clip Title"} {
		if !strings.Contains(sawMetadata, fragment) {
			t.Fatalf("expected %q in upload body", fragment)
		}
	}
}

func TestUploadFailsOnHTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "token-1", "expires_in": 3600})
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	client, _ := newTestClient(t, mux)

	videoPath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	if _, err := client.Upload(context.Background(), videoPath, youtube.UploadOptions{Title: "t"}); err == nil {
		t.Fatal("expected error on http failure")
	}
}

func TestPostCommentReturnsCommentID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "token-1", "expires_in": 3600})
	})
	mux.HandleFunc("/api/commentThreads", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		snippet := payload["snippet"].(map[string]any)
		if snippet["videoId"] != "vid123" {
			t.Fatalf("unexpected videoId %v", snippet["videoId"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "comment-1"})
	})

	client, _ := newTestClient(t, mux)

	commentID, err := client.PostComment(context.Background(), "vid123", "great clip!")
	if err != nil {
		t.Fatalf("post comment: %v", err)
	}
	if commentID != "comment-1" {
		t.Fatalf("expected comment-1, got %q", commentID)
	}
}

func TestVideoURL(t *testing.T) {
	client := youtube.NewClient(youtube.Config{})
	if got := client.VideoURL("abc"); got != "https://www.youtube.com/shorts/abc" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestTokenReusedUntilExpiry(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "token-1", "expires_in": 3600})
	})
	mux.HandleFunc("/api/thumbnails/set", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	client, _ := newTestClient(t, mux)

	thumbPath := filepath.Join(t.TempDir(), "thumb.jpg")
	if err := os.WriteFile(thumbPath, []byte("jpg"), 0o644); err != nil {
		t.Fatalf("write thumb: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := client.SetThumbnail(context.Background(), "vid123", thumbPath); err != nil {
			t.Fatalf("set thumbnail: %v", err)
		}
	}
	if tokenCalls != 1 {
		t.Fatalf("expected a single token exchange, got %d", tokenCalls)
	}
}
