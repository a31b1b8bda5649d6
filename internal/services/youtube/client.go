package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"clipforge/internal/logging"
	"clipforge/internal/services"
)

const (
	defaultTokenURL  = "https://oauth2.googleapis.com/token"
	defaultUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos"
	defaultAPIURL    = "https://www.googleapis.com/youtube/v3"

	defaultHTTPTimeout = 10 * time.Minute
	tokenExpirySlack   = 30 * time.Second
)

// Config captures the OAuth and publish settings for the YouTube API.
type Config struct {
	ClientID      string
	ClientSecret  string
	RefreshToken  string
	CategoryID    string
	PrivacyStatus string
}

// UploadOptions carries the metadata for a video insert.
type UploadOptions struct {
	Title       string
	Description string
	Tags        []string
}

// Client publishes videos through the YouTube Data API using a long-lived
// refresh token.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	tokenURL  string
	uploadURL string
	apiURL    string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
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

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEndpoints overrides the API endpoints, primarily for tests.
func WithEndpoints(tokenURL, uploadURL, apiURL string) Option {
	return func(c *Client) {
		if tokenURL != "" {
			c.tokenURL = tokenURL
		}
		if uploadURL != "" {
			c.uploadURL = uploadURL
		}
		if apiURL != "" {
			c.apiURL = strings.TrimRight(apiURL, "/")
		}
	}
}

// NewClient constructs a publishing client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			ClientID:      strings.TrimSpace(cfg.ClientID),
			ClientSecret:  strings.TrimSpace(cfg.ClientSecret),
			RefreshToken:  strings.TrimSpace(cfg.RefreshToken),
			CategoryID:    strings.TrimSpace(cfg.CategoryID),
			PrivacyStatus: strings.TrimSpace(cfg.PrivacyStatus),
		},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logging.NewNop(),
		tokenURL:   defaultTokenURL,
		uploadURL:  defaultUploadURL,
		apiURL:     defaultAPIURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.CategoryID == "" {
		client.cfg.CategoryID = "22"
	}
	if client.cfg.PrivacyStatus == "" {
		client.cfg.PrivacyStatus = "public"
	}
	return client
}

func (c *Client) accessTokenLocked(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpirySlack)) {
		return c.accessToken, nil
	}

	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" || c.cfg.RefreshToken == "" {
		return "", services.Wrap(services.ErrConfiguration, "publish", "token", "youtube oauth credentials required", nil)
	}

	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("refresh_token", c.cfg.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "token", "build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "publish", "token", "token refresh failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "publish", "token", "read token response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrExternalTool, "publish", "token",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var decoded struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "token", "decode token response", err)
	}
	if decoded.AccessToken == "" {
		return "", services.Wrap(services.ErrExternalTool, "publish", "token", "no access token returned", nil)
	}

	c.accessToken = decoded.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(decoded.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// Upload publishes a video file with its metadata and returns the external
// video id.
func (c *Client) Upload(ctx context.Context, videoPath string, options UploadOptions) (string, error) {
	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return "", err
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "publish", "upload", "open video file", err)
	}
	defer file.Close()

	metadata := map[string]any{
		"snippet": map[string]any{
			"title":       options.Title,
			"description": options.Description,
			"tags":        options.Tags,
			"categoryId":  c.cfg.CategoryID,
		},
		"status": map[string]any{
			"privacyStatus":           c.cfg.PrivacyStatus,
			"selfDeclaredMadeForKids": false,
		},
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload", "marshal metadata", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload", "build request", err)
	}
	if _, err := metaPart.Write(metadataJSON); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload", "build request", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", "video/mp4")
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload", "build request", err)
	}
	if _, err := io.Copy(mediaPart, file); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload", "read video file", err)
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload", "build request", err)
	}

	uploadURL := c.uploadURL + "?uploadType=multipart&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "publish", "upload", "upload request failed", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "publish", "upload", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody))), nil)
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(responseBody, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload", "decode response", err)
	}
	if decoded.ID == "" {
		return "", services.Wrap(services.ErrExternalTool, "publish", "upload", "no video id returned", nil)
	}

	c.logger.Info("video uploaded", logging.String("video_id", decoded.ID))
	return decoded.ID, nil
}

// SetThumbnail attaches a custom thumbnail to a published video. Failures are
// the caller's to swallow: the operation is declared best-effort in the
// publish flow.
func (c *Client) SetThumbnail(ctx context.Context, videoID, thumbnailPath string) error {
	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(thumbnailPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "publish", "set_thumbnail", "read thumbnail", err)
	}

	endpoint := c.apiURL + "/thumbnails/set?videoId=" + url.QueryEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "publish", "set_thumbnail", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "set_thumbnail", "thumbnail request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return services.Wrap(services.ErrExternalTool, "publish", "set_thumbnail",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return nil
}

// PostComment inserts a top-level comment on a published video and returns
// the comment id.
func (c *Client) PostComment(ctx context.Context, videoID, text string) (string, error) {
	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"snippet": map[string]any{
			"videoId": videoID,
			"topLevelComment": map[string]any{
				"snippet": map[string]any{
					"textOriginal": text,
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "post_comment", "marshal request", err)
	}

	endpoint := c.apiURL + "/commentThreads?part=snippet"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "post_comment", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "publish", "post_comment", "comment request failed", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "publish", "post_comment", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrExternalTool, "publish", "post_comment",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody))), nil)
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(responseBody, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "post_comment", "decode response", err)
	}
	return decoded.ID, nil
}

// VideoURL returns the public shorts URL for a video id.
func (c *Client) VideoURL(videoID string) string {
	return "https://www.youtube.com/shorts/" + videoID
}
