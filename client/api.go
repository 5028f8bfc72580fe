// Package client is the typed HTTP client for the playlist API. It
// implements the session sync interface and the audio track source.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"hbcplayer/model"

	"github.com/google/uuid"
)

const requestTimeout = 15 * time.Second

// Client talks to the playlist API server. A zero token means guest
// mode; authenticated endpoints will fail until Login or SetToken.
type Client struct {
	baseURL  string
	http     *http.Client
	deviceID string

	mu    sync.RWMutex
	token string
}

// New creates a client for the given base URL. Each client identifies
// itself with a stable device id so the sync hub can avoid echoing its
// own writes back.
func New(baseURL string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: requestTimeout},
		deviceID: uuid.NewString(),
	}
}

// DeviceID returns this client's device identifier.
func (c *Client) DeviceID() string { return c.deviceID }

// SetToken installs an access token obtained elsewhere.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current access token, empty for guests.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs a JSON request. out may be nil when the body is ignored.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Device-ID", c.deviceID)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request %s %s failed: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
		}
	}
	return nil
}

// Login authenticates and installs the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp.User, nil
}

// FetchPlaylist returns the authenticated user's stored playlist.
func (c *Client) FetchPlaylist(ctx context.Context) (model.Playlist, error) {
	var playlist model.Playlist
	if err := c.do(ctx, http.MethodGet, "/api/users/me/playlist", nil, &playlist); err != nil {
		return model.Playlist{}, err
	}
	return playlist, nil
}

// SavePlaylist replaces the authenticated user's stored playlist.
func (c *Client) SavePlaylist(ctx context.Context, playlist model.Playlist) error {
	return c.do(ctx, http.MethodPut, "/api/users/me/playlist", playlist, nil)
}

// ResolveAutoPlaylist asks the server for the track-id list of a context.
func (c *Client) ResolveAutoPlaylist(ctx context.Context, req model.AutoPlaylistRequest) ([]int64, error) {
	var resp model.PlaylistTracksResponse
	if err := c.do(ctx, http.MethodPost, "/api/playlists/auto", req, &resp); err != nil {
		return nil, err
	}
	return resp.TrackIDs, nil
}

// ResolveManualPlaylist validates an explicit track-id list.
func (c *Client) ResolveManualPlaylist(ctx context.Context, trackIDs []int64) ([]int64, error) {
	var resp model.PlaylistTracksResponse
	err := c.do(ctx, http.MethodPost, "/api/playlists/manual", model.ManualPlaylistRequest{TrackIDs: trackIDs}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.TrackIDs, nil
}

// Product fetches product metadata for a track identifier.
func (c *Client) Product(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Open streams the preview audio of a track. Implements the audio
// track source.
func (c *Client) Open(ctx context.Context, trackID int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/products/%d/preview", c.baseURL, trackID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build preview request: %w", err)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// No client timeout here: the preview streams for the length of the
	// track. The context governs cancellation.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("preview request for track %d failed: %w", trackID, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("preview request for track %d failed: status %d", trackID, resp.StatusCode)
	}
	return resp.Body, nil
}
