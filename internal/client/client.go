// Package client calls the gateway HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bjjvault/video-gateway/internal/models"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20
)

// APIError is a non-success response from the gateway.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Message)
}

// Client talks to one gateway instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client. httpClient may be nil.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Search calls GET /api/videos/search.
func (c *Client) Search(ctx context.Context, query string, provider models.ProviderID) ([]models.VideoSummary, error) {
	params := url.Values{}
	params.Set("q", query)
	if provider != "" {
		params.Set("provider", string(provider))
	}

	var videos []models.VideoSummary
	if _, err := c.get(ctx, "/api/videos/search?"+params.Encode(), &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// Transcription calls GET /api/videos/:provider/:id/transcription. A 500
// response that still carries text is returned as a degraded result.
func (c *Client) Transcription(ctx context.Context, provider models.ProviderID, videoID string) (models.Transcription, error) {
	path := fmt.Sprintf("/api/videos/%s/%s/transcription",
		url.PathEscape(string(provider)), url.PathEscape(videoID))

	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return models.Transcription{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Transcription{}, fmt.Errorf("request transcription: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.Transcription{}, fmt.Errorf("read response: %w", err)
	}

	var result models.Transcription
	if err := json.Unmarshal(body, &result); err == nil && result.Text != "" {
		result.Degraded = resp.StatusCode >= http.StatusInternalServerError
		if resp.StatusCode == http.StatusOK || result.Degraded {
			return result, nil
		}
	}
	return models.Transcription{}, apiError(resp.StatusCode, body)
}

func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, apiError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return req, nil
}

func apiError(status int, body []byte) error {
	var resp models.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		return &APIError{Status: status, Message: resp.Message}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
