// Package artwork generates cover images for music tracks. Artwork is a
// best-effort decoration: callers treat every error here as non-fatal.
package artwork

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"songforge/internal/domain"
)

// Generator produces a cover image URL for a track.
type Generator interface {
	Generate(ctx context.Context, title, style string) (string, error)
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the image generation API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

const defaultTimeout = 60 * time.Second

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.minimax.io/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		client:  client,
	}
}

type generateRequest struct {
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	N           int    `json:"n"`
}

type generateResponse struct {
	Data struct {
		ImageURLs []string `json:"image_urls"`
	} `json:"data"`
	BaseResp struct {
		StatusCode int    `json:"status_code"`
		StatusMsg  string `json:"status_msg"`
	} `json:"base_resp"`
}

// Generate requests one square cover image and returns its URL.
func (c *Client) Generate(ctx context.Context, title, style string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("artwork provider %w", domain.ErrNotConfigured)
	}

	prompt := fmt.Sprintf("Album cover art for a song titled %q", title)
	if style != "" {
		prompt += fmt.Sprintf(", in %s style", style)
	}
	prompt += ". No text or lettering."

	payload := generateRequest{
		Model:       "image-01",
		Prompt:      prompt,
		AspectRatio: "1:1",
		N:           1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image_generation", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("artwork generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("artwork generation: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.BaseResp.StatusCode != 0 {
		return "", fmt.Errorf("artwork generation: %s: %w", out.BaseResp.StatusMsg, domain.ErrProviderFailure)
	}
	if len(out.Data.ImageURLs) == 0 || out.Data.ImageURLs[0] == "" {
		return "", errors.New("artwork generation: empty image list")
	}
	return out.Data.ImageURLs[0], nil
}

var _ Generator = (*Client)(nil)
