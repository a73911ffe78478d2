// Package music adapts the external music synthesis provider behind a
// uniform generate/poll interface. The provider answers either with inline
// audio (hex/base64/data-url encoded, possibly compressed) or with a task id
// that must be polled until generation finishes.
package music

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"songforge/internal/domain"
)

// Task handle poll outcomes at the adapter level. The composite job status
// (pending) belongs to the orchestrator, not here.
const (
	TaskProcessing = "processing"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
)

// GenerateParams describes one music generation request.
type GenerateParams struct {
	Title        string
	Lyrics       string
	Style        string
	Model        string
	Instrumental bool
	VoiceGender  string
}

// GenerateResult is the normalized outcome of a generate call. Exactly one of
// AudioURL, AudioData, or TaskID is populated.
type GenerateResult struct {
	AudioURL  string
	AudioData []byte
	MimeType  string
	Extension string
	TaskID    string
}

// PollResult is the normalized outcome of one status check.
type PollResult struct {
	Status    string
	AudioURL  string
	AudioData []byte
	MimeType  string
	Extension string
	Message   string
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Client talks to the music synthesis API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

const defaultTimeout = 120 * time.Second

// NewClient builds a music provider client. An empty API key is permitted;
// calls then fail fast with a configuration error instead of hitting the
// network.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.minimax.io/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "music-1.5"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		model:   model,
		client:  client,
	}
}

type generateRequest struct {
	Model        string `json:"model"`
	Prompt       string `json:"prompt,omitempty"`
	Lyrics       string `json:"lyrics,omitempty"`
	Style        string `json:"style,omitempty"`
	Instrumental bool   `json:"instrumental"`
	VoiceGender  string `json:"voice_gender,omitempty"`
	AudioSetting struct {
		Format string `json:"format"`
	} `json:"audio_setting"`
}

type generateResponse struct {
	Data struct {
		Audio  string `json:"audio"`
		Format string `json:"format"`
	} `json:"data"`
	TaskID   string `json:"task_id"`
	BaseResp struct {
		StatusCode int    `json:"status_code"`
		StatusMsg  string `json:"status_msg"`
	} `json:"base_resp"`
}

type pollResponse struct {
	Status   string `json:"status"`
	AudioURL string `json:"audio_url"`
	Data     struct {
		Audio  string `json:"audio"`
		Format string `json:"format"`
	} `json:"data"`
	BaseResp struct {
		StatusCode int    `json:"status_code"`
		StatusMsg  string `json:"status_msg"`
	} `json:"base_resp"`
}

// Generate submits a generation request and normalizes the response into
// either an inline audio result or a task handle.
func (c *Client) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("music provider %w", domain.ErrNotConfigured)
	}

	payload := generateRequest{
		Model:        c.model,
		Prompt:       params.Title,
		Lyrics:       params.Lyrics,
		Style:        params.Style,
		Instrumental: params.Instrumental,
		VoiceGender:  params.VoiceGender,
	}
	if params.Model != "" {
		payload.Model = params.Model
	}
	payload.AudioSetting.Format = "mp3"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/music_generation", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("music generation: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("music generation: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || out.BaseResp.StatusCode != 0 {
		msg := out.BaseResp.StatusMsg
		if msg == "" {
			msg = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("music generation: %s: %w", msg, domain.ErrProviderFailure)
	}

	switch {
	case out.Data.Audio != "":
		audio, err := DecodeAudioPayload(out.Data.Audio)
		if err != nil {
			return nil, fmt.Errorf("music generation: %v: %w", err, domain.ErrProviderFailure)
		}
		mimeType, ext := ResolveAudioFormat(out.Data.Format)
		return &GenerateResult{AudioData: audio, MimeType: mimeType, Extension: ext}, nil
	case out.TaskID != "":
		return &GenerateResult{TaskID: out.TaskID}, nil
	default:
		return nil, fmt.Errorf("music generation: unrecognized response shape: %w", domain.ErrProviderFailure)
	}
}

// PollStatus checks a task handle. It is a pure remote read and is safe to
// call repeatedly.
func (c *Client) PollStatus(ctx context.Context, taskID string) (*PollResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("music provider %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(taskID) == "" {
		return nil, errors.New("task id is required")
	}

	endpoint := fmt.Sprintf("%s/query/music_generation?task_id=%s", c.baseURL, url.QueryEscape(taskID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("music poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("music poll: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	var out pollResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.BaseResp.StatusCode != 0 {
		return &PollResult{Status: TaskFailed, Message: out.BaseResp.StatusMsg}, nil
	}

	switch strings.ToLower(out.Status) {
	case "success", "succeeded", "completed":
		res := &PollResult{Status: TaskCompleted, AudioURL: out.AudioURL}
		if res.AudioURL == "" && out.Data.Audio != "" {
			audio, err := DecodeAudioPayload(out.Data.Audio)
			if err != nil {
				return &PollResult{Status: TaskFailed, Message: err.Error()}, nil
			}
			res.AudioData = audio
			res.MimeType, res.Extension = ResolveAudioFormat(out.Data.Format)
		}
		if res.AudioURL == "" && len(res.AudioData) == 0 {
			return &PollResult{Status: TaskFailed, Message: "completed without audio"}, nil
		}
		return res, nil
	case "failed", "error":
		msg := out.BaseResp.StatusMsg
		if msg == "" {
			msg = "generation failed"
		}
		return &PollResult{Status: TaskFailed, Message: msg}, nil
	default:
		return &PollResult{Status: TaskProcessing}, nil
	}
}
