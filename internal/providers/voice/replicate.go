// Package voice adapts the prediction-style voice conversion provider. A
// conversion is created as a prediction that usually completes
// asynchronously; the returned prediction id is polled until it reaches a
// terminal state.
package voice

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

const (
	TaskProcessing = "processing"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
)

// ConvertParams describes one voice conversion request.
type ConvertParams struct {
	VoiceModelID string
	AudioURL     string
	PitchMode    domain.PitchMode
}

// ConvertResult is the normalized outcome of a conversion call. Exactly one
// of AudioURL or TaskID is populated.
type ConvertResult struct {
	AudioURL string
	TaskID   string
}

// PollResult is the normalized outcome of one prediction status check.
type PollResult struct {
	Status   string
	AudioURL string
	Message  string
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the voice conversion API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

const defaultTimeout = 60 * time.Second

// NewClient builds a voice provider client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
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

type predictionRequest struct {
	Input struct {
		SongInput   string `json:"song_input"`
		RVCModel    string `json:"rvc_model"`
		PitchChange string `json:"pitch_change"`
	} `json:"input"`
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
	Detail string          `json:"detail"`
}

// Convert submits a voice conversion and normalizes the response into either
// an immediate output URL or a prediction id to poll.
func (c *Client) Convert(ctx context.Context, params ConvertParams) (*ConvertResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("voice provider %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(params.AudioURL) == "" {
		return nil, errors.New("audio url is required")
	}

	var payload predictionRequest
	payload.Input.SongInput = params.AudioURL
	payload.Input.RVCModel = params.VoiceModelID
	payload.Input.PitchChange = pitchChange(params.PitchMode)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice conversion: %w", err)
	}
	defer resp.Body.Close()

	var out predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("voice conversion: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := out.Detail
		if msg == "" && out.Error != nil {
			msg = *out.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("voice conversion: %s: %w", msg, domain.ErrProviderFailure)
	}

	// A prediction can come back already finished when the model output is
	// cached provider-side.
	if mapPredictionStatus(out.Status) == TaskCompleted {
		url, err := decodeOutputURL(out.Output)
		if err != nil {
			return nil, fmt.Errorf("voice conversion: %v: %w", err, domain.ErrProviderFailure)
		}
		return &ConvertResult{AudioURL: url}, nil
	}
	if out.ID == "" {
		return nil, fmt.Errorf("voice conversion: unrecognized response shape: %w", domain.ErrProviderFailure)
	}
	return &ConvertResult{TaskID: out.ID}, nil
}

// PollStatus checks a prediction. Safe to call repeatedly.
func (c *Client) PollStatus(ctx context.Context, taskID string) (*PollResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("voice provider %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(taskID) == "" {
		return nil, errors.New("task id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/predictions/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("voice poll: http %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	var out predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch mapPredictionStatus(out.Status) {
	case TaskCompleted:
		url, err := decodeOutputURL(out.Output)
		if err != nil {
			return &PollResult{Status: TaskFailed, Message: err.Error()}, nil
		}
		return &PollResult{Status: TaskCompleted, AudioURL: url}, nil
	case TaskFailed:
		msg := "conversion failed"
		if out.Error != nil && *out.Error != "" {
			msg = *out.Error
		}
		return &PollResult{Status: TaskFailed, Message: msg}, nil
	default:
		return &PollResult{Status: TaskProcessing}, nil
	}
}

func mapPredictionStatus(status string) string {
	switch strings.ToLower(status) {
	case "succeeded":
		return TaskCompleted
	case "failed", "canceled":
		return TaskFailed
	default:
		// starting, processing, queued, or anything new the provider invents.
		return TaskProcessing
	}
}

// decodeOutputURL parses the prediction output, which the provider returns as
// a bare string, an array of URLs, or an object carrying a url field.
func decodeOutputURL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("prediction output missing")
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
		return asString, nil
	}
	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil && len(asList) > 0 && asList[0] != "" {
		return asList[0], nil
	}
	var asObject struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.URL != "" {
		return asObject.URL, nil
	}
	return "", errors.New("unrecognized prediction output shape")
}

func pitchChange(mode domain.PitchMode) string {
	if mode == domain.PitchModeKeep {
		return "no-change"
	}
	return "pitch-shift"
}
