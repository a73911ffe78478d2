package lyrics

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
)

const geminiProviderName = "gemini"

const geminiDefaultTimeout = 20 * time.Second

// GeminiOptions configures the secondary lyric writer.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Writer
	OnFallback func(reason string, err error)
}

// GeminiWriter asks the Gemini generateContent endpoint for song content and
// defers to its fallback on any failure.
type GeminiWriter struct {
	apiKey     string
	model      string
	baseURL    string
	client     *http.Client
	fallback   Writer
	onFallback func(reason string, err error)
}

func NewGeminiWriter(opts GeminiOptions) *GeminiWriter {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiWriter{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		baseURL:    baseURL,
		client:     client,
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiWriter) Write(ctx context.Context, req WriteRequest) (*Song, error) {
	if g.apiKey == "" {
		return g.useFallback(ctx, req, "missing_api_key", nil)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildWritePrompt(req)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.7,
			ResponseMimeType: "application/json",
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return g.useFallback(ctx, req, "encode_request", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return g.useFallback(ctx, req, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return g.useFallback(ctx, req, "http_request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return g.useFallback(ctx, req, fmt.Sprintf("http_%d", resp.StatusCode), fmt.Errorf("gemini status %d", resp.StatusCode))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return g.useFallback(ctx, req, "decode_response", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return g.useFallback(ctx, req, "empty_candidates", errors.New("no candidates"))
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return g.useFallback(ctx, req, "empty_response", errors.New("empty response"))
	}

	song, err := parseSongPayload(text, req)
	if err != nil {
		return g.useFallback(ctx, req, "parse_payload", err)
	}
	song.Provider = geminiProviderName
	return song, nil
}

func (g *GeminiWriter) useFallback(ctx context.Context, req WriteRequest, reason string, cause error) (*Song, error) {
	if g.onFallback != nil {
		g.onFallback(reason, cause)
	}
	next := g.fallback
	if next == nil {
		next = NewStaticWriter()
	}
	song, err := next.Write(ctx, req)
	if song != nil {
		if song.Metadata == nil {
			song.Metadata = map[string]string{}
		}
		song.Metadata["fallback_reason"] = reason
	}
	return song, err
}

var _ Writer = (*GeminiWriter)(nil)
