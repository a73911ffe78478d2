package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openAIProviderName = "openai"

// OpenAIOptions configures the primary lyric writer.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	Fallback   Writer
	OnFallback func(reason string, err error)
}

// OpenAIWriter asks an OpenAI-compatible chat endpoint for song content and
// defers to its fallback on any failure.
type OpenAIWriter struct {
	client     *openai.Client
	model      string
	fallback   Writer
	onFallback func(reason string, err error)
}

func NewOpenAIWriter(opts OpenAIOptions) *OpenAIWriter {
	var client *openai.Client
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		cfg := openai.DefaultConfig(key)
		if base := strings.TrimRight(opts.BaseURL, "/"); base != "" {
			cfg.BaseURL = base
		}
		client = openai.NewClientWithConfig(cfg)
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIWriter{
		client:     client,
		model:      model,
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}
}

func (o *OpenAIWriter) Write(ctx context.Context, req WriteRequest) (*Song, error) {
	if o.client == nil {
		return o.useFallback(ctx, req, "missing_api_key", nil)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a songwriter that only responds with valid JSON."},
			{Role: openai.ChatMessageRoleUser, Content: buildWritePrompt(req)},
		},
	})
	if err != nil {
		return o.useFallback(ctx, req, "chat_completion", err)
	}
	if len(resp.Choices) == 0 {
		return o.useFallback(ctx, req, "empty_choices", errors.New("no choices"))
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return o.useFallback(ctx, req, "empty_response", errors.New("empty response"))
	}

	song, err := parseSongPayload(text, req)
	if err != nil {
		return o.useFallback(ctx, req, "parse_payload", err)
	}
	song.Provider = openAIProviderName
	return song, nil
}

func (o *OpenAIWriter) useFallback(ctx context.Context, req WriteRequest, reason string, cause error) (*Song, error) {
	if o.onFallback != nil {
		o.onFallback(reason, cause)
	}
	next := o.fallback
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

var _ Writer = (*OpenAIWriter)(nil)

// parseSongPayload decodes the model's JSON answer, tolerating a markdown
// code fence around the object.
func parseSongPayload(text string, req WriteRequest) (*Song, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var song Song
	if err := json.Unmarshal([]byte(text), &song); err != nil {
		return nil, err
	}
	if strings.TrimSpace(song.Lyrics) == "" {
		return nil, errors.New("payload missing lyrics")
	}
	if song.Title == "" {
		song.Title = firstWords(req.Description, 5)
	}
	if song.Style == "" {
		song.Style = req.Style
	}
	return &song, nil
}
