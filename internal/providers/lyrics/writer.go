// Package lyrics synthesizes a song title, style, and lyric text from a
// free-text description. Providers are chained: the primary LLM falls back to
// a secondary LLM, which falls back to a deterministic template, so a job
// submission never hard-fails purely because no LLM credential is configured.
package lyrics

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WriteRequest carries the user's free-text description of the song.
type WriteRequest struct {
	Description string
	Style       string
	VoiceGender string
}

// Song is the synthesized lyric content handed to music generation.
type Song struct {
	Title    string            `json:"title"`
	Style    string            `json:"style"`
	Lyrics   string            `json:"lyrics"`
	Provider string            `json:"-"`
	Metadata map[string]string `json:"-"`
}

// Writer produces song content from a description.
type Writer interface {
	Write(ctx context.Context, req WriteRequest) (*Song, error)
}

const staticProviderName = "static"

// StaticWriter emits deterministic placeholder content. It is the terminal
// link of the fallback chain and never fails.
type StaticWriter struct{}

func NewStaticWriter() *StaticWriter {
	return &StaticWriter{}
}

func (s *StaticWriter) Write(ctx context.Context, req WriteRequest) (*Song, error) {
	c := cases.Title(language.Und)
	theme := strings.TrimSpace(req.Description)
	if theme == "" {
		theme = "a song"
	}
	title := c.String(firstWords(theme, 5))
	style := req.Style
	if style == "" {
		style = "pop"
	}
	lyrics := fmt.Sprintf(
		"[Verse]\nThis is a song about %s\nEvery line returns to %s\n\n[Chorus]\n%s, %s\nSinging it over again\n",
		theme, theme, title, title,
	)
	return &Song{
		Title:    title,
		Style:    style,
		Lyrics:   lyrics,
		Provider: staticProviderName,
		Metadata: map[string]string{},
	}, nil
}

func firstWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

var _ Writer = (*StaticWriter)(nil)

func buildWritePrompt(req WriteRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("You are a songwriter. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"title":string,"style":string,"lyrics":string}`)
	fmt.Fprintf(sb, ". Write complete song lyrics with [Verse] and [Chorus] sections based on this description: %q.", req.Description)
	if req.Style != "" {
		fmt.Fprintf(sb, " Musical style: %q.", req.Style)
	}
	if req.VoiceGender != "" {
		fmt.Fprintf(sb, " The song will be sung by a %s voice.", req.VoiceGender)
	}
	return sb.String()
}
