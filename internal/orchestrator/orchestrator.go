// Package orchestrator turns validated generation requests into tracked
// asynchronous jobs and drives each to a terminal state. Submission persists
// a pending row and returns immediately; a single detached task then owns all
// further writes to that job, so no two writers ever race on one row.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"songforge/internal/acquire"
	"songforge/internal/domain"
	"songforge/internal/providers/artwork"
	"songforge/internal/providers/lyrics"
	"songforge/internal/providers/music"
	"songforge/internal/providers/voice"
	"songforge/internal/storage"
)

// JobStore is the persistence surface the orchestrator depends on.
type JobStore interface {
	CreateMusicTrack(ctx context.Context, track *domain.MusicTrack) error
	UpdateMusicTrack(ctx context.Context, id string, changes domain.MusicTrackChanges) error
	CreateVoiceCover(ctx context.Context, cover *domain.VoiceCover) error
	UpdateVoiceCover(ctx context.Context, id string, changes domain.VoiceCoverChanges) error
}

// MusicProvider generates music and reports on asynchronous tasks.
type MusicProvider interface {
	Generate(ctx context.Context, params music.GenerateParams) (*music.GenerateResult, error)
	PollStatus(ctx context.Context, taskID string) (*music.PollResult, error)
}

// VoiceProvider converts vocals and reports on asynchronous predictions.
type VoiceProvider interface {
	Convert(ctx context.Context, params voice.ConvertParams) (*voice.ConvertResult, error)
	PollStatus(ctx context.Context, taskID string) (*voice.PollResult, error)
}

// DurationProber measures audio duration. Optional; failures are ignored.
type DurationProber interface {
	Duration(ctx context.Context, url string) (float64, error)
}

// Options wires an Orchestrator.
type Options struct {
	Store   JobStore
	Music   MusicProvider
	Voice   VoiceProvider
	Lyrics  lyrics.Writer
	Artwork artwork.Generator
	Acquire acquire.Fetcher
	Assets  storage.Store
	Runner  Runner
	Logger  zerolog.Logger
	Prober  DurationProber

	PollInterval time.Duration
	PollAttempts int
}

// Orchestrator owns the job state machine for music tracks and voice covers.
type Orchestrator struct {
	store    JobStore
	music    MusicProvider
	voice    VoiceProvider
	lyrics   lyrics.Writer
	artwork  artwork.Generator
	acquire  acquire.Fetcher
	assets   storage.Store
	runner   Runner
	logger   zerolog.Logger
	prober   DurationProber
	validate *validator.Validate

	pollInterval time.Duration
	pollAttempts int
}

func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	if opts.Runner == nil {
		return nil, errors.New("orchestrator: runner is required")
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	attempts := opts.PollAttempts
	if attempts <= 0 {
		attempts = 60
	}
	return &Orchestrator{
		store:        opts.Store,
		music:        opts.Music,
		voice:        opts.Voice,
		lyrics:       opts.Lyrics,
		artwork:      opts.Artwork,
		acquire:      opts.Acquire,
		assets:       opts.Assets,
		runner:       opts.Runner,
		logger:       opts.Logger,
		prober:       opts.Prober,
		validate:     validator.New(),
		pollInterval: interval,
		pollAttempts: attempts,
	}, nil
}

// MusicRequest is a validated music generation submission. When Title is set
// the text is taken as explicit lyrics; otherwise it is a free-text
// description handed to the lyric writer.
type MusicRequest struct {
	LyricsOrDescription string `json:"lyrics_or_description" validate:"max=5000"`
	Title               string `json:"title" validate:"max=200"`
	Style               string `json:"style" validate:"max=200"`
	Model               string `json:"model" validate:"max=100"`
	Instrumental        bool   `json:"instrumental"`
	VoiceGender         string `json:"voice_gender" validate:"omitempty,oneof=male female"`
}

// CoverRequest is a validated voice cover submission.
type CoverRequest struct {
	VoiceModelID string `json:"voice_model_id" validate:"required,max=200"`
	VoiceName    string `json:"voice_name" validate:"max=200"`
	SourceAudio  string `json:"source_audio" validate:"required,url"`
	PitchMode    string `json:"pitch_mode" validate:"omitempty,oneof=auto keep"`
}

// SubmitMusic validates the request, persists a pending track, and spawns its
// background task. It never blocks on provider latency.
func (o *Orchestrator) SubmitMusic(ctx context.Context, ownerID string, req MusicRequest) (string, error) {
	if err := o.validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if !req.Instrumental && strings.TrimSpace(req.LyricsOrDescription) == "" {
		return "", fmt.Errorf("%w: lyrics or description required for vocal tracks", domain.ErrInvalidRequest)
	}

	track := &domain.MusicTrack{
		ID:           newJobID(),
		OwnerID:      ownerID,
		Title:        req.Title,
		Style:        req.Style,
		Model:        req.Model,
		Instrumental: req.Instrumental,
		Status:       domain.JobStatusPending,
	}
	if err := o.store.CreateMusicTrack(ctx, track); err != nil {
		return "", fmt.Errorf("create track: %w", err)
	}

	id := track.ID
	o.runner.Go("music:"+id, func(ctx context.Context) {
		o.runMusicJob(ctx, id, req)
	})
	return id, nil
}

// SubmitCover validates the request, persists a pending cover, and spawns its
// background task.
func (o *Orchestrator) SubmitCover(ctx context.Context, ownerID string, req CoverRequest) (string, error) {
	if err := o.validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	pitch := domain.PitchMode(req.PitchMode)
	if pitch == "" {
		pitch = domain.PitchModeAuto
	}

	cover := &domain.VoiceCover{
		ID:               newJobID(),
		OwnerID:          ownerID,
		VoiceID:          req.VoiceModelID,
		VoiceName:        req.VoiceName,
		OriginalAudioURL: req.SourceAudio,
		PitchMode:        pitch,
		Status:           domain.JobStatusPending,
	}
	if err := o.store.CreateVoiceCover(ctx, cover); err != nil {
		return "", fmt.Errorf("create cover: %w", err)
	}

	id := cover.ID
	o.runner.Go("cover:"+id, func(ctx context.Context) {
		o.runCoverJob(ctx, id, req)
	})
	return id, nil
}

// sleep waits one poll interval, honoring context cancellation.
func (o *Orchestrator) sleep(ctx context.Context) {
	select {
	case <-time.After(o.pollInterval):
	case <-ctx.Done():
	}
}

func newJobID() string { return uuid.NewString() }

func strPtr(s string) *string { return &s }

func statusPtr(s domain.JobStatus) *domain.JobStatus { return &s }
