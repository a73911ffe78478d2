package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"songforge/internal/domain"
	"songforge/internal/middleware"
	"songforge/internal/orchestrator"
)

// Submitter accepts generation requests.
type Submitter interface {
	SubmitMusic(ctx context.Context, ownerID string, req orchestrator.MusicRequest) (string, error)
	SubmitCover(ctx context.Context, ownerID string, req orchestrator.CoverRequest) (string, error)
}

// JobReader reads persisted job snapshots.
type JobReader interface {
	GetMusicTrack(ctx context.Context, id string) (*domain.MusicTrack, error)
	ListMusicTracksByOwner(ctx context.Context, ownerID string) ([]domain.MusicTrack, error)
	GetVoiceCover(ctx context.Context, id string) (*domain.VoiceCover, error)
	ListVoiceCoversByOwner(ctx context.Context, ownerID string) ([]domain.VoiceCover, error)
}

// App bundles handler dependencies.
type App struct {
	Submitter Submitter
	Jobs      JobReader
	Logger    zerolog.Logger
	// Download client for the proxy endpoint; defaults applied in NewApp.
	HTTPClient *http.Client
}

func NewApp(submitter Submitter, jobs JobReader, logger zerolog.Logger) *App {
	return &App{
		Submitter:  submitter,
		Jobs:       jobs,
		Logger:     logger,
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": kind, "message": message},
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
