package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"songforge/internal/domain"
	"songforge/internal/orchestrator"
)

type jobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type musicTrackView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Prompt       string    `json:"prompt,omitempty"`
	Style        string    `json:"style,omitempty"`
	Model        string    `json:"model,omitempty"`
	Instrumental bool      `json:"instrumental"`
	Status       string    `json:"status"`
	AudioURL     string    `json:"audio_url,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	DurationSecs float64   `json:"duration_secs,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func musicView(t *domain.MusicTrack) musicTrackView {
	return musicTrackView{
		ID:           t.ID,
		Title:        t.Title,
		Prompt:       t.Prompt,
		Style:        t.Style,
		Model:        t.Model,
		Instrumental: t.Instrumental,
		Status:       string(t.Status),
		AudioURL:     t.AudioURL,
		ImageURL:     t.ImageURL,
		DurationSecs: t.DurationSecs,
		Error:        t.ErrorMessage,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// MusicCreate accepts a music generation request and answers with the job id
// before any provider work starts.
func (a *App) MusicCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req orchestrator.MusicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	jobID, err := a.Submitter.SubmitMusic(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("music submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue music job")
		return
	}
	a.json(w, http.StatusAccepted, jobResponse{JobID: jobID, Status: string(domain.JobStatusPending)})
}

// MusicGet returns the current snapshot of one track; clients poll this until
// they observe a terminal status.
func (a *App) MusicGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	track, err := a.Jobs.GetMusicTrack(r.Context(), jobID)
	if err != nil || track.OwnerID != userID {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	a.json(w, http.StatusOK, musicView(track))
}

// MusicList returns the caller's tracks, newest first.
func (a *App) MusicList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	tracks, err := a.Jobs.ListMusicTracksByOwner(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list tracks")
		return
	}
	items := make([]musicTrackView, 0, len(tracks))
	for i := range tracks {
		items = append(items, musicView(&tracks[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
