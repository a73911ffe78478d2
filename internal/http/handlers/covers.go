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

type voiceCoverView struct {
	ID               string    `json:"id"`
	VoiceID          string    `json:"voice_id"`
	VoiceName        string    `json:"voice_name,omitempty"`
	OriginalAudioURL string    `json:"original_audio_url,omitempty"`
	SourceTitle      string    `json:"source_title,omitempty"`
	PitchMode        string    `json:"pitch_mode"`
	Status           string    `json:"status"`
	OutputAudioURL   string    `json:"output_audio_url,omitempty"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func coverView(c *domain.VoiceCover) voiceCoverView {
	return voiceCoverView{
		ID:               c.ID,
		VoiceID:          c.VoiceID,
		VoiceName:        c.VoiceName,
		OriginalAudioURL: c.OriginalAudioURL,
		SourceTitle:      c.SourceTitle,
		PitchMode:        string(c.PitchMode),
		Status:           string(c.Status),
		OutputAudioURL:   c.OutputAudioURL,
		Error:            c.ErrorMessage,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// CoverCreate accepts a voice cover request and answers with the job id.
func (a *App) CoverCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req orchestrator.CoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	jobID, err := a.Submitter.SubmitCover(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("cover submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue cover job")
		return
	}
	a.json(w, http.StatusAccepted, jobResponse{JobID: jobID, Status: string(domain.JobStatusPending)})
}

// CoverGet returns the current snapshot of one cover.
func (a *App) CoverGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	cover, err := a.Jobs.GetVoiceCover(r.Context(), jobID)
	if err != nil || cover.OwnerID != userID {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	a.json(w, http.StatusOK, coverView(cover))
}

// CoverList returns the caller's covers, newest first.
func (a *App) CoverList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	covers, err := a.Jobs.ListVoiceCoversByOwner(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list covers")
		return
	}
	items := make([]voiceCoverView, 0, len(covers))
	for i := range covers {
		items = append(items, coverView(&covers[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
