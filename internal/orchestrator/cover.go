package orchestrator

import (
	"context"
	"fmt"

	"songforge/internal/acquire"
	"songforge/internal/domain"
	"songforge/internal/providers/voice"
)

// runCoverJob drives one voice cover from pending to a terminal state.
func (o *Orchestrator) runCoverJob(ctx context.Context, id string, req CoverRequest) {
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error().Interface("panic", rec).Str("job_id", id).Msg("cover job panicked")
			o.failCover(ctx, id, fmt.Errorf("internal error"))
		}
	}()

	audioURL := req.SourceAudio
	if acquire.IsVideoURL(req.SourceAudio) {
		if o.acquire == nil {
			o.failCover(ctx, id, fmt.Errorf("media extraction %w", domain.ErrNotConfigured))
			return
		}
		acquired, err := o.acquire.Fetch(ctx, req.SourceAudio)
		if err != nil {
			o.failCover(ctx, id, err)
			return
		}
		audioURL = acquired.AssetURL
		if err := o.store.UpdateVoiceCover(ctx, id, domain.VoiceCoverChanges{
			OriginalAudioURL: strPtr(acquired.AssetURL),
			SourceTitle:      strPtr(acquired.Title),
		}); err != nil {
			o.logger.Error().Err(err).Str("job_id", id).Msg("acquisition metadata write failed")
		}
	}

	pitch := domain.PitchMode(req.PitchMode)
	if pitch == "" {
		pitch = domain.PitchModeAuto
	}
	result, err := o.voice.Convert(ctx, voice.ConvertParams{
		VoiceModelID: req.VoiceModelID,
		AudioURL:     audioURL,
		PitchMode:    pitch,
	})
	if err != nil {
		o.failCover(ctx, id, err)
		return
	}

	switch {
	case result.AudioURL != "":
		o.completeCover(ctx, id, result.AudioURL)
	case result.TaskID != "":
		if err := o.store.UpdateVoiceCover(ctx, id, domain.VoiceCoverChanges{
			Status:         statusPtr(domain.JobStatusProcessing),
			ProviderTaskID: strPtr(result.TaskID),
		}); err != nil {
			o.logger.Error().Err(err).Str("job_id", id).Msg("processing transition write failed")
		}
		o.pollCoverTask(ctx, id, result.TaskID)
	default:
		o.failCover(ctx, id, fmt.Errorf("provider returned neither audio nor task handle"))
	}
}

func (o *Orchestrator) pollCoverTask(ctx context.Context, id, taskID string) {
	for attempt := 1; attempt <= o.pollAttempts; attempt++ {
		res, err := o.voice.PollStatus(ctx, taskID)
		if err != nil {
			o.logger.Warn().Err(err).Str("job_id", id).Int("attempt", attempt).Msg("cover poll failed, retrying")
			o.sleep(ctx)
			continue
		}
		switch res.Status {
		case voice.TaskCompleted:
			o.completeCover(ctx, id, res.AudioURL)
			return
		case voice.TaskFailed:
			o.failCover(ctx, id, fmt.Errorf("%s: %w", res.Message, domain.ErrProviderFailure))
			return
		}
		o.sleep(ctx)
	}
	o.failCover(ctx, id, fmt.Errorf("no terminal status after %d polls: %w", o.pollAttempts, domain.ErrPollTimeout))
}

func (o *Orchestrator) completeCover(ctx context.Context, id, audioURL string) {
	if err := o.store.UpdateVoiceCover(ctx, id, domain.VoiceCoverChanges{
		Status:         statusPtr(domain.JobStatusCompleted),
		OutputAudioURL: strPtr(audioURL),
	}); err != nil {
		o.logger.Error().Err(err).Str("job_id", id).Msg("completed transition write failed")
	}
	o.logger.Info().Str("job_id", id).Msg("cover job completed")
}

func (o *Orchestrator) failCover(ctx context.Context, id string, cause error) {
	o.logger.Error().Err(cause).Str("job_id", id).Msg("cover job failed")
	err := o.store.UpdateVoiceCover(ctx, id, domain.VoiceCoverChanges{
		Status:       statusPtr(domain.JobStatusFailed),
		ErrorMessage: strPtr(cause.Error()),
	})
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", id).Msg("failure write failed, job state is lost")
	}
}
