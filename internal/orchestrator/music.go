package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"songforge/internal/domain"
	"songforge/internal/providers/lyrics"
	"songforge/internal/providers/music"
)

// runMusicJob drives one music track from pending to a terminal state. It is
// the only writer for the track after creation.
func (o *Orchestrator) runMusicJob(ctx context.Context, id string, req MusicRequest) {
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error().Interface("panic", rec).Str("job_id", id).Msg("music job panicked")
			o.failMusic(ctx, id, fmt.Errorf("internal error"))
		}
	}()

	title := req.Title
	style := req.Style
	lyricText := ""

	switch {
	case req.Instrumental:
		// Instrumental tracks carry no lyric text; the description, when
		// present, only seeds the title.
		if title == "" {
			title = strings.TrimSpace(req.LyricsOrDescription)
		}
	case req.Title != "":
		// An explicit title marks the text as user-authored lyrics.
		lyricText = req.LyricsOrDescription
	default:
		// Description-only request: synthesize title, style, and lyrics.
		// Generation has no valid input without them, so failure is fatal.
		song, err := o.writeLyrics(ctx, req)
		if err != nil {
			o.failMusic(ctx, id, fmt.Errorf("lyric synthesis: %w", err))
			return
		}
		title = song.Title
		lyricText = song.Lyrics
		if style == "" {
			style = song.Style
		}
	}

	// Cover artwork is decoration: log and continue without it on failure.
	imageURL := ""
	if o.artwork != nil {
		if url, err := o.artwork.Generate(ctx, title, style); err != nil {
			o.logger.Warn().Err(err).Str("job_id", id).Msg("artwork generation failed, continuing without")
		} else {
			imageURL = url
		}
	}

	result, err := o.music.Generate(ctx, music.GenerateParams{
		Title:        title,
		Lyrics:       lyricText,
		Style:        style,
		Model:        req.Model,
		Instrumental: req.Instrumental,
		VoiceGender:  req.VoiceGender,
	})
	if err != nil {
		o.failMusic(ctx, id, err)
		return
	}

	switch {
	case len(result.AudioData) > 0:
		audioURL, err := o.storeAudio(ctx, id, result.AudioData, result.MimeType, result.Extension)
		if err != nil {
			o.failMusic(ctx, id, err)
			return
		}
		o.completeMusic(ctx, id, audioURL, imageURL, title, lyricText, style)
	case result.AudioURL != "":
		o.completeMusic(ctx, id, result.AudioURL, imageURL, title, lyricText, style)
	case result.TaskID != "":
		if err := o.store.UpdateMusicTrack(ctx, id, domain.MusicTrackChanges{
			Status:         statusPtr(domain.JobStatusProcessing),
			ProviderTaskID: strPtr(result.TaskID),
		}); err != nil {
			o.logger.Error().Err(err).Str("job_id", id).Msg("processing transition write failed")
		}
		o.pollMusicTask(ctx, id, result.TaskID, imageURL, title, lyricText, style)
	default:
		o.failMusic(ctx, id, fmt.Errorf("provider returned neither audio nor task handle"))
	}
}

// pollMusicTask polls the provider task at a fixed interval up to the attempt
// ceiling. Still-processing polls write nothing; transient poll errors only
// consume an attempt.
func (o *Orchestrator) pollMusicTask(ctx context.Context, id, taskID, imageURL, title, lyricText, style string) {
	for attempt := 1; attempt <= o.pollAttempts; attempt++ {
		res, err := o.music.PollStatus(ctx, taskID)
		if err != nil {
			o.logger.Warn().Err(err).Str("job_id", id).Int("attempt", attempt).Msg("music poll failed, retrying")
			o.sleep(ctx)
			continue
		}
		switch res.Status {
		case music.TaskCompleted:
			audioURL := res.AudioURL
			if audioURL == "" {
				stored, err := o.storeAudio(ctx, id, res.AudioData, res.MimeType, res.Extension)
				if err != nil {
					o.failMusic(ctx, id, err)
					return
				}
				audioURL = stored
			}
			o.completeMusic(ctx, id, audioURL, imageURL, title, lyricText, style)
			return
		case music.TaskFailed:
			o.failMusic(ctx, id, fmt.Errorf("%s: %w", res.Message, domain.ErrProviderFailure))
			return
		}
		o.sleep(ctx)
	}
	o.failMusic(ctx, id, fmt.Errorf("no terminal status after %d polls: %w", o.pollAttempts, domain.ErrPollTimeout))
}

// writeLyrics runs the lyric LLM chain.
func (o *Orchestrator) writeLyrics(ctx context.Context, req MusicRequest) (*lyrics.Song, error) {
	if o.lyrics == nil {
		return nil, fmt.Errorf("lyric writer %w", domain.ErrNotConfigured)
	}
	return o.lyrics.Write(ctx, lyrics.WriteRequest{
		Description: req.LyricsOrDescription,
		Style:       req.Style,
		VoiceGender: req.VoiceGender,
	})
}

// storeAudio persists inline provider audio bytes and returns their URL.
func (o *Orchestrator) storeAudio(ctx context.Context, id string, data []byte, mimeType, ext string) (string, error) {
	if o.assets == nil {
		return "", fmt.Errorf("asset storage %w", domain.ErrNotConfigured)
	}
	if ext == "" {
		ext = "mp3"
	}
	key := fmt.Sprintf("music/%s.%s", id, ext)
	url, err := o.assets.Put(ctx, key, data, mimeType)
	if err != nil {
		return "", fmt.Errorf("store audio: %w", err)
	}
	return url, nil
}

func (o *Orchestrator) completeMusic(ctx context.Context, id, audioURL, imageURL, title, lyricText, style string) {
	changes := domain.MusicTrackChanges{
		Status:   statusPtr(domain.JobStatusCompleted),
		AudioURL: strPtr(audioURL),
		Title:    strPtr(title),
		Style:    strPtr(style),
	}
	if lyricText != "" {
		changes.Prompt = strPtr(lyricText)
	}
	if imageURL != "" {
		changes.ImageURL = strPtr(imageURL)
	}
	if o.prober != nil {
		if secs, err := o.prober.Duration(ctx, audioURL); err == nil && secs > 0 {
			changes.DurationSecs = &secs
		} else if err != nil {
			o.logger.Debug().Err(err).Str("job_id", id).Msg("duration probe failed")
		}
	}
	if err := o.store.UpdateMusicTrack(ctx, id, changes); err != nil {
		o.logger.Error().Err(err).Str("job_id", id).Msg("completed transition write failed")
	}
	o.logger.Info().Str("job_id", id).Msg("music job completed")
}

func (o *Orchestrator) failMusic(ctx context.Context, id string, cause error) {
	o.logger.Error().Err(cause).Str("job_id", id).Msg("music job failed")
	err := o.store.UpdateMusicTrack(ctx, id, domain.MusicTrackChanges{
		Status:       statusPtr(domain.JobStatusFailed),
		ErrorMessage: strPtr(cause.Error()),
	})
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", id).Msg("failure write failed, job state is lost")
	}
}
