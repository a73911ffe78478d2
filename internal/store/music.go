package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"songforge/internal/domain"
	"songforge/internal/sqlinline"
)

// CreateMusicTrack inserts a new music track row.
func (s *Store) CreateMusicTrack(ctx context.Context, track *domain.MusicTrack) error {
	if !s.Available() {
		s.warn("create_music_track", nil)
		return nil
	}
	_, err := s.pool.Exec(ctx, sqlinline.QInsertMusicTrack,
		track.ID,
		track.OwnerID,
		track.Title,
		track.Prompt,
		track.Style,
		track.Model,
		track.Instrumental,
		track.Status,
		track.ErrorMessage,
	)
	if err != nil {
		s.warn("create_music_track", err)
	}
	return nil
}

// UpdateMusicTrack applies a partial merge: only non-nil fields change.
func (s *Store) UpdateMusicTrack(ctx context.Context, id string, changes domain.MusicTrackChanges) error {
	if !s.Available() {
		s.warn("update_music_track", nil)
		return nil
	}
	cols := make([]string, 0, 8)
	args := []any{id}
	add := func(col string, v any) {
		cols = append(cols, col)
		args = append(args, v)
	}
	if changes.Title != nil {
		add("title", *changes.Title)
	}
	if changes.Prompt != nil {
		add("prompt", *changes.Prompt)
	}
	if changes.Style != nil {
		add("style", *changes.Style)
	}
	if changes.Status != nil {
		add("status", *changes.Status)
	}
	if changes.ProviderTaskID != nil {
		add("provider_task_id", *changes.ProviderTaskID)
	}
	if changes.AudioURL != nil {
		add("audio_url", *changes.AudioURL)
	}
	if changes.ImageURL != nil {
		add("image_url", *changes.ImageURL)
	}
	if changes.DurationSecs != nil {
		add("duration_secs", *changes.DurationSecs)
	}
	if changes.ErrorMessage != nil {
		add("error_message", *changes.ErrorMessage)
	}
	if len(cols) == 0 {
		return nil
	}
	query := fmt.Sprintf(sqlinline.QUpdateMusicTrack, setClause(2, cols))
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		s.warn("update_music_track", err)
	}
	return nil
}

// GetMusicTrack fetches one track by id.
func (s *Store) GetMusicTrack(ctx context.Context, id string) (*domain.MusicTrack, error) {
	if !s.Available() {
		s.warn("get_music_track", nil)
		return nil, domain.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, sqlinline.QSelectMusicTrackByID, id)
	track, err := scanMusicTrack(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.warn("get_music_track", err)
		return nil, domain.ErrNotFound
	}
	return track, nil
}

// ListMusicTracksByOwner returns the owner's tracks, newest first.
func (s *Store) ListMusicTracksByOwner(ctx context.Context, ownerID string) ([]domain.MusicTrack, error) {
	if !s.Available() {
		s.warn("list_music_tracks", nil)
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, sqlinline.QListMusicTracksByOwner, ownerID)
	if err != nil {
		s.warn("list_music_tracks", err)
		return nil, nil
	}
	defer rows.Close()

	var tracks []domain.MusicTrack
	for rows.Next() {
		track, err := scanMusicTrack(rows)
		if err != nil {
			s.warn("list_music_tracks", err)
			continue
		}
		tracks = append(tracks, *track)
	}
	return tracks, nil
}

func scanMusicTrack(row pgx.Row) (*domain.MusicTrack, error) {
	var t domain.MusicTrack
	if err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Prompt,
		&t.Style,
		&t.Model,
		&t.Instrumental,
		&t.Status,
		&t.ProviderTaskID,
		&t.AudioURL,
		&t.ImageURL,
		&t.DurationSecs,
		&t.ErrorMessage,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
