package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"songforge/internal/domain"
	"songforge/internal/sqlinline"
)

// CreateVoiceCover inserts a new voice cover row.
func (s *Store) CreateVoiceCover(ctx context.Context, cover *domain.VoiceCover) error {
	if !s.Available() {
		s.warn("create_voice_cover", nil)
		return nil
	}
	_, err := s.pool.Exec(ctx, sqlinline.QInsertVoiceCover,
		cover.ID,
		cover.OwnerID,
		cover.VoiceID,
		cover.VoiceName,
		cover.OriginalAudioURL,
		cover.SourceTitle,
		cover.PitchMode,
		cover.Status,
		cover.ErrorMessage,
	)
	if err != nil {
		s.warn("create_voice_cover", err)
	}
	return nil
}

// UpdateVoiceCover applies a partial merge: only non-nil fields change.
func (s *Store) UpdateVoiceCover(ctx context.Context, id string, changes domain.VoiceCoverChanges) error {
	if !s.Available() {
		s.warn("update_voice_cover", nil)
		return nil
	}
	cols := make([]string, 0, 6)
	args := []any{id}
	add := func(col string, v any) {
		cols = append(cols, col)
		args = append(args, v)
	}
	if changes.OriginalAudioURL != nil {
		add("original_audio_url", *changes.OriginalAudioURL)
	}
	if changes.SourceTitle != nil {
		add("source_title", *changes.SourceTitle)
	}
	if changes.Status != nil {
		add("status", *changes.Status)
	}
	if changes.ProviderTaskID != nil {
		add("provider_task_id", *changes.ProviderTaskID)
	}
	if changes.OutputAudioURL != nil {
		add("output_audio_url", *changes.OutputAudioURL)
	}
	if changes.ErrorMessage != nil {
		add("error_message", *changes.ErrorMessage)
	}
	if len(cols) == 0 {
		return nil
	}
	query := fmt.Sprintf(sqlinline.QUpdateVoiceCover, setClause(2, cols))
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		s.warn("update_voice_cover", err)
	}
	return nil
}

// GetVoiceCover fetches one cover by id.
func (s *Store) GetVoiceCover(ctx context.Context, id string) (*domain.VoiceCover, error) {
	if !s.Available() {
		s.warn("get_voice_cover", nil)
		return nil, domain.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, sqlinline.QSelectVoiceCoverByID, id)
	cover, err := scanVoiceCover(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.warn("get_voice_cover", err)
		return nil, domain.ErrNotFound
	}
	return cover, nil
}

// ListVoiceCoversByOwner returns the owner's covers, newest first.
func (s *Store) ListVoiceCoversByOwner(ctx context.Context, ownerID string) ([]domain.VoiceCover, error) {
	if !s.Available() {
		s.warn("list_voice_covers", nil)
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, sqlinline.QListVoiceCoversByOwner, ownerID)
	if err != nil {
		s.warn("list_voice_covers", err)
		return nil, nil
	}
	defer rows.Close()

	var covers []domain.VoiceCover
	for rows.Next() {
		cover, err := scanVoiceCover(rows)
		if err != nil {
			s.warn("list_voice_covers", err)
			continue
		}
		covers = append(covers, *cover)
	}
	return covers, nil
}

func scanVoiceCover(row pgx.Row) (*domain.VoiceCover, error) {
	var c domain.VoiceCover
	if err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.VoiceID,
		&c.VoiceName,
		&c.OriginalAudioURL,
		&c.SourceTitle,
		&c.PitchMode,
		&c.Status,
		&c.ProviderTaskID,
		&c.OutputAudioURL,
		&c.ErrorMessage,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
