package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether a status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// PitchMode selects how voice conversion shifts pitch relative to the
// source vocal.
type PitchMode string

const (
	PitchModeAuto PitchMode = "auto"
	PitchModeKeep PitchMode = "keep"
)

// MusicTrack is one tracked music generation job.
type MusicTrack struct {
	ID             string
	OwnerID        string
	Title          string
	Prompt         string
	Style          string
	Model          string
	Instrumental   bool
	Status         JobStatus
	ProviderTaskID string
	AudioURL       string
	ImageURL       string
	DurationSecs   float64
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VoiceCover is one tracked voice conversion job.
type VoiceCover struct {
	ID               string
	OwnerID          string
	VoiceID          string
	VoiceName        string
	OriginalAudioURL string
	SourceTitle      string
	PitchMode        PitchMode
	Status           JobStatus
	ProviderTaskID   string
	OutputAudioURL   string
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MusicTrackChanges carries a partial update for a music track. Nil fields
// are left untouched by the store.
type MusicTrackChanges struct {
	Title          *string
	Prompt         *string
	Style          *string
	Status         *JobStatus
	ProviderTaskID *string
	AudioURL       *string
	ImageURL       *string
	DurationSecs   *float64
	ErrorMessage   *string
}

// VoiceCoverChanges carries a partial update for a voice cover.
type VoiceCoverChanges struct {
	OriginalAudioURL *string
	SourceTitle      *string
	Status           *JobStatus
	ProviderTaskID   *string
	OutputAudioURL   *string
	ErrorMessage     *string
}
