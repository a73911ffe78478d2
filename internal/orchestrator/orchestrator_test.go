package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"songforge/internal/acquire"
	"songforge/internal/domain"
	"songforge/internal/providers/lyrics"
	"songforge/internal/providers/music"
	"songforge/internal/providers/voice"
)

// syncRunner executes tasks inline so tests observe the full job lifecycle
// without goroutine coordination.
type syncRunner struct{}

func (syncRunner) Go(name string, fn func(ctx context.Context)) {
	fn(context.Background())
}

// memStore applies changes to in-memory rows and records every update, so
// tests can assert both the final state and the write sequence.
type memStore struct {
	mu           sync.Mutex
	tracks       map[string]*domain.MusicTrack
	covers       map[string]*domain.VoiceCover
	trackUpdates []domain.MusicTrackChanges
	coverUpdates []domain.VoiceCoverChanges
	createErr    error
}

func newMemStore() *memStore {
	return &memStore{
		tracks: map[string]*domain.MusicTrack{},
		covers: map[string]*domain.VoiceCover{},
	}
}

func (m *memStore) CreateMusicTrack(ctx context.Context, track *domain.MusicTrack) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *track
	m.tracks[track.ID] = &cp
	return nil
}

func (m *memStore) UpdateMusicTrack(ctx context.Context, id string, changes domain.MusicTrackChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackUpdates = append(m.trackUpdates, changes)
	t, ok := m.tracks[id]
	if !ok {
		return domain.ErrNotFound
	}
	if changes.Title != nil {
		t.Title = *changes.Title
	}
	if changes.Prompt != nil {
		t.Prompt = *changes.Prompt
	}
	if changes.Style != nil {
		t.Style = *changes.Style
	}
	if changes.Status != nil {
		t.Status = *changes.Status
	}
	if changes.ProviderTaskID != nil {
		t.ProviderTaskID = *changes.ProviderTaskID
	}
	if changes.AudioURL != nil {
		t.AudioURL = *changes.AudioURL
	}
	if changes.ImageURL != nil {
		t.ImageURL = *changes.ImageURL
	}
	if changes.DurationSecs != nil {
		t.DurationSecs = *changes.DurationSecs
	}
	if changes.ErrorMessage != nil {
		t.ErrorMessage = *changes.ErrorMessage
	}
	return nil
}

func (m *memStore) CreateVoiceCover(ctx context.Context, cover *domain.VoiceCover) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *cover
	m.covers[cover.ID] = &cp
	return nil
}

func (m *memStore) UpdateVoiceCover(ctx context.Context, id string, changes domain.VoiceCoverChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coverUpdates = append(m.coverUpdates, changes)
	c, ok := m.covers[id]
	if !ok {
		return domain.ErrNotFound
	}
	if changes.OriginalAudioURL != nil {
		c.OriginalAudioURL = *changes.OriginalAudioURL
	}
	if changes.SourceTitle != nil {
		c.SourceTitle = *changes.SourceTitle
	}
	if changes.Status != nil {
		c.Status = *changes.Status
	}
	if changes.ProviderTaskID != nil {
		c.ProviderTaskID = *changes.ProviderTaskID
	}
	if changes.OutputAudioURL != nil {
		c.OutputAudioURL = *changes.OutputAudioURL
	}
	if changes.ErrorMessage != nil {
		c.ErrorMessage = *changes.ErrorMessage
	}
	return nil
}

func (m *memStore) track(t *testing.T) *domain.MusicTrack {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tracks) != 1 {
		t.Fatalf("expected exactly one track, got %d", len(m.tracks))
	}
	for _, tr := range m.tracks {
		cp := *tr
		return &cp
	}
	return nil
}

func (m *memStore) cover(t *testing.T) *domain.VoiceCover {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.covers) != 1 {
		t.Fatalf("expected exactly one cover, got %d", len(m.covers))
	}
	for _, c := range m.covers {
		cp := *c
		return &cp
	}
	return nil
}

type stubMusic struct {
	generateResult *music.GenerateResult
	generateErr    error
	polls          []music.PollResult
	pollErrs       []error
	pollCalls      int
	generateParams music.GenerateParams
}

func (s *stubMusic) Generate(ctx context.Context, params music.GenerateParams) (*music.GenerateResult, error) {
	s.generateParams = params
	return s.generateResult, s.generateErr
}

func (s *stubMusic) PollStatus(ctx context.Context, taskID string) (*music.PollResult, error) {
	i := s.pollCalls
	s.pollCalls++
	if i < len(s.pollErrs) && s.pollErrs[i] != nil {
		return nil, s.pollErrs[i]
	}
	if i < len(s.polls) {
		res := s.polls[i]
		return &res, nil
	}
	return &music.PollResult{Status: music.TaskProcessing}, nil
}

type stubVoice struct {
	convertResult *voice.ConvertResult
	convertErr    error
	polls         []voice.PollResult
	pollCalls     int
	convertParams voice.ConvertParams
}

func (s *stubVoice) Convert(ctx context.Context, params voice.ConvertParams) (*voice.ConvertResult, error) {
	s.convertParams = params
	return s.convertResult, s.convertErr
}

func (s *stubVoice) PollStatus(ctx context.Context, taskID string) (*voice.PollResult, error) {
	i := s.pollCalls
	s.pollCalls++
	if i < len(s.polls) {
		res := s.polls[i]
		return &res, nil
	}
	return &voice.PollResult{Status: voice.TaskProcessing}, nil
}

type stubLyrics struct {
	song  *lyrics.Song
	err   error
	calls int
}

func (s *stubLyrics) Write(ctx context.Context, req lyrics.WriteRequest) (*lyrics.Song, error) {
	s.calls++
	return s.song, s.err
}

type stubFetcher struct {
	result *acquire.Result
	err    error
	calls  int
	lastIn string
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (*acquire.Result, error) {
	s.calls++
	s.lastIn = rawURL
	return s.result, s.err
}

type stubAssets struct {
	url     string
	err     error
	putKeys []string
}

func (s *stubAssets) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.putKeys = append(s.putKeys, key)
	return s.url, s.err
}

func (s *stubAssets) PutFile(ctx context.Context, key, path, contentType string) (string, error) {
	return s.url, s.err
}

func (s *stubAssets) URL(key string) string { return s.url }

func newTestOrchestrator(t *testing.T, opts Options) *Orchestrator {
	t.Helper()
	if opts.Runner == nil {
		opts.Runner = syncRunner{}
	}
	opts.Logger = zerolog.Nop()
	opts.PollInterval = 1 // nanosecond; tests never wait on real provider pacing
	o, err := New(opts)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return o
}

func TestSubmitMusicInlineAudioCompletes(t *testing.T) {
	st := newMemStore()
	mus := &stubMusic{generateResult: &music.GenerateResult{
		AudioData: []byte("bytes"), MimeType: "audio/mpeg", Extension: "mp3",
	}}
	assets := &stubAssets{url: "https://assets.example.com/music/x.mp3"}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus, Assets: assets})

	id, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		Title:               "My Song",
		LyricsOrDescription: "[Verse]\nwritten by hand",
		Style:               "rock",
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a job id")
	}

	track := st.track(t)
	if track.Status != domain.JobStatusCompleted {
		t.Fatalf("unexpected status: %s", track.Status)
	}
	if track.AudioURL != assets.url {
		t.Fatalf("unexpected audio url: %s", track.AudioURL)
	}
	if track.Prompt != "[Verse]\nwritten by hand" {
		t.Fatalf("lyrics not persisted: %q", track.Prompt)
	}
	// An explicit title means the text is used as lyrics verbatim, not
	// rewritten by the LLM chain.
	if mus.generateParams.Lyrics != "[Verse]\nwritten by hand" {
		t.Fatalf("unexpected lyrics sent to provider: %q", mus.generateParams.Lyrics)
	}
}

func TestSubmitMusicInstrumentalSkipsLyricSynthesis(t *testing.T) {
	st := newMemStore()
	lw := &stubLyrics{song: &lyrics.Song{Title: "LLM", Lyrics: "should not be used"}}
	mus := &stubMusic{generateResult: &music.GenerateResult{AudioURL: "https://cdn.example.com/out.mp3"}}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus, Lyrics: lw})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		LyricsOrDescription: "calm piano over rainfall",
		Instrumental:        true,
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	if lw.calls != 0 {
		t.Fatalf("lyric writer called %d times for instrumental track", lw.calls)
	}
	if mus.generateParams.Lyrics != "" {
		t.Fatalf("instrumental request sent lyrics: %q", mus.generateParams.Lyrics)
	}
	track := st.track(t)
	if track.Status != domain.JobStatusCompleted {
		t.Fatalf("unexpected status: %s", track.Status)
	}
	if track.Prompt != "" {
		t.Fatalf("instrumental track stored lyric text: %q", track.Prompt)
	}
	if track.Title != "calm piano over rainfall" {
		t.Fatalf("description did not seed title: %q", track.Title)
	}
}

func TestSubmitMusicDescriptionSynthesizesLyrics(t *testing.T) {
	st := newMemStore()
	lw := &stubLyrics{song: &lyrics.Song{Title: "Rainfall", Style: "ambient", Lyrics: "[Verse]\nrain"}}
	mus := &stubMusic{generateResult: &music.GenerateResult{AudioURL: "https://cdn.example.com/out.mp3"}}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus, Lyrics: lw})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		LyricsOrDescription: "a song about rainfall",
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	if lw.calls != 1 {
		t.Fatalf("expected one lyric call, got %d", lw.calls)
	}
	track := st.track(t)
	if track.Title != "Rainfall" || track.Style != "ambient" {
		t.Fatalf("synthesized metadata not applied: %+v", track)
	}
	if track.Prompt != "[Verse]\nrain" {
		t.Fatalf("synthesized lyrics not persisted: %q", track.Prompt)
	}
}

func TestSubmitMusicLyricFailureIsFatal(t *testing.T) {
	st := newMemStore()
	lw := &stubLyrics{err: errors.New("all writers exhausted")}
	mus := &stubMusic{generateResult: &music.GenerateResult{AudioURL: "https://cdn.example.com/out.mp3"}}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus, Lyrics: lw})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		LyricsOrDescription: "a song about rainfall",
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	track := st.track(t)
	if track.Status != domain.JobStatusFailed {
		t.Fatalf("unexpected status: %s", track.Status)
	}
	if !strings.Contains(track.ErrorMessage, "lyric synthesis") {
		t.Fatalf("unexpected error message: %s", track.ErrorMessage)
	}
	if mus.generateParams != (music.GenerateParams{}) {
		t.Fatal("generation ran despite lyric failure")
	}
}

func TestSubmitMusicRejectsEmptyVocalRequest(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(t, Options{Store: st, Music: &stubMusic{}})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(st.tracks) != 0 {
		t.Fatal("rejected request persisted a row")
	}
}

func TestSubmitMusicRejectsBadVoiceGender(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(t, Options{Store: st, Music: &stubMusic{}})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		LyricsOrDescription: "a song",
		VoiceGender:         "robot",
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMusicPollingCompletesMidWindow(t *testing.T) {
	st := newMemStore()
	mus := &stubMusic{
		generateResult: &music.GenerateResult{TaskID: "task-1"},
		polls: []music.PollResult{
			{Status: music.TaskProcessing},
			{Status: music.TaskProcessing},
			{Status: music.TaskCompleted, AudioURL: "https://cdn.example.com/out.mp3"},
		},
	}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus, PollAttempts: 10})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		Title:               "T",
		LyricsOrDescription: "lyrics",
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	if mus.pollCalls != 3 {
		t.Fatalf("expected 3 polls, got %d", mus.pollCalls)
	}
	track := st.track(t)
	if track.Status != domain.JobStatusCompleted {
		t.Fatalf("unexpected status: %s", track.Status)
	}
	if track.ProviderTaskID != "task-1" {
		t.Fatalf("task id not recorded: %s", track.ProviderTaskID)
	}

	// Exactly two row writes after creation: pending->processing and
	// processing->completed. Still-processing polls write nothing.
	if len(st.trackUpdates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(st.trackUpdates))
	}
}

func TestMusicPollingTimesOut(t *testing.T) {
	st := newMemStore()
	mus := &stubMusic{generateResult: &music.GenerateResult{TaskID: "task-1"}}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus, PollAttempts: 4})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		Title:               "T",
		LyricsOrDescription: "lyrics",
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	if mus.pollCalls != 4 {
		t.Fatalf("expected 4 polls, got %d", mus.pollCalls)
	}
	track := st.track(t)
	if track.Status != domain.JobStatusFailed {
		t.Fatalf("unexpected status: %s", track.Status)
	}
	if !strings.Contains(track.ErrorMessage, "timed out") {
		t.Fatalf("unexpected error message: %s", track.ErrorMessage)
	}
}

func TestMusicPollingToleratesTransientErrors(t *testing.T) {
	st := newMemStore()
	mus := &stubMusic{
		generateResult: &music.GenerateResult{TaskID: "task-1"},
		pollErrs:       []error{errors.New("gateway timeout"), nil},
		polls: []music.PollResult{
			{},
			{Status: music.TaskCompleted, AudioURL: "https://cdn.example.com/out.mp3"},
		},
	}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus, PollAttempts: 5})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		Title:               "T",
		LyricsOrDescription: "lyrics",
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	track := st.track(t)
	if track.Status != domain.JobStatusCompleted {
		t.Fatalf("unexpected status: %s", track.Status)
	}
}

func TestMusicProviderFailureFailsJob(t *testing.T) {
	st := newMemStore()
	mus := &stubMusic{generateErr: errors.New("insufficient balance")}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		Title:               "T",
		LyricsOrDescription: "lyrics",
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	track := st.track(t)
	if track.Status != domain.JobStatusFailed {
		t.Fatalf("unexpected status: %s", track.Status)
	}
	if track.ErrorMessage != "insufficient balance" {
		t.Fatalf("unexpected error message: %s", track.ErrorMessage)
	}
}

func TestArtworkFailureDoesNotFailJob(t *testing.T) {
	st := newMemStore()
	mus := &stubMusic{generateResult: &music.GenerateResult{AudioURL: "https://cdn.example.com/out.mp3"}}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus, Artwork: failingArtwork{}})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		Title:               "T",
		LyricsOrDescription: "lyrics",
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	track := st.track(t)
	if track.Status != domain.JobStatusCompleted {
		t.Fatalf("unexpected status: %s", track.Status)
	}
	if track.ImageURL != "" {
		t.Fatalf("unexpected image url: %s", track.ImageURL)
	}
}

type failingArtwork struct{}

func (failingArtwork) Generate(ctx context.Context, title, style string) (string, error) {
	return "", errors.New("image provider down")
}

func TestSubmitCoverDirectURL(t *testing.T) {
	st := newMemStore()
	vc := &stubVoice{convertResult: &voice.ConvertResult{AudioURL: "https://cdn.example.com/cover.mp3"}}
	fetch := &stubFetcher{}
	o := newTestOrchestrator(t, Options{Store: st, Voice: vc, Acquire: fetch})

	id, err := o.SubmitCover(context.Background(), "u-1", CoverRequest{
		VoiceModelID: "voice-7",
		SourceAudio:  "https://example.com/song.mp3",
	})
	if err != nil {
		t.Fatalf("SubmitCover error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a job id")
	}
	if fetch.calls != 0 {
		t.Fatal("direct audio url triggered acquisition")
	}
	if vc.convertParams.AudioURL != "https://example.com/song.mp3" {
		t.Fatalf("unexpected conversion input: %s", vc.convertParams.AudioURL)
	}
	cover := st.cover(t)
	if cover.Status != domain.JobStatusCompleted || cover.OutputAudioURL != "https://cdn.example.com/cover.mp3" {
		t.Fatalf("unexpected cover state: %+v", cover)
	}
}

func TestSubmitCoverAcquiresVideoURL(t *testing.T) {
	st := newMemStore()
	vc := &stubVoice{convertResult: &voice.ConvertResult{AudioURL: "https://cdn.example.com/cover.mp3"}}
	fetch := &stubFetcher{result: &acquire.Result{
		AssetURL: "https://assets.example.com/acquired/x.mp3",
		Title:    "Original Song",
	}}
	o := newTestOrchestrator(t, Options{Store: st, Voice: vc, Acquire: fetch})

	_, err := o.SubmitCover(context.Background(), "u-1", CoverRequest{
		VoiceModelID: "voice-7",
		SourceAudio:  "https://youtube.com/watch?v=abc",
	})
	if err != nil {
		t.Fatalf("SubmitCover error: %v", err)
	}
	if fetch.calls != 1 || fetch.lastIn != "https://youtube.com/watch?v=abc" {
		t.Fatalf("acquisition not invoked as expected: %+v", fetch)
	}
	// Conversion consumes the durable acquired asset, not the video page.
	if vc.convertParams.AudioURL != "https://assets.example.com/acquired/x.mp3" {
		t.Fatalf("unexpected conversion input: %s", vc.convertParams.AudioURL)
	}
	cover := st.cover(t)
	if cover.OriginalAudioURL != "https://assets.example.com/acquired/x.mp3" {
		t.Fatalf("acquired asset not recorded: %s", cover.OriginalAudioURL)
	}
	if cover.SourceTitle != "Original Song" {
		t.Fatalf("source title not recorded: %s", cover.SourceTitle)
	}
}

func TestSubmitCoverAcquisitionFailureIsFatal(t *testing.T) {
	st := newMemStore()
	vc := &stubVoice{convertResult: &voice.ConvertResult{AudioURL: "https://cdn.example.com/cover.mp3"}}
	fetch := &stubFetcher{err: domain.ErrAcquisitionFailed}
	o := newTestOrchestrator(t, Options{Store: st, Voice: vc, Acquire: fetch})

	_, err := o.SubmitCover(context.Background(), "u-1", CoverRequest{
		VoiceModelID: "voice-7",
		SourceAudio:  "https://youtube.com/watch?v=abc",
	})
	if err != nil {
		t.Fatalf("SubmitCover error: %v", err)
	}
	cover := st.cover(t)
	if cover.Status != domain.JobStatusFailed {
		t.Fatalf("unexpected status: %s", cover.Status)
	}
	if vc.convertParams != (voice.ConvertParams{}) {
		t.Fatal("conversion ran despite acquisition failure")
	}
}

func TestSubmitCoverPollsToCompletion(t *testing.T) {
	st := newMemStore()
	vc := &stubVoice{
		convertResult: &voice.ConvertResult{TaskID: "pred-1"},
		polls: []voice.PollResult{
			{Status: voice.TaskProcessing},
			{Status: voice.TaskCompleted, AudioURL: "https://cdn.example.com/cover.mp3"},
		},
	}
	o := newTestOrchestrator(t, Options{Store: st, Voice: vc, PollAttempts: 5})

	_, err := o.SubmitCover(context.Background(), "u-1", CoverRequest{
		VoiceModelID: "voice-7",
		SourceAudio:  "https://example.com/song.mp3",
	})
	if err != nil {
		t.Fatalf("SubmitCover error: %v", err)
	}
	cover := st.cover(t)
	if cover.Status != domain.JobStatusCompleted {
		t.Fatalf("unexpected status: %s", cover.Status)
	}
	if cover.ProviderTaskID != "pred-1" {
		t.Fatalf("task id not recorded: %s", cover.ProviderTaskID)
	}
}

func TestSubmitCoverValidation(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(t, Options{Store: st, Voice: &stubVoice{}})

	if _, err := o.SubmitCover(context.Background(), "u-1", CoverRequest{SourceAudio: "https://example.com/a.mp3"}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected validation error for missing voice model, got %v", err)
	}
	if _, err := o.SubmitCover(context.Background(), "u-1", CoverRequest{VoiceModelID: "v", SourceAudio: "not a url"}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected validation error for bad source url, got %v", err)
	}
	if _, err := o.SubmitCover(context.Background(), "u-1", CoverRequest{
		VoiceModelID: "v",
		SourceAudio:  "https://example.com/a.mp3",
		PitchMode:    "chipmunk",
	}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected validation error for bad pitch mode, got %v", err)
	}
}

func TestStatusNeverLeavesTerminal(t *testing.T) {
	// A completed poll result arriving after failure must not resurrect the
	// job. The single-writer design makes this structural: the task returns
	// after its first terminal write.
	st := newMemStore()
	mus := &stubMusic{
		generateResult: &music.GenerateResult{TaskID: "task-1"},
		polls: []music.PollResult{
			{Status: music.TaskFailed, Message: "model crashed"},
			{Status: music.TaskCompleted, AudioURL: "https://cdn.example.com/out.mp3"},
		},
	}
	o := newTestOrchestrator(t, Options{Store: st, Music: mus, PollAttempts: 5})

	_, err := o.SubmitMusic(context.Background(), "u-1", MusicRequest{
		Title:               "T",
		LyricsOrDescription: "lyrics",
	})
	if err != nil {
		t.Fatalf("SubmitMusic error: %v", err)
	}
	if mus.pollCalls != 1 {
		t.Fatalf("polling continued past terminal state: %d calls", mus.pollCalls)
	}
	track := st.track(t)
	if track.Status != domain.JobStatusFailed {
		t.Fatalf("unexpected status: %s", track.Status)
	}
}

func TestNewRequiresStoreAndRunner(t *testing.T) {
	if _, err := New(Options{Runner: syncRunner{}}); err == nil {
		t.Fatal("expected error for missing store")
	}
	if _, err := New(Options{Store: newMemStore()}); err == nil {
		t.Fatal("expected error for missing runner")
	}
}
