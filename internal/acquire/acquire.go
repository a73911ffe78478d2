// Package acquire resolves remote media references (video-sharing URLs) into
// durably stored audio assets. Extraction shells out to yt-dlp; because the
// upstream's bot detection is inconsistent across client fingerprints, the
// fetcher tries an ordered list of client identities and stops at the first
// one that yields a file. That retry list is specific to this adversarial
// upstream and is not a general retry policy.
package acquire

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"songforge/internal/domain"
	"songforge/internal/storage"
)

// UnknownTitle is used when title extraction fails; metadata failures never
// fail the acquisition itself.
const UnknownTitle = "Unknown Title"

// Result is a durable, fetchable audio asset plus a best-effort title.
type Result struct {
	AssetURL string
	Title    string
}

// Fetcher turns a remote reference into a stored audio asset.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Result, error)
}

// CommandRunner executes an external command and returns its stdout. It
// exists so tests can simulate extraction outcomes without a yt-dlp binary.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%s: %s", name, firstLine(string(exitErr.Stderr)))
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// strategy is one client-identity variation passed to yt-dlp.
type strategy struct {
	name string
	args []string
}

var extractionStrategies = []strategy{
	{name: "default", args: nil},
	{name: "android", args: []string{"--extractor-args", "youtube:player_client=android"}},
	{name: "ios", args: []string{"--extractor-args", "youtube:player_client=ios"}},
	{name: "web-embed", args: []string{
		"--extractor-args", "youtube:player_client=web_embedded",
		"--user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	}},
}

// Options configures a YtdlpFetcher.
type Options struct {
	YtdlpPath       string
	TempDir         string
	Runner          CommandRunner
	Store           storage.Store
	Logger          zerolog.Logger
	StrategyTimeout time.Duration
	TitleTimeout    time.Duration
}

// YtdlpFetcher extracts audio with yt-dlp and uploads it to object storage.
type YtdlpFetcher struct {
	ytdlp           string
	tempDir         string
	runner          CommandRunner
	store           storage.Store
	logger          zerolog.Logger
	strategyTimeout time.Duration
	titleTimeout    time.Duration
}

func NewYtdlpFetcher(opts Options) *YtdlpFetcher {
	ytdlp := strings.TrimSpace(opts.YtdlpPath)
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	strategyTimeout := opts.StrategyTimeout
	if strategyTimeout <= 0 {
		strategyTimeout = 2 * time.Minute
	}
	titleTimeout := opts.TitleTimeout
	if titleTimeout <= 0 {
		titleTimeout = 15 * time.Second
	}
	return &YtdlpFetcher{
		ytdlp:           ytdlp,
		tempDir:         tempDir,
		runner:          runner,
		store:           opts.Store,
		logger:          opts.Logger,
		strategyTimeout: strategyTimeout,
		titleTimeout:    titleTimeout,
	}
}

// Fetch downloads the audio track behind rawURL, uploads it to storage, and
// deletes the local artifact. The title lookup is best-effort.
func (f *YtdlpFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	title := f.lookupTitle(ctx, rawURL)

	localPath, err := f.extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(localPath); rmErr != nil && !os.IsNotExist(rmErr) {
			f.logger.Warn().Err(rmErr).Str("path", localPath).Msg("acquire: temp file cleanup failed")
		}
	}()

	key := fmt.Sprintf("acquired/%s.mp3", uuid.NewString())
	assetURL, err := f.store.PutFile(ctx, key, localPath, "audio/mpeg")
	if err != nil {
		return nil, fmt.Errorf("acquire: upload asset: %w", err)
	}
	return &Result{AssetURL: assetURL, Title: title}, nil
}

// lookupTitle asks yt-dlp for the media title without downloading. Failure is
// tolerated and yields UnknownTitle.
func (f *YtdlpFetcher) lookupTitle(ctx context.Context, rawURL string) string {
	tctx, cancel := context.WithTimeout(ctx, f.titleTimeout)
	defer cancel()

	out, err := f.runner.Run(tctx, f.ytdlp, "--print", "%(title)s", "--skip-download", "--no-warnings", rawURL)
	if err != nil {
		f.logger.Debug().Err(err).Str("url", rawURL).Msg("acquire: title lookup failed")
		return UnknownTitle
	}
	title := firstLine(string(out))
	if title == "" {
		return UnknownTitle
	}
	return title
}

// extract tries each client strategy in order and returns the path of the
// first non-empty downloaded file.
func (f *YtdlpFetcher) extract(ctx context.Context, rawURL string) (string, error) {
	var lastErr error
	for _, s := range extractionStrategies {
		outPath := filepath.Join(f.tempDir, fmt.Sprintf("songforge-%s.mp3", uuid.NewString()))
		args := []string{
			"-x",
			"--audio-format", "mp3",
			"--no-playlist",
			"--no-warnings",
			"-o", outPath,
		}
		args = append(args, s.args...)
		args = append(args, rawURL)

		sctx, cancel := context.WithTimeout(ctx, f.strategyTimeout)
		_, err := f.runner.Run(sctx, f.ytdlp, args...)
		cancel()

		if err == nil {
			if info, statErr := os.Stat(outPath); statErr == nil && info.Size() > 0 {
				f.logger.Info().Str("strategy", s.name).Str("url", rawURL).Msg("acquire: extraction succeeded")
				return outPath, nil
			}
			err = fmt.Errorf("strategy %s produced no output", s.name)
		}
		lastErr = err
		f.logger.Warn().Err(err).Str("strategy", s.name).Str("url", rawURL).Msg("acquire: extraction attempt failed")
		_ = os.Remove(outPath)
	}
	return "", fmt.Errorf("acquire: all strategies exhausted: %v: %w", lastErr, domain.ErrAcquisitionFailed)
}

// IsVideoURL reports whether the reference points at a supported
// video-sharing site rather than a direct audio asset.
func IsVideoURL(rawURL string) bool {
	lowered := strings.ToLower(strings.TrimSpace(rawURL))
	if !strings.HasPrefix(lowered, "http://") && !strings.HasPrefix(lowered, "https://") {
		return false
	}
	for _, host := range []string{"youtube.com/", "youtu.be/", "music.youtube.com/"} {
		if strings.Contains(lowered, host) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

var _ Fetcher = (*YtdlpFetcher)(nil)
