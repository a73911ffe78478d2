package acquire

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FfprobeProber measures audio duration with ffprobe. Callers treat every
// failure as "duration unknown"; a missing binary just means no metadata.
type FfprobeProber struct {
	path    string
	runner  CommandRunner
	timeout time.Duration
}

func NewFfprobeProber(path string, runner CommandRunner) *FfprobeProber {
	if strings.TrimSpace(path) == "" {
		path = "ffprobe"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &FfprobeProber{path: path, runner: runner, timeout: 20 * time.Second}
}

// Duration returns the audio length in seconds for a local path or URL.
func (p *FfprobeProber) Duration(ctx context.Context, url string) (float64, error) {
	tctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.runner.Run(tctx, p.path,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		url,
	)
	if err != nil {
		return 0, err
	}
	secs, err := strconv.ParseFloat(firstLine(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return secs, nil
}
