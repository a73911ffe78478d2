package orchestrator

import (
	"context"

	"github.com/rs/zerolog"
)

// Runner spawns detached background work. It is an interface so tests can run
// tasks synchronously instead of racing against real goroutines.
type Runner interface {
	Go(name string, fn func(ctx context.Context))
}

// GoRunner executes tasks on fresh goroutines with a detached context: once
// submitted, a job runs to its terminal state regardless of the request that
// spawned it.
type GoRunner struct {
	Logger zerolog.Logger
}

func (r GoRunner) Go(name string, fn func(ctx context.Context)) {
	go func() {
		// Last-resort containment. Tasks recover their own panics and record
		// a failure; this catches anything that escapes before that defer is
		// installed.
		defer func() {
			if rec := recover(); rec != nil {
				r.Logger.Error().Interface("panic", rec).Str("task", name).Msg("background task panicked")
			}
		}()
		fn(context.Background())
	}()
}

var _ Runner = GoRunner{}
