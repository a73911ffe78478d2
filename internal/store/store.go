// Package store is the only read/write path to persisted job rows. It runs
// in one of two modes: connected (pgx pool) or degraded (no pool). In
// degraded mode every operation logs a warning and returns an empty result
// instead of an error, so the rest of the service keeps functioning while
// job tracking is silently lost.
package store

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Store provides CRUD over the music_tracks and voice_covers tables.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New creates a Store. A nil pool selects degraded mode, which is logged
// once here so operators can tell it apart from a healthy quiet store.
func New(pool *pgxpool.Pool, logger zerolog.Logger) *Store {
	if pool == nil {
		logger.Warn().Msg("store: no database configured, running degraded: jobs will not be persisted")
	}
	return &Store{pool: pool, logger: logger}
}

// Available reports whether the store is backed by a live pool.
func (s *Store) Available() bool {
	return s != nil && s.pool != nil
}

func (s *Store) warn(op string, err error) {
	ev := s.logger.Warn().Str("op", op)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("store: operation degraded")
}

// setClause builds an UPDATE SET fragment from column/value pairs, starting
// argument numbering at firstArg.
func setClause(firstArg int, cols []string) string {
	parts := make([]string, 0, len(cols)+1)
	for i, col := range cols {
		parts = append(parts, fmt.Sprintf("%s = $%d", col, firstArg+i))
	}
	parts = append(parts, "updated_at = NOW()")
	return strings.Join(parts, ", ")
}
