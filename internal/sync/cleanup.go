// Package sync runs periodic background maintenance against the ledger.
package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/job-tracker/internal/store"
)

// Defaults for the test-user cleanup cycle. Synthetic users accumulate
// tracking rows on every refresh and nothing else ever removes them.
const (
	DefaultCleanupInterval = 24 * time.Hour
	DefaultRetention       = 21 * 24 * time.Hour
	DefaultTestUserPrefix  = "test-"
)

// Cleaner periodically prunes stale test-user tracking rows.
type Cleaner struct {
	store     store.Store
	interval  time.Duration
	retention time.Duration
	prefix    string
	logger    zerolog.Logger
}

// NewCleaner creates a cleaner. Non-positive interval or retention and
// an empty prefix fall back to the defaults.
func NewCleaner(
	s store.Store,
	interval, retention time.Duration,
	prefix string,
	logger zerolog.Logger,
) *Cleaner {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	if prefix == "" {
		prefix = DefaultTestUserPrefix
	}
	return &Cleaner{
		store:     s,
		interval:  interval,
		retention: retention,
		prefix:    prefix,
		logger:    logger,
	}
}

// Run executes cleanup cycles on the configured interval until the
// context is canceled. Cycle failures are logged, never fatal.
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.RunOnce(ctx); err != nil {
				c.logger.Error().Err(err).Msg("test user cleanup failed")
			}
		}
	}
}

// RunOnce prunes test-user rows older than the retention window.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-c.retention)
	deleted, err := c.store.PruneStale(ctx, c.prefix, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		c.logger.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("pruned stale test user rows")
	}
	return nil
}
