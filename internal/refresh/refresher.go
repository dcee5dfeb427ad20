// Package refresh rebuilds the event cache from durable storage when it
// goes stale. A refresh is best effort: if every attempt fails, the
// stale cache keeps serving reads rather than going dark.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/job-tracker/internal/backoff"
	"github.com/nhle/job-tracker/internal/cache"
	"github.com/nhle/job-tracker/internal/model"
	"github.com/nhle/job-tracker/internal/source"
)

// DefaultWindow is how long a refresh stays fresh when not configured.
const DefaultWindow = 30 * time.Minute

// Batcher is the resolver surface the refresher repopulates through.
// Synthetic events go through full resolution; ledger rows are
// backfilled directly since they are already durably tracked.
type Batcher interface {
	AddMany(ctx context.Context, events []model.JobEvent, userID, webhook string, isTest bool) int
	Backfill(userID string, apps []model.TrackedApplication) int
}

// Lister reads a user's tracked applications from durable storage.
type Lister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]model.TrackedApplication, error)
}

// Refresher repopulates the cache for a user when the last refresh is
// older than the configured window.
type Refresher struct {
	cache     *cache.Cache
	lister    Lister
	synthetic source.Source
	batcher   Batcher
	policy    backoff.Policy
	window    time.Duration
	logger    zerolog.Logger
}

// New creates a refresher. A non-positive window falls back to
// DefaultWindow.
func New(
	c *cache.Cache,
	lister Lister,
	synthetic source.Source,
	batcher Batcher,
	policy backoff.Policy,
	window time.Duration,
	logger zerolog.Logger,
) *Refresher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Refresher{
		cache:     c,
		lister:    lister,
		synthetic: synthetic,
		batcher:   batcher,
		policy:    policy,
		window:    window,
		logger:    logger,
	}
}

// Stale reports whether the cache needs a refresh cycle.
func (r *Refresher) Stale() bool {
	last := r.cache.LastRefreshed()
	return last.IsZero() || time.Since(last) >= r.window
}

// RefreshIfNeeded runs one refresh cycle for the user if the cache is
// stale, retrying per the backoff policy. On exhausted retries the
// error is returned and the stale cache is left intact, still holding
// whatever was there before the failed cycle.
func (r *Refresher) RefreshIfNeeded(ctx context.Context, userID string, isTest bool) error {
	if !r.Stale() {
		return nil
	}

	err := r.policy.Retry(ctx, func(ctx context.Context) error {
		return r.refreshOnce(ctx, userID, isTest)
	})
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Msg("cache refresh failed, serving stale data")
		return fmt.Errorf("refreshing cache for user %s: %w", userID, err)
	}

	r.cache.MarkRefreshed(time.Now().UTC())
	return nil
}

func (r *Refresher) refreshOnce(ctx context.Context, userID string, isTest bool) error {
	if isTest {
		events, err := r.synthetic.Fetch(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetching synthetic events: %w", err)
		}
		r.cache.ClearUser(userID)
		added := r.batcher.AddMany(ctx, events, userID, "", true)

		// Regenerated events dedupe against rows tracked in earlier
		// cycles, so resolution alone can repopulate nothing. Top the
		// cache up from the ledger; the fingerprint-collapsed snapshot
		// absorbs any overlap with the entries just resolved.
		apps, err := r.lister.ListByUser(ctx, userID, r.cache.MaxSize())
		if err != nil {
			return fmt.Errorf("listing tracked applications: %w", err)
		}
		backfilled := r.batcher.Backfill(userID, apps)

		r.logger.Debug().
			Str("user_id", userID).
			Int("added", added).
			Int("backfilled", backfilled).
			Msg("refreshed cache from synthetic source")
		return nil
	}

	apps, err := r.lister.ListByUser(ctx, userID, r.cache.MaxSize())
	if err != nil {
		return fmt.Errorf("listing tracked applications: %w", err)
	}
	r.cache.ClearUser(userID)
	added := r.batcher.Backfill(userID, apps)
	r.logger.Debug().
		Str("user_id", userID).
		Int("added", added).
		Msg("refreshed cache from ledger")
	return nil
}
