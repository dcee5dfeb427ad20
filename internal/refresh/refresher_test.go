package refresh_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/job-tracker/internal/backoff"
	"github.com/nhle/job-tracker/internal/cache"
	"github.com/nhle/job-tracker/internal/model"
	"github.com/nhle/job-tracker/internal/refresh"
)

type fakeLister struct {
	apps      []model.TrackedApplication
	err       error
	failFirst int
	calls     int
}

func (f *fakeLister) ListByUser(_ context.Context, _ string, _ int) ([]model.TrackedApplication, error) {
	f.calls++
	if f.calls <= f.failFirst {
		return nil, errors.New("transient failure")
	}
	return f.apps, f.err
}

type fakeSource struct {
	events []model.JobEvent
	err    error
	calls  int
}

func (f *fakeSource) Fetch(_ context.Context, _ string) ([]model.JobEvent, error) {
	f.calls++
	return f.events, f.err
}

type fakeBatcher struct {
	addManyCalls  int
	backfillCalls int
	lastEvents    []model.JobEvent
	lastApps      []model.TrackedApplication
	lastIsTest    bool

	// dedupeAll makes AddMany behave as if every event were an
	// exact-hash duplicate of an earlier cycle.
	dedupeAll bool
}

func (f *fakeBatcher) AddMany(_ context.Context, events []model.JobEvent, _, _ string, isTest bool) int {
	f.addManyCalls++
	f.lastEvents = events
	f.lastIsTest = isTest
	if f.dedupeAll {
		return 0
	}
	return len(events)
}

func (f *fakeBatcher) Backfill(_ string, apps []model.TrackedApplication) int {
	f.backfillCalls++
	f.lastApps = apps
	return len(apps)
}

// fastPolicy keeps retry delays out of test runtime.
func fastPolicy(attempts int) backoff.Policy {
	return backoff.Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func TestRefreshSkippedWhenFresh(t *testing.T) {
	c := cache.New(10)
	c.MarkRefreshed(time.Now())

	lister := &fakeLister{}
	batcher := &fakeBatcher{}
	r := refresh.New(c, lister, &fakeSource{}, batcher, fastPolicy(3), 30*time.Minute, zerolog.Nop())

	require.NoError(t, r.RefreshIfNeeded(context.Background(), "u1", false))
	assert.Zero(t, lister.calls)
	assert.Zero(t, batcher.backfillCalls)
}

func TestRefreshRealUserBackfillsFromLedger(t *testing.T) {
	c := cache.New(10)
	lister := &fakeLister{apps: []model.TrackedApplication{
		{Hash: "h1", UserID: "u1", CompanyName: "Acme"},
		{Hash: "h2", UserID: "u1", CompanyName: "Globex"},
	}}
	batcher := &fakeBatcher{}
	r := refresh.New(c, lister, &fakeSource{}, batcher, fastPolicy(3), 30*time.Minute, zerolog.Nop())

	require.NoError(t, r.RefreshIfNeeded(context.Background(), "u1", false))
	assert.Equal(t, 1, batcher.backfillCalls)
	assert.Len(t, batcher.lastApps, 2)
	assert.Zero(t, batcher.addManyCalls)
	assert.False(t, r.Stale())
}

func TestRefreshTestUserResolvesSyntheticEvents(t *testing.T) {
	c := cache.New(10)
	src := &fakeSource{events: []model.JobEvent{
		{ID: "s1", Body: "body one"},
		{ID: "s2", Body: "body two"},
	}}
	batcher := &fakeBatcher{}
	r := refresh.New(c, &fakeLister{}, src, batcher, fastPolicy(3), 30*time.Minute, zerolog.Nop())

	require.NoError(t, r.RefreshIfNeeded(context.Background(), "test-u", true))
	assert.Equal(t, 1, batcher.addManyCalls)
	assert.True(t, batcher.lastIsTest)
	assert.Len(t, batcher.lastEvents, 2)
	// Resolution is followed by a ledger top-up.
	assert.Equal(t, 1, batcher.backfillCalls)
}

func TestRefreshTestUserDuplicateCycleStillServes(t *testing.T) {
	c := cache.New(10)
	src := &fakeSource{events: []model.JobEvent{
		{ID: "s1", Body: "body one"},
		{ID: "s2", Body: "body two"},
	}}
	// Every regenerated event already has a ledger row from the first
	// cycle; only the ledger top-up can repopulate the cache.
	batcher := &fakeBatcher{dedupeAll: true}
	lister := &fakeLister{apps: []model.TrackedApplication{
		{Hash: "h1", UserID: "test-u", CompanyName: "Acme"},
		{Hash: "h2", UserID: "test-u", CompanyName: "Globex"},
	}}
	r := refresh.New(c, lister, src, batcher, fastPolicy(3), 30*time.Minute, zerolog.Nop())

	require.NoError(t, r.RefreshIfNeeded(context.Background(), "test-u", true))
	assert.Equal(t, 1, batcher.backfillCalls)
	assert.Len(t, batcher.lastApps, 2)
	assert.False(t, r.Stale())
}

func TestRefreshRetriesThenSucceeds(t *testing.T) {
	c := cache.New(10)
	lister := &fakeLister{failFirst: 2}
	batcher := &fakeBatcher{}
	r := refresh.New(c, lister, &fakeSource{}, batcher, fastPolicy(3), 30*time.Minute, zerolog.Nop())

	require.NoError(t, r.RefreshIfNeeded(context.Background(), "u1", false))
	assert.Equal(t, 3, lister.calls)
	assert.Equal(t, 1, batcher.backfillCalls)
	assert.False(t, r.Stale())
}

func TestRefreshExhaustedRetriesLeavesStaleCacheIntact(t *testing.T) {
	c := cache.New(10)
	c.Add(cache.Entry{
		Event:       model.JobEvent{ID: "old", Body: "stale but served"},
		Fingerprint: "fp",
		Metadata:    cache.Metadata{UserID: "u1"},
	})

	lister := &fakeLister{err: errors.New("db down")}
	r := refresh.New(c, lister, &fakeSource{}, &fakeBatcher{}, fastPolicy(3), 30*time.Minute, zerolog.Nop())

	err := r.RefreshIfNeeded(context.Background(), "u1", false)
	require.Error(t, err)
	assert.Equal(t, 3, lister.calls)
	assert.True(t, r.Stale())
	// The listing failed before any clear, so the old entry survives.
	assert.True(t, c.Contains("old"))
}

func TestStaleOnZeroAndOldTimestamps(t *testing.T) {
	c := cache.New(10)
	r := refresh.New(c, &fakeLister{}, &fakeSource{}, &fakeBatcher{}, fastPolicy(1), 30*time.Minute, zerolog.Nop())

	assert.True(t, r.Stale(), "never-refreshed cache is stale")

	c.MarkRefreshed(time.Now().Add(-time.Hour))
	assert.True(t, r.Stale(), "refresh older than the window is stale")

	c.MarkRefreshed(time.Now())
	assert.False(t, r.Stale())
}
