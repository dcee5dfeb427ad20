package source_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/job-tracker/internal/model"
	"github.com/nhle/job-tracker/internal/source"
)

func TestSyntheticFetchDeterministicPerUser(t *testing.T) {
	src := source.NewSynthetic()
	ctx := context.Background()

	first, err := src.Fetch(ctx, "test-user-1")
	require.NoError(t, err)
	second, err := src.Fetch(ctx, "test-user-1")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		// Dates derive from the wall clock, everything else from the seed.
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Subject, second[i].Subject)
		assert.Equal(t, first[i].JobTitle, second[i].JobTitle)
		assert.Equal(t, first[i].CompanyName, second[i].CompanyName)
		assert.Equal(t, first[i].Status, second[i].Status)
		assert.Equal(t, first[i].Body, second[i].Body)
	}
}

func TestSyntheticFetchCountWithinBounds(t *testing.T) {
	src := source.NewSynthetic()
	ctx := context.Background()

	for _, userID := range []string{"alpha", "beta", "gamma", "delta"} {
		events, err := src.Fetch(ctx, userID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(events), 5)
		assert.LessOrEqual(t, len(events), 10)
	}
}

func TestSyntheticFetchEventsAreWellFormed(t *testing.T) {
	src := source.NewSynthetic()

	events, err := src.Fetch(context.Background(), "test-user-2")
	require.NoError(t, err)

	valid := map[string]bool{
		model.StatusApplied:            true,
		model.StatusAssessment:         true,
		model.StatusInterviewScheduled: true,
		model.StatusInterviewComplete:  true,
		model.StatusOffer:              true,
		model.StatusRejected:           true,
	}
	for _, ev := range events {
		assert.NotEmpty(t, ev.ID)
		assert.NotEmpty(t, ev.Subject)
		assert.NotEmpty(t, ev.Body)
		assert.NotEmpty(t, ev.From)
		assert.True(t, valid[ev.Status], "unexpected status %q", ev.Status)
		assert.False(t, ev.Date.IsZero())
	}
}

func TestSyntheticFetchDiffersBetweenUsers(t *testing.T) {
	src := source.NewSynthetic()
	ctx := context.Background()

	a, err := src.Fetch(ctx, "user-a")
	require.NoError(t, err)
	b, err := src.Fetch(ctx, "user-b")
	require.NoError(t, err)

	if len(a) == len(b) {
		same := true
		for i := range a {
			if a[i].Subject != b[i].Subject {
				same = false
				break
			}
		}
		assert.False(t, same, "different users should get different sequences")
	}
}
