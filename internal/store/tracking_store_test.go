package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/job-tracker/internal/identity"
	"github.com/nhle/job-tracker/internal/model"
	"github.com/nhle/job-tracker/internal/store"
	"github.com/nhle/job-tracker/tests/testutil"
)

func app(hash, userID, title, company, appID, status string) model.TrackedApplication {
	return model.TrackedApplication{
		Hash:          hash,
		UserID:        userID,
		Fingerprint:   identity.Fingerprint(title, company),
		EmailAddress:  "hr@" + company + ".example",
		ApplicationID: appID,
		CompanyName:   company,
		JobTitle:      title,
		CurrentStatus: status,
		LastUpdated:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func insert(t *testing.T, s store.Store, a model.TrackedApplication) {
	t.Helper()
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Insert(ctx, a))
	require.NoError(t, tx.Commit())
}

func TestGetByHashScopedToUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	insert(t, s, app("h1", "u1", "Backend Engineer", "Acme", "", model.StatusApplied))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	got, err := tx.GetByHash(ctx, "u1", "h1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.CompanyName)

	// Another user never sees the row.
	other, err := tx.GetByHash(ctx, "u2", "h1")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestFindPossibleMatchPriorityOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// Row matchable by title+company only.
	insert(t, s, app("h1", "u1", "Backend Engineer", "Acme", "", model.StatusApplied))
	// Row matchable by application id + company.
	insert(t, s, app("h2", "u1", "Platform Engineer", "Acme", "REQ-7", model.StatusApplied))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	// Event carrying the application id resolves to h2 even though its
	// title+company also matches h1's company clause ordering.
	ev := model.JobEvent{
		ApplicationID: "REQ-7",
		CompanyName:   "Acme",
		JobTitle:      "Backend Engineer",
	}
	fp := identity.Fingerprint(ev.JobTitle, ev.CompanyName)

	got, err := tx.FindPossibleMatch(ctx, "u1", ev, fp)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "h2", got.Hash)
}

func TestFindPossibleMatchFallsThroughToTitleCompany(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	insert(t, s, app("h1", "u1", "Backend Engineer", "Acme", "", model.StatusApplied))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	ev := model.JobEvent{
		CompanyName: "Acme",
		JobTitle:    "Backend Engineer",
	}
	got, err := tx.FindPossibleMatch(
		ctx, "u1", ev, identity.Fingerprint(ev.JobTitle, ev.CompanyName),
	)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "h1", got.Hash)
}

func TestFindPossibleMatchIgnoresEmptyFields(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// Row with empty application id and empty title must not match an
	// event that is also missing those fields.
	insert(t, s, app("h1", "u1", "", "Acme", "", model.StatusApplied))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	ev := model.JobEvent{CompanyName: "Acme"}
	got, err := tx.FindPossibleMatch(
		ctx, "u1", ev, identity.Fingerprint("", "Acme"),
	)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindPossibleMatchScopedToUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	insert(t, s, app("h1", "u1", "Backend Engineer", "Acme", "", model.StatusApplied))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	ev := model.JobEvent{CompanyName: "Acme", JobTitle: "Backend Engineer"}
	got, err := tx.FindPossibleMatch(
		ctx, "u2", ev, identity.Fingerprint(ev.JobTitle, ev.CompanyName),
	)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateStatusMutatesRow(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	insert(t, s, app("h1", "u1", "Backend Engineer", "Acme", "", model.StatusApplied))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, tx.UpdateStatus(ctx, "u1", "h1", model.StatusOffer, at))
	require.NoError(t, tx.Commit())

	rows, err := s.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.StatusOffer, rows[0].CurrentStatus)
	assert.True(t, rows[0].LastUpdated.Equal(at))
}

func TestUpdateStatusUnknownHashFails(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	err = tx.UpdateStatus(ctx, "u1", "missing", model.StatusOffer, time.Now())
	assert.Error(t, err)
}

func TestSameHashAllowedAcrossUsers(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// Identical bodies hash identically; each user still gets a row.
	insert(t, s, app("h1", "u1", "Backend Engineer", "Acme", "", model.StatusApplied))
	insert(t, s, app("h1", "u2", "Backend Engineer", "Acme", "", model.StatusApplied))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, tx.UpdateStatus(ctx, "u1", "h1", model.StatusOffer, at))
	require.NoError(t, tx.Commit())

	// Only u1's row moved.
	u1, err := s.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, u1, 1)
	assert.Equal(t, model.StatusOffer, u1[0].CurrentStatus)

	u2, err := s.ListByUser(ctx, "u2", 0)
	require.NoError(t, err)
	require.Len(t, u2, 1)
	assert.Equal(t, model.StatusApplied, u2[0].CurrentStatus)
}

func TestRollbackLeavesNoPartialState(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Insert(ctx, app("h1", "u1", "Backend Engineer", "Acme", "", model.StatusApplied)))
	require.NoError(t, tx.Rollback())

	rows, err := s.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListByUserOrdersByLastUpdatedDesc(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	older := app("h1", "u1", "Backend Engineer", "Acme", "", model.StatusApplied)
	older.LastUpdated = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	newer := app("h2", "u1", "Data Scientist", "Globex", "", model.StatusOffer)
	newer.LastUpdated = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	insert(t, s, older)
	insert(t, s, newer)

	rows, err := s.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "h2", rows[0].Hash)

	limited, err := s.ListByUser(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestArchiveUpdateCommitsWithTransaction(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ev := model.JobEvent{
		ID:      "e1",
		Subject: "Application received",
		From:    "hr@acme.example",
		Body:    "Thanks for applying to Acme",
		Status:  model.StatusApplied,
		Date:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.ArchiveUpdate(ctx, "u1", ev))
	require.NoError(t, tx.Commit())
}

func TestArchiveUpdateRollsBackWithTransaction(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ev := model.JobEvent{ID: "e1", Body: "b", Date: time.Now()}

	// Archive alongside an insert, then roll back: neither write may
	// survive.
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.ArchiveUpdate(ctx, "u1", ev))
	require.NoError(t, tx.Insert(ctx, app("h1", "u1", "Backend Engineer", "Acme", "", model.StatusApplied)))
	require.NoError(t, tx.Rollback())

	rows, err := s.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
