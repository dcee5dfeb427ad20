package store

import (
	"context"
	"time"

	"github.com/nhle/job-tracker/internal/model"
)

// Tx is one atomic unit of ledger work. All lookups and writes performed
// through a Tx observe and produce a consistent view: either every write
// commits or none do.
type Tx interface {
	// GetByHash retrieves the tracked application with the given
	// content hash for a user, or nil if none exists.
	GetByHash(ctx context.Context, userID, hash string) (*model.TrackedApplication, error)

	// FindPossibleMatch searches for an existing application the event
	// may be a status update to. Clauses are tried in priority order:
	// same application id and company, same fingerprint and application
	// id, same job title and company — all scoped to the user. The
	// first clause with a hit wins; within a clause, scan order decides.
	FindPossibleMatch(ctx context.Context, userID string, ev model.JobEvent, fingerprint string) (*model.TrackedApplication, error)

	// Insert creates a new ledger row.
	Insert(ctx context.Context, app model.TrackedApplication) error

	// UpdateStatus mutates current_status and last_updated for the
	// user's row with the given hash.
	UpdateStatus(ctx context.Context, userID, hash, status string, at time.Time) error

	// ArchiveUpdate records a new application event in archival storage,
	// used when no notification webhook is configured. It participates in
	// the transaction so a later rollback leaves no archive row behind.
	ArchiveUpdate(ctx context.Context, userID string, ev model.JobEvent) error

	Commit() error
	Rollback() error
}

// Store defines the persistence interface for the application-tracking
// ledger. The ledger is the system of record; everything else (the
// in-process cache in particular) is a derived view.
type Store interface {
	// Begin opens a ledger transaction.
	Begin(ctx context.Context) (Tx, error)

	// ListByUser returns a user's tracked applications, most recently
	// updated first. A limit of 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]model.TrackedApplication, error)

	// PruneStale deletes tracking rows for users matching the prefix
	// whose last update is older than the cutoff. Returns the number of
	// deleted rows.
	PruneStale(ctx context.Context, userPrefix string, before time.Time) (int64, error)

	Close() error
}
