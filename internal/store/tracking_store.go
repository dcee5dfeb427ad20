package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/job-tracker/internal/model"
)

// sqliteTx implements Tx over a sqlx transaction.
type sqliteTx struct {
	tx *sqlx.Tx
}

// GetByHash retrieves a tracked application by content hash for a user.
// Returns nil (no error) when no row exists.
func (t *sqliteTx) GetByHash(
	ctx context.Context,
	userID, hash string,
) (*model.TrackedApplication, error) {
	var app model.TrackedApplication
	err := t.tx.GetContext(ctx, &app,
		"SELECT * FROM application_tracking WHERE hash = ? AND user_id = ?",
		hash, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting application by hash: %w", err)
	}
	return &app, nil
}

// matchClauses are the fuzzy-match conditions in priority order. The
// first clause returning a row wins; within a clause the row first in
// scan order is taken. This mirrors the observed heuristic rather than
// asserting a stronger uniqueness than the data supports.
var matchClauses = []struct {
	where string
	args  func(ev model.JobEvent, fingerprint string) []interface{}
}{
	{
		where: "application_id = ? AND application_id != '' AND company_name = ?",
		args: func(ev model.JobEvent, _ string) []interface{} {
			return []interface{}{ev.ApplicationID, ev.CompanyName}
		},
	},
	{
		where: "fingerprint = ? AND application_id = ? AND application_id != ''",
		args: func(ev model.JobEvent, fingerprint string) []interface{} {
			return []interface{}{fingerprint, ev.ApplicationID}
		},
	},
	{
		where: "job_title = ? AND job_title != '' AND company_name = ?",
		args: func(ev model.JobEvent, _ string) []interface{} {
			return []interface{}{ev.JobTitle, ev.CompanyName}
		},
	},
}

// FindPossibleMatch searches for an existing application the event may be
// a status update to, trying each match clause in priority order.
func (t *sqliteTx) FindPossibleMatch(
	ctx context.Context,
	userID string,
	ev model.JobEvent,
	fingerprint string,
) (*model.TrackedApplication, error) {
	for _, clause := range matchClauses {
		query := "SELECT * FROM application_tracking WHERE (" +
			clause.where + ") AND user_id = ? LIMIT 1"
		args := append(clause.args(ev, fingerprint), userID)

		var app model.TrackedApplication
		err := t.tx.GetContext(ctx, &app, query, args...)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("searching possible match: %w", err)
		}
		return &app, nil
	}
	return nil, nil
}

// Insert creates a new ledger row.
func (t *sqliteTx) Insert(ctx context.Context, app model.TrackedApplication) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO application_tracking (
			hash, user_id, fingerprint, email_address, application_id,
			company_name, job_title, notification_message_id,
			current_status, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.Hash, app.UserID, app.Fingerprint, app.EmailAddress,
		app.ApplicationID, app.CompanyName, app.JobTitle,
		app.NotificationMessageID, app.CurrentStatus,
		app.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting tracked application: %w", err)
	}
	return nil
}

// UpdateStatus mutates current_status and last_updated for a user's row.
func (t *sqliteTx) UpdateStatus(
	ctx context.Context,
	userID, hash, status string,
	at time.Time,
) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE application_tracking
		SET current_status = ?, last_updated = ?
		WHERE hash = ? AND user_id = ?`,
		status, at.UTC(), hash, userID,
	)
	if err != nil {
		return fmt.Errorf("updating status for %s: %w", hash, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("application %s not found", hash)
	}
	return nil
}

// ArchiveUpdate records a new application event in archival storage.
// Used as the delivery fallback when no webhook is configured; the row
// commits and rolls back with the rest of the transaction.
func (t *sqliteTx) ArchiveUpdate(
	ctx context.Context,
	userID string,
	ev model.JobEvent,
) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO archived_updates (
			id, user_id, email_id, subject, sender, snippet,
			job_status, date, full_content
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), userID, ev.ID, ev.Subject, ev.From,
		ev.Snippet(), ev.Status, ev.Date.UTC(), ev.Body,
	)
	if err != nil {
		return fmt.Errorf("archiving update for %s: %w", userID, err)
	}
	return nil
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// ListByUser returns a user's tracked applications, most recently
// updated first.
func (s *SQLiteStore) ListByUser(
	ctx context.Context,
	userID string,
	limit int,
) ([]model.TrackedApplication, error) {
	query := `
		SELECT * FROM application_tracking
		WHERE user_id = ?
		ORDER BY last_updated DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var apps []model.TrackedApplication
	if err := s.db.SelectContext(ctx, &apps, query, userID); err != nil {
		return nil, fmt.Errorf("listing applications for %s: %w", userID, err)
	}
	return apps, nil
}

// PruneStale deletes tracking rows for users matching the prefix whose
// last update is older than the cutoff.
func (s *SQLiteStore) PruneStale(
	ctx context.Context,
	userPrefix string,
	before time.Time,
) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM application_tracking
		WHERE user_id LIKE ? AND last_updated < ?`,
		userPrefix+"%", before.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning stale rows: %w", err)
	}
	return res.RowsAffected()
}

