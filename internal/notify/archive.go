package notify

import (
	"context"
	"fmt"

	"github.com/nhle/job-tracker/internal/model"
	"github.com/nhle/job-tracker/internal/store"
)

// Archiver records a new application event when no webhook channel is
// configured for the user. The write joins the caller's open ledger
// transaction so it commits and rolls back atomically with the insert.
type Archiver interface {
	Archive(ctx context.Context, tx store.Tx, userID string, ev model.JobEvent) error
}

// StoreArchiver archives events into the ledger database's
// archived_updates table.
type StoreArchiver struct{}

// NewStoreArchiver creates an Archiver writing through the resolution
// transaction.
func NewStoreArchiver() *StoreArchiver {
	return &StoreArchiver{}
}

// Archive writes the event to archival storage within tx.
func (a *StoreArchiver) Archive(
	ctx context.Context,
	tx store.Tx,
	userID string,
	ev model.JobEvent,
) error {
	if err := tx.ArchiveUpdate(ctx, userID, ev); err != nil {
		return fmt.Errorf("archiving event %s: %w", ev.ID, err)
	}
	return nil
}
