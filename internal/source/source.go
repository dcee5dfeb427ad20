// Package source produces inbound job events for cache refresh cycles.
package source

import (
	"context"

	"github.com/nhle/job-tracker/internal/model"
)

// Source supplies job events for a user. Implementations must be safe
// for concurrent use.
type Source interface {
	// Fetch returns the events currently available for the user.
	Fetch(ctx context.Context, userID string) ([]model.JobEvent, error)
}
