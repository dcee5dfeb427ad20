// Package resolver decides, for each inbound job event, whether it is a
// brand-new application, a status update to one already tracked, or a
// duplicate to drop. All decisions are made against the durable ledger
// inside a single transaction; the in-process cache is only a
// short-circuit and a read-side view, never the deciding authority.
package resolver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nhle/job-tracker/internal/cache"
	"github.com/nhle/job-tracker/internal/identity"
	"github.com/nhle/job-tracker/internal/model"
	"github.com/nhle/job-tracker/internal/realtime"
	"github.com/nhle/job-tracker/internal/store"
)

// DefaultChunkSize is how many events are resolved per sequential chunk
// in a batch call when not configured.
const DefaultChunkSize = 25

// DiscordSender delivers a new-application notification and returns the
// created message id.
type DiscordSender interface {
	Send(ctx context.Context, webhookURL string, ev model.JobEvent) (string, error)
}

// UpdatePusher flushes a batch of pending status-update notices to the
// external bot endpoint.
type UpdatePusher interface {
	PushUpdates(ctx context.Context, updates []model.PendingUpdate) error
}

// Archiver records new applications when no webhook is configured. The
// write joins the open resolution transaction so it shares its fate.
type Archiver interface {
	Archive(ctx context.Context, tx store.Tx, userID string, ev model.JobEvent) error
}

// Emitter pushes events to a user's live connection, if any.
type Emitter interface {
	Emit(userID, event string, payload interface{})
}

// Resolver implements dedup/update resolution over the ledger.
type Resolver struct {
	store     store.Store
	cache     *cache.Cache
	discord   DiscordSender
	bot       UpdatePusher
	archiver  Archiver
	emitter   Emitter
	logger    zerolog.Logger
	chunkSize int
}

// New creates a resolver. A non-positive chunkSize falls back to
// DefaultChunkSize.
func New(
	s store.Store,
	c *cache.Cache,
	discord DiscordSender,
	bot UpdatePusher,
	archiver Archiver,
	emitter Emitter,
	logger zerolog.Logger,
	chunkSize int,
) *Resolver {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Resolver{
		store:     s,
		cache:     c,
		discord:   discord,
		bot:       bot,
		archiver:  archiver,
		emitter:   emitter,
		logger:    logger,
		chunkSize: chunkSize,
	}
}

// Add resolves a single event. It returns true when the event was newly
// tracked or applied as a status update, false when it was a duplicate,
// malformed, or any step failed. Failures never leave partial ledger
// state: the transaction is rolled back and the event reported as not
// added. Pending update notices produced by this event are flushed
// immediately.
func (r *Resolver) Add(
	ctx context.Context,
	ev model.JobEvent,
	userID, webhook string,
	isTest bool,
) bool {
	var pending []model.PendingUpdate
	added := r.addOne(ctx, ev, userID, webhook, isTest, &pending)
	r.flushPending(ctx, pending)
	return added
}

// AddMany resolves an ordered list of events, returning how many were
// newly tracked or updated. Events are processed in fixed-size chunks,
// sequentially within each chunk, so writes for one user never
// interleave. A per-call set of event ids guards against the same id
// being delivered twice in one page. One event's failure does not abort
// the rest. Pending update notices are flushed once per call, and live
// subscribers receive one newEmails push with everything that was added.
func (r *Resolver) AddMany(
	ctx context.Context,
	events []model.JobEvent,
	userID, webhook string,
	isTest bool,
) int {
	var (
		pending   []model.PendingUpdate
		addedEvts []model.JobEvent
		seen      = make(map[string]bool, len(events))
	)

	for start := 0; start < len(events); start += r.chunkSize {
		end := start + r.chunkSize
		if end > len(events) {
			end = len(events)
		}

		for _, ev := range events[start:end] {
			if ev.ID != "" {
				if seen[ev.ID] {
					continue
				}
				seen[ev.ID] = true
			}

			if r.addOne(ctx, ev, userID, webhook, isTest, &pending) {
				addedEvts = append(addedEvts, ev)
			}
		}
	}

	if len(addedEvts) > 0 {
		r.emitter.Emit(userID, realtime.EventNewEmails, addedEvts)
	}

	r.flushPending(ctx, pending)

	return len(addedEvts)
}

// Backfill repopulates the cache for a user from ledger rows, marking
// every entry as storage-sourced. No ledger writes and no notifications:
// the data already lives durably. Returns how many entries were cached.
func (r *Resolver) Backfill(userID string, apps []model.TrackedApplication) int {
	added := 0
	for _, app := range apps {
		entry := cache.Entry{
			Event: model.JobEvent{
				ID:            app.Hash,
				From:          app.EmailAddress,
				ApplicationID: app.ApplicationID,
				CompanyName:   app.CompanyName,
				JobTitle:      app.JobTitle,
				Status:        app.CurrentStatus,
				Date:          app.LastUpdated,
			},
			Fingerprint: app.Fingerprint,
			Metadata: cache.Metadata{
				ReceivedAt:      time.Now().UTC(),
				Source:          cache.SourceStorage,
				StorageLocation: "ledger",
				UserID:          userID,
			},
		}
		if r.cache.Add(entry) {
			added++
		}
	}
	return added
}

// addOne runs the resolution algorithm for one event under a single
// ledger transaction. Pending update notices are appended to pending;
// the caller decides when to flush them.
func (r *Resolver) addOne(
	ctx context.Context,
	ev model.JobEvent,
	userID, webhook string,
	isTest bool,
	pending *[]model.PendingUpdate,
) bool {
	// Cheap short-circuit before touching the ledger.
	if ev.ID != "" && r.cache.Contains(ev.ID) {
		return false
	}

	// Malformed input is rejected before any write.
	if ev.Body == "" {
		r.logger.Debug().Str("user_id", userID).Msg("dropping event with empty body")
		return false
	}

	hash := identity.Hash(ev.Body)
	fingerprint := identity.Fingerprint(ev.JobTitle, ev.CompanyName)

	tx, err := r.store.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("beginning resolution transaction")
		return false
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	existing, err := tx.GetByHash(ctx, userID, hash)
	if err != nil {
		r.logger.Error().Err(err).Msg("looking up event hash")
		return false
	}
	if existing != nil {
		// Exact duplicate: a defined outcome, not an error.
		if err := tx.Commit(); err == nil {
			committed = true
		}
		return false
	}

	match, err := tx.FindPossibleMatch(ctx, userID, ev, fingerprint)
	if err != nil {
		r.logger.Error().Err(err).Msg("searching for possible match")
		return false
	}

	when := ev.Date
	if when.IsZero() {
		when = time.Now().UTC()
	}

	var (
		source    string
		location  string
		messageID *string
	)

	if match != nil {
		// Status update: mutate the matched row, never a second one.
		targetID := ""
		if match.NotificationMessageID != nil {
			targetID = *match.NotificationMessageID
		}
		*pending = append(*pending, model.PendingUpdate{
			TargetMessageID: targetID,
			WebhookTarget:   webhook,
			NewStatus:       ev.Status,
			JobTitle:        ev.JobTitle,
			CompanyName:     ev.CompanyName,
			Snippet:         ev.Snippet(),
		})

		if err := tx.UpdateStatus(ctx, userID, match.Hash, ev.Status, when); err != nil {
			r.logger.Error().Err(err).Str("hash", match.Hash).Msg("applying status update")
			return false
		}

		source = cache.SourceUpdate
		location = "memory"
	} else {
		// New application: deliver, then insert.
		source = cache.SourceNew
		switch {
		case isTest:
			// Synthetic traffic never contacts external systems.
			location = "memory"
		case webhook != "":
			msgID, err := r.discord.Send(ctx, webhook, ev)
			if err != nil {
				r.logger.Warn().Err(err).Str("user_id", userID).Msg("webhook delivery failed")
				return false
			}
			messageID = &msgID
			location = "discord"
		default:
			if err := r.archiver.Archive(ctx, tx, userID, ev); err != nil {
				r.logger.Error().Err(err).Str("user_id", userID).Msg("archival fallback failed")
				return false
			}
			location = "archive"
		}

		app := model.TrackedApplication{
			Hash:                  hash,
			UserID:                userID,
			Fingerprint:           fingerprint,
			EmailAddress:          ev.From,
			ApplicationID:         ev.ApplicationID,
			CompanyName:           ev.CompanyName,
			JobTitle:              ev.JobTitle,
			NotificationMessageID: messageID,
			CurrentStatus:         ev.Status,
			LastUpdated:           when,
		}
		if err := tx.Insert(ctx, app); err != nil {
			r.logger.Error().Err(err).Str("hash", hash).Msg("inserting tracked application")
			return false
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("committing resolution")
		return false
	}
	committed = true

	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	return r.cache.Add(cache.Entry{
		Event:       ev,
		Fingerprint: fingerprint,
		Metadata: cache.Metadata{
			ReceivedAt:      time.Now().UTC(),
			Source:          source,
			StorageLocation: location,
			UserID:          userID,
		},
	})
}

// flushPending sends queued update notices in one call. Failure is
// logged and the batch discarded: the ledger is already durably updated
// regardless of notification outcome.
func (r *Resolver) flushPending(ctx context.Context, pending []model.PendingUpdate) {
	if len(pending) == 0 {
		return
	}
	if err := r.bot.PushUpdates(ctx, pending); err != nil {
		r.logger.Warn().Err(err).Int("count", len(pending)).Msg("flushing pending updates failed")
	}
}
