// Package cache holds the bounded in-process view of recently seen job
// events. The cache is derived and advisory: it serves low-latency reads
// and duplicate short-circuits, but the ledger alone decides
// new/duplicate/update. It may be cleared and rebuilt at any time.
package cache

import (
	"sync"
	"time"

	"github.com/nhle/job-tracker/internal/model"
)

// Entry sources describe how an event reached the cache.
const (
	SourceNew     = "new"     // first sighting, resolved as a new application
	SourceUpdate  = "update"  // resolved as a status update to an existing one
	SourceStorage = "storage" // backfilled from durable storage on refresh
)

// Metadata is the cache-side annotation attached to every entry.
type Metadata struct {
	ReceivedAt      time.Time `json:"received_at"`
	Source          string    `json:"source"`
	StorageLocation string    `json:"storage_location"`
	UserID          string    `json:"user_id"`
}

// Entry wraps a job event with its cache metadata and fingerprint.
// Entries are owned exclusively by the cache and never persisted.
type Entry struct {
	Event       model.JobEvent `json:"event"`
	Fingerprint string         `json:"fingerprint"`
	Metadata    Metadata       `json:"metadata"`
}

// Cache is a FIFO-ordered, size-bounded sequence of entries plus an index
// by event id. Inserting beyond the bound evicts the oldest entry from
// both structures.
type Cache struct {
	mu            sync.Mutex
	byID          map[string]*Entry
	queue         []*Entry
	maxSize       int
	lastRefreshed time.Time
}

// DefaultMaxSize bounds the cache when no explicit size is configured.
const DefaultMaxSize = 1000

// New creates a cache bounded at maxSize entries. A non-positive size
// falls back to DefaultMaxSize.
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		byID:    make(map[string]*Entry),
		maxSize: maxSize,
	}
}

// Add inserts an entry, evicting the oldest if the bound is reached.
// Returns false without inserting when an entry with the same event id
// is already present.
func (c *Cache) Add(entry Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[entry.Event.ID]; ok {
		return false
	}

	if len(c.queue) >= c.maxSize {
		oldest := c.queue[0]
		c.queue = c.queue[1:]
		delete(c.byID, oldest.Event.ID)
	}

	e := entry
	c.byID[e.Event.ID] = &e
	c.queue = append(c.queue, &e)
	return true
}

// Contains reports whether an event id is currently cached.
func (c *Cache) Contains(eventID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.byID[eventID]
	return ok
}

// ClearUser removes all entries belonging to a user from both the queue
// and the index.
func (c *Cache) ClearUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.queue[:0]
	for _, e := range c.queue {
		if e.Metadata.UserID == userID {
			delete(c.byID, e.Event.ID)
			continue
		}
		kept = append(kept, e)
	}
	c.queue = kept
}

// Snapshot returns the deduplicated view of a user's cached events:
// scanning newest to oldest, only the latest entry per fingerprint is
// kept, so a later status update supersedes an earlier snapshot of the
// same application. The returned slice is newest first.
func (c *Cache) Snapshot(userID string) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	var out []Entry
	for i := len(c.queue) - 1; i >= 0; i-- {
		e := c.queue[i]
		if e.Metadata.UserID != userID {
			continue
		}
		if seen[e.Fingerprint] {
			continue
		}
		seen[e.Fingerprint] = true
		out = append(out, *e)
	}
	return out
}

// MaxSize returns the configured entry bound.
func (c *Cache) MaxSize() int {
	return c.maxSize
}

// Len returns the number of cached entries across all users.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.queue)
}

// LastRefreshed returns when the cache was last repopulated from durable
// storage. The zero time means never.
func (c *Cache) LastRefreshed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastRefreshed
}

// MarkRefreshed records a completed refresh cycle.
func (c *Cache) MarkRefreshed(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastRefreshed = at
}
