// Package realtime tracks which live subscriber is attached to which
// connection and pushes server-to-client events to them.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Client event names pushed over the real-time channel.
const (
	EventInitialEmails = "initialEmails"
	EventNewEmails     = "newEmails"
)

// Conn is a live subscriber connection handle.
type Conn interface {
	// Send pushes one named event with a JSON-serializable payload.
	Send(event string, payload interface{}) error
	Close() error
}

// Registry maps a user id to their live connection. A user has at most
// one registered connection; registering again replaces the old one.
type Registry struct {
	mu     sync.Mutex
	conns  map[string]Conn
	logger zerolog.Logger
}

// NewRegistry creates an empty subscription registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]Conn),
		logger: logger,
	}
}

// Register attaches a connection for a user, closing any previous one.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}

	r.logger.Info().Str("user_id", userID).Msg("subscriber registered")
}

// Unregister detaches the user's connection if it is still the given
// one. A replaced connection does not unregister its successor.
func (r *Registry) Unregister(userID string, conn Conn) {
	r.mu.Lock()
	if r.conns[userID] == conn {
		delete(r.conns, userID)
	}
	r.mu.Unlock()

	r.logger.Info().Str("user_id", userID).Msg("subscriber unregistered")
}

// Connected reports whether the user has a live connection.
func (r *Registry) Connected(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.conns[userID]
	return ok
}

// Emit pushes an event to the user's connection if one is registered.
// Fire-and-forget: absence of a connection is not an error, and a send
// failure is only logged.
func (r *Registry) Emit(userID, event string, payload interface{}) {
	r.mu.Lock()
	conn := r.conns[userID]
	r.mu.Unlock()

	if conn == nil {
		return
	}

	if err := conn.Send(event, payload); err != nil {
		r.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Str("event", event).
			Msg("push to subscriber failed")
	}
}
