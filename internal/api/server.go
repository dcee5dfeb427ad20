// Package api exposes the HTTP surface: cached email reads, batch event
// ingestion, and the websocket upgrade endpoint.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/nhle/job-tracker/internal/cache"
	"github.com/nhle/job-tracker/internal/model"
)

// Batcher resolves a batch of inbound events.
type Batcher interface {
	AddMany(ctx context.Context, events []model.JobEvent, userID, webhook string, isTest bool) int
}

// Refresher rebuilds the cache for a user when stale.
type Refresher interface {
	RefreshIfNeeded(ctx context.Context, userID string, isTest bool) error
}

// Server wires the HTTP routes over the cache, resolver and refresher.
type Server struct {
	cache     *cache.Cache
	batcher   Batcher
	refresher Refresher
	ws        http.Handler
	logger    zerolog.Logger
	router    chi.Router
}

// NewServer builds the route tree. ws may be nil when websockets are
// not served (tests).
func NewServer(
	c *cache.Cache,
	batcher Batcher,
	refresher Refresher,
	ws http.Handler,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		cache:     c,
		batcher:   batcher,
		refresher: refresher,
		ws:        ws,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/emails", s.handleListEmails)
		r.Post("/emails/poll", s.handlePoll)
	})

	if ws != nil {
		r.Get("/ws", ws.ServeHTTP)
	}

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
