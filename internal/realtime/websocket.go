package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nhle/job-tracker/internal/cache"
)

// writeTimeout bounds a single frame write to a slow client.
const writeTimeout = 10 * time.Second

// frame is the wire format for server-to-client pushes.
type frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// registerFrame is the first message a client sends after connecting.
type registerFrame struct {
	UserID string `json:"user_id"`
	IsTest bool   `json:"is_test"`
}

// wsConn adapts a gorilla websocket connection to the Conn interface.
// Writes are serialized; gorilla connections allow one writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(event string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(frame{Event: event, Data: payload})
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// Handler upgrades HTTP requests to websocket connections and runs the
// per-user registration handshake: the client sends a register frame
// with its user id, the handler attaches the connection to the registry,
// refreshes the cache if stale, and pushes the initial email view.
type Handler struct {
	registry *Registry
	cache    *cache.Cache

	// refresh runs a cache refresh cycle for the user if stale. May be
	// nil when no refresher is wired (tests).
	refresh func(userID string, isTest bool)

	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a websocket handler.
func NewHandler(
	registry *Registry,
	c *cache.Cache,
	refresh func(userID string, isTest bool),
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		registry: registry,
		cache:    c,
		refresh:  refresh,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checking happens at the routing boundary.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP handles one websocket session from upgrade to disconnect.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	var reg registerFrame
	if err := conn.ReadJSON(&reg); err != nil || reg.UserID == "" {
		h.logger.Warn().Err(err).Msg("websocket register handshake failed")
		_ = conn.Close()
		return
	}

	wc := &wsConn{conn: conn}
	h.registry.Register(reg.UserID, wc)
	defer h.registry.Unregister(reg.UserID, wc)
	defer wc.Close()

	if h.refresh != nil {
		h.refresh(reg.UserID, reg.IsTest)
	}

	// Send cached data to the newly connected user.
	if err := wc.Send(EventInitialEmails, h.cache.Snapshot(reg.UserID)); err != nil {
		h.logger.Warn().
			Err(err).
			Str("user_id", reg.UserID).
			Msg("sending initial emails failed")
		return
	}

	// Block until the client disconnects. Inbound frames beyond the
	// register handshake are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
