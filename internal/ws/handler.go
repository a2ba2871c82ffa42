// Package ws carries the WebSocket side of the server: the HTTP upgrade
// endpoint, the per-connection pumps, and the broadcast fanout.
package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mcoot/typerace-go/internal/registry"
	"github.com/mcoot/typerace-go/internal/services/auth"
	"github.com/mcoot/typerace-go/internal/services/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandlerConfig holds dependencies for the WebSocket handler
type HandlerConfig struct {
	Logger      *slog.Logger
	Registry    *registry.Registry
	Games       *game.Controller
	AuthService *auth.Service
}

// Handler upgrades HTTP requests to WebSocket connections and runs one
// connection pump per client
type Handler struct {
	registry *registry.Registry
	games    *game.Controller
	auth     *auth.Service
	logger   *slog.Logger
}

// NewHandler creates the WebSocket handler
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		registry: cfg.Registry,
		games:    cfg.Games,
		auth:     cfg.AuthService,
		logger:   cfg.Logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the connection and runs the pumps. The write pump runs
// in its own goroutine; the read pump runs on the handler goroutine and
// owns cleanup.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.logger.Info("new connection", slog.String("remote", conn.RemoteAddr().String()))

	c := newClient(conn, h)
	go c.writePump()
	c.readPump(r.Context())
}
