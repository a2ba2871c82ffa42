package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/typerace-go/internal/model"
	"github.com/mcoot/typerace-go/internal/registry"
	"github.com/mcoot/typerace-go/internal/services/auth"
	"github.com/mcoot/typerace-go/internal/services/game"
)

// client is the connection pump for one WebSocket client: an inbound
// decode/dispatch loop and an outbound delivery loop bridged by a private
// unbounded queue. A connection starts unauthenticated; until the auth
// command succeeds, every other command gets a soft error reply.
// writeWait is the time allowed to write one message to the peer
const writeWait = 10 * time.Second

type client struct {
	conn       *websocket.Conn
	out        *outbox
	writerDone chan struct{}
	registry   *registry.Registry
	games      *game.Controller
	auth       *auth.Service
	logger     *slog.Logger

	playerID      model.PlayerID
	raceID        model.RaceID
	authenticated bool
}

func newClient(conn *websocket.Conn, h *Handler) *client {
	return &client{
		conn:       conn,
		out:        newOutbox(),
		writerDone: make(chan struct{}),
		registry:   h.registry,
		games:      h.games,
		auth:       h.auth,
		logger:     h.logger.With(slog.String("remote", conn.RemoteAddr().String())),
	}
}

// readPump decodes inbound frames and dispatches commands. Any transport
// read error or peer close ends the loop; cleanup runs exactly once
// regardless of the exit path.
func (c *client) readPump(ctx context.Context) {
	defer c.teardown()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Debug("connection closed", slog.String("error", err.Error()))
			return
		}

		var msg model.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("malformed message dropped", slog.String("error", err.Error()))
			continue
		}

		if !c.dispatch(ctx, msg) {
			return
		}
	}
}

// writePump drains the outbound queue strictly in order. A transport write
// failure stops the loop; subsequent pushes become no-ops.
func (c *client) writePump() {
	defer close(c.writerDone)
	for {
		msg, ok := c.out.Pop()
		if !ok {
			return
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.out.Close()
			return
		}
	}
}

// dispatch handles one decoded command. Returns false to terminate the
// connection.
func (c *client) dispatch(ctx context.Context, msg model.ClientMessage) bool {
	if msg.Type == model.TypeAuth {
		return c.handleAuth(ctx, msg)
	}

	if !c.authenticated {
		c.send(model.NewError("Not authenticated"))
		return true
	}

	switch msg.Type {
	case model.TypeStartGame:
		if err := c.games.HandleStart(ctx, c.raceID, c.playerID); err != nil {
			c.send(model.NewError(errorMessage(err)))
		}
	case model.TypeUpdateProgress:
		if err := c.games.HandleProgress(ctx, c.raceID, c.playerID, msg.Progress, msg.WPM, msg.Accuracy); err != nil {
			c.send(model.NewError(errorMessage(err)))
		}
	case model.TypeFinishGame:
		if err := c.games.HandleFinish(ctx, c.raceID, c.playerID, msg.WPM, msg.Accuracy); err != nil {
			c.send(model.NewError(errorMessage(err)))
		}
	case model.TypePing:
		c.send(model.NewPong())
	default:
		c.logger.Warn("unknown message type dropped", slog.String("type", msg.Type))
	}
	return true
}

// handleAuth verifies the credential, mints a fresh player id, lazily
// creates the race, and joins it. Verification failure terminates the
// connection; a capacity rejection leaves it open but unauthenticated.
func (c *client) handleAuth(ctx context.Context, msg model.ClientMessage) bool {
	if c.authenticated {
		c.send(model.NewError("Already authenticated"))
		return true
	}

	claims, err := c.auth.Verify(msg.Token)
	if err != nil {
		c.logger.Warn("authentication failed", slog.String("error", err.Error()))
		c.send(model.NewError("Authentication failed"))
		return false
	}

	playerID := model.PlayerID(uuid.NewString())
	raceID := model.RaceID(msg.GameID)

	// Lazy creation: the creation fields of this auth command are ignored
	// if the race already exists. Two simultaneous creators race here; the
	// registry guarantees exactly one wins.
	race := model.NewRace(raceID, msg.GameCode, msg.Difficulty, msg.Text, model.PlayerID(msg.HostID))
	c.registry.GetOrCreate(race)

	player := model.NewPlayer(playerID, claims.UserID, claims.Username)
	c.registry.RegisterConn(&registry.Connection{
		PlayerID: playerID,
		UserID:   claims.UserID,
		RaceID:   raceID,
		Out:      c.out,
	})

	snapshot, err := c.games.HandleJoin(ctx, raceID, player)
	if err != nil {
		c.registry.UnregisterConn(playerID)
		c.send(model.NewError(errorMessage(err)))
		return true
	}

	c.playerID = playerID
	c.raceID = raceID
	c.authenticated = true

	c.logger.Info("client authenticated",
		slog.String("player_id", string(playerID)),
		slog.String("race_id", string(raceID)),
		slog.String("username", claims.Username))

	c.send(model.NewConnected(playerID))
	c.send(model.NewGameState(snapshot))
	return true
}

// teardown unregisters the connection and removes the player from the race
// roster. Runs exactly once, from the read pump's defer.
func (c *client) teardown() {
	// Let the write loop drain any queued replies before the socket goes away
	c.out.Close()
	<-c.writerDone
	_ = c.conn.Close()

	if !c.authenticated {
		return
	}

	c.registry.UnregisterConn(c.playerID)
	c.games.HandleLeave(context.Background(), c.raceID, c.playerID)
}

// send marshals a reply for this connection only
func (c *client) send(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to encode reply", slog.String("error", err.Error()))
		return
	}
	c.out.Push(data)
}

// errorMessage maps domain errors to wire error strings
func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrRaceNotFound):
		return "Game not found"
	case errors.Is(err, model.ErrRaceFull):
		return "Game is full"
	case errors.Is(err, model.ErrNotHost):
		return "Only the host can start the game"
	case errors.Is(err, model.ErrAlreadyStarted):
		return "Game already started"
	default:
		return err.Error()
	}
}
