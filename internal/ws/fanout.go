package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/typerace-go/internal/model"
	"github.com/mcoot/typerace-go/internal/registry"
	"github.com/mcoot/typerace-go/internal/services/game"
)

// Fanout delivers messages to the registered players of a race via their
// private outbound queues. Delivery order across recipients follows the
// roster order at the time of the call; a player who disconnects between
// roster snapshot and delivery simply misses the message.
type Fanout struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// NewFanout creates a broadcast fanout over the registry's connections
func NewFanout(reg *registry.Registry, logger *slog.Logger) *Fanout {
	return &Fanout{
		registry: reg,
		logger:   logger.With(slog.String("component", "fanout")),
	}
}

// Ensure Fanout implements the sender interface
var _ game.Sender = (*Fanout)(nil)

// Broadcast pushes msg to every registered player of the race except
// exclude. Encoding happens once per broadcast.
func (f *Fanout) Broadcast(raceID model.RaceID, msg any, exclude model.PlayerID) {
	data, err := json.Marshal(msg)
	if err != nil {
		f.logger.Error("failed to encode broadcast",
			slog.String("race_id", string(raceID)),
			slog.String("error", err.Error()))
		return
	}

	for _, id := range f.registry.RosterIDs(raceID) {
		if id == exclude {
			continue
		}
		if c, ok := f.registry.Conn(id); ok {
			c.Out.Push(data)
		}
	}
}

// Send pushes msg to a single player if a connection record still exists
func (f *Fanout) Send(playerID model.PlayerID, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		f.logger.Error("failed to encode message",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
		return
	}

	if c, ok := f.registry.Conn(playerID); ok {
		c.Out.Push(data)
	}
}
