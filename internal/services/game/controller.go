// Package game orchestrates race transitions: it applies mutations through
// the registry and emits the resulting broadcasts.
package game

import (
	"context"
	"log/slog"

	"github.com/mcoot/typerace-go/internal/dependencies/clock"
	"github.com/mcoot/typerace-go/internal/leaderboard"
	"github.com/mcoot/typerace-go/internal/model"
	"github.com/mcoot/typerace-go/internal/registry"
)

// Sender delivers messages to connected players. Delivery is best-effort
// and fire-and-forget.
type Sender interface {
	// Broadcast pushes msg to every registered player of the race except
	// exclude (empty means no exclusion)
	Broadcast(raceID model.RaceID, msg any, exclude model.PlayerID)

	// Send pushes msg to a single player if still connected
	Send(playerID model.PlayerID, msg any)
}

// Controller coordinates race state transitions and their broadcasts
type Controller struct {
	registry *registry.Registry
	sender   Sender
	results  leaderboard.Store
	clock    clock.Clock
	logger   *slog.Logger
}

// NewController creates a game controller
func NewController(
	reg *registry.Registry,
	sender Sender,
	results leaderboard.Store,
	clk clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry: reg,
		sender:   sender,
		results:  results,
		clock:    clk,
		logger:   logger.With(slog.String("component", "game")),
	}
}

// HandleJoin adds the player to the race roster and announces the arrival to
// the rest of the roster. Returns the post-join snapshot for the caller's
// game_state reply.
func (c *Controller) HandleJoin(ctx context.Context, raceID model.RaceID, player model.Player) (model.Race, error) {
	race, err := c.registry.Mutate(raceID, func(r *model.Race) error {
		return r.Join(player)
	})
	if err != nil {
		return model.Race{}, err
	}

	c.logger.Info("player joined race",
		slog.String("race_id", string(raceID)),
		slog.String("player_id", string(player.ID)),
		slog.String("username", player.Username))

	c.sender.Broadcast(raceID, model.NewPlayerJoined(player), player.ID)
	return race, nil
}

// HandleLeave removes the player from the roster and announces the
// departure. A departure that leaves a non-empty, fully-finished roster
// finalizes the race.
func (c *Controller) HandleLeave(ctx context.Context, raceID model.RaceID, playerID model.PlayerID) {
	finalized := false
	race, err := c.registry.Mutate(raceID, func(r *model.Race) error {
		r.Leave(playerID)
		finalized = r.Finalize()
		return nil
	})
	if err != nil {
		return
	}

	c.logger.Info("player left race",
		slog.String("race_id", string(raceID)),
		slog.String("player_id", string(playerID)))

	c.sender.Broadcast(raceID, model.NewPlayerLeft(playerID), "")

	if finalized {
		c.finishRace(ctx, race)
	}
}

// HandleStart transitions the race to playing. Only the host may start, and
// only from the waiting state.
func (c *Controller) HandleStart(ctx context.Context, raceID model.RaceID, by model.PlayerID) error {
	now := c.clock.Now()
	race, err := c.registry.Mutate(raceID, func(r *model.Race) error {
		return r.Start(by, now)
	})
	if err != nil {
		return err
	}

	c.logger.Info("race started",
		slog.String("race_id", string(raceID)),
		slog.String("started_by", string(by)))

	c.sender.Broadcast(raceID, model.NewGameStarted(*race.StartedAt), "")
	return nil
}

// HandleProgress overwrites the player's progress stats and relays them to
// the rest of the roster
func (c *Controller) HandleProgress(ctx context.Context, raceID model.RaceID, playerID model.PlayerID, progress, wpm int, accuracy float64) error {
	_, err := c.registry.Mutate(raceID, func(r *model.Race) error {
		r.SetProgress(playerID, progress, wpm, accuracy)
		return nil
	})
	if err != nil {
		return err
	}

	c.sender.Broadcast(raceID, model.NewPlayerProgress(playerID, progress, wpm, accuracy), playerID)
	return nil
}

// HandleFinish records the player's finish and, if every roster member is
// now done, finalizes the race exactly once
func (c *Controller) HandleFinish(ctx context.Context, raceID model.RaceID, playerID model.PlayerID, wpm int, accuracy float64) error {
	now := c.clock.Now()
	finalized := false
	race, err := c.registry.Mutate(raceID, func(r *model.Race) error {
		r.RecordFinish(playerID, wpm, accuracy, now)
		finalized = r.Finalize()
		return nil
	})
	if err != nil {
		return err
	}

	c.sender.Broadcast(raceID, model.NewPlayerFinished(playerID, wpm, accuracy, now.Unix()), "")

	if finalized {
		c.finishRace(ctx, race)
	}
	return nil
}

// finishRace broadcasts the completion message and records results. Only the
// mutation that performed the playing -> finished transition reaches here,
// so game_finished goes out exactly once per race.
func (c *Controller) finishRace(ctx context.Context, race model.Race) {
	var winnerID *model.PlayerID
	if id, ok := race.Winner(); ok {
		winnerID = &id
	}
	standings := race.FinalStandings()

	c.sender.Broadcast(race.ID, model.NewGameFinished(winnerID, standings), "")

	c.logger.Info("race finished",
		slog.String("race_id", string(race.ID)),
		slog.Int("players", len(standings)))

	c.recordResults(ctx, race)
}

func (c *Controller) recordResults(ctx context.Context, race model.Race) {
	for _, p := range race.Players {
		if !p.Finished || p.FinishedAt == nil {
			continue
		}
		entry := leaderboard.Entry{
			RaceID:     string(race.ID),
			PlayerID:   string(p.ID),
			Username:   p.Username,
			WPM:        p.WPM,
			Accuracy:   p.Accuracy,
			FinishedAt: *p.FinishedAt,
		}
		if err := c.results.Record(ctx, entry); err != nil {
			c.logger.Error("failed to record result",
				slog.String("race_id", string(race.ID)),
				slog.String("player_id", string(p.ID)),
				slog.String("error", err.Error()))
		}
	}
}
