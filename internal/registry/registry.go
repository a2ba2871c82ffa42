// Package registry is the single owner of all shared race state: race
// sessions, per-race roster-id lists, and per-connection records. Access is
// partitioned per race id so independent races never contend. Roster lists
// and connection records live on their own locks, deliberately independent of
// race-entry locking; a broadcast racing a disconnect may miss a player in a
// narrow window, which best-effort delivery tolerates.
package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/typerace-go/internal/dependencies/clock"
	"github.com/mcoot/typerace-go/internal/model"
)

// Outbound is a player's private ordered delivery handle. Push must never
// block and must be a no-op once the owning connection is torn down.
type Outbound interface {
	Push(msg []byte)
}

// Connection records one live client connection
type Connection struct {
	PlayerID model.PlayerID
	UserID   string
	RaceID   model.RaceID
	Out      Outbound
}

// entry pairs a race with its own lock so mutations on different races
// proceed concurrently
type entry struct {
	mu      sync.Mutex
	race    *model.Race
	touched time.Time
}

// Stats is a read-only view of registry counts for the status server
type Stats struct {
	Races       int `json:"total_races"`
	Connections int `json:"active_connections"`
	Players     int `json:"total_players_connected"`
}

// Registry is the process-wide concurrent store of race state
type Registry struct {
	clock  clock.Clock
	logger *slog.Logger

	mu    sync.RWMutex // guards the races map structure only
	races map[model.RaceID]*entry

	rosterMu sync.Mutex
	rosters  map[model.RaceID][]model.PlayerID

	connMu sync.Mutex
	conns  map[model.PlayerID]*Connection
}

// New creates an empty registry
func New(clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		clock:   clk,
		logger:  logger.With(slog.String("component", "registry")),
		races:   make(map[model.RaceID]*entry),
		rosters: make(map[model.RaceID][]model.PlayerID),
		conns:   make(map[model.PlayerID]*Connection),
	}
}

// GetOrCreate atomically inserts the race if absent, otherwise returns the
// existing one. Exactly one of two concurrent creators wins; the loser
// observes the winner's race. Returns a snapshot and whether this call
// created the entry.
func (r *Registry) GetOrCreate(race *model.Race) (model.Race, bool) {
	r.mu.Lock()
	e, ok := r.races[race.ID]
	if !ok {
		e = &entry{race: race, touched: r.clock.Now()}
		r.races[race.ID] = e
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Info("race created", slog.String("race_id", string(race.ID)))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.race.Clone(), !ok
}

// Get returns a consistent snapshot of the race
func (r *Registry) Get(id model.RaceID) (model.Race, error) {
	r.mu.RLock()
	e, ok := r.races[id]
	r.mu.RUnlock()
	if !ok {
		return model.Race{}, model.ErrRaceNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.race.Clone(), nil
}

// Mutate runs fn with exclusive access to the race's entry only and returns
// a snapshot of the state after mutation. Mutations on the same race
// serialize; no cross-race lock is ever held. If fn returns an error the
// entry is assumed unmodified and no snapshot is returned.
func (r *Registry) Mutate(id model.RaceID, fn func(*model.Race) error) (model.Race, error) {
	r.mu.RLock()
	e, ok := r.races[id]
	r.mu.RUnlock()
	if !ok {
		return model.Race{}, model.ErrRaceNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.race); err != nil {
		return model.Race{}, err
	}
	e.touched = r.clock.Now()
	return e.race.Clone(), nil
}

// RegisterConn inserts the connection record and appends the player id to
// the race's roster-id list
func (r *Registry) RegisterConn(c *Connection) {
	r.connMu.Lock()
	r.conns[c.PlayerID] = c
	r.connMu.Unlock()

	r.rosterMu.Lock()
	r.rosters[c.RaceID] = append(r.rosters[c.RaceID], c.PlayerID)
	r.rosterMu.Unlock()
}

// UnregisterConn removes the connection record and the player's roster-id
// entry, returning the race id the player was registered to. Safe to call
// for a player that was never registered.
func (r *Registry) UnregisterConn(playerID model.PlayerID) (model.RaceID, bool) {
	r.connMu.Lock()
	c, ok := r.conns[playerID]
	if ok {
		delete(r.conns, playerID)
	}
	r.connMu.Unlock()
	if !ok {
		return "", false
	}

	r.rosterMu.Lock()
	ids := r.rosters[c.RaceID]
	for i, id := range ids {
		if id == playerID {
			r.rosters[c.RaceID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	r.rosterMu.Unlock()

	return c.RaceID, true
}

// Conn returns the connection record for a player, if one exists
func (r *Registry) Conn(playerID model.PlayerID) (*Connection, bool) {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	c, ok := r.conns[playerID]
	return c, ok
}

// RosterIDs returns the currently-registered player ids for a race in
// roster order
func (r *Registry) RosterIDs(id model.RaceID) []model.PlayerID {
	r.rosterMu.Lock()
	defer r.rosterMu.Unlock()
	ids := r.rosters[id]
	out := make([]model.PlayerID, len(ids))
	copy(out, ids)
	return out
}

// Stats derives read-only counts by inspecting the registry
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	races := len(r.races)
	r.mu.RUnlock()

	r.connMu.Lock()
	conns := len(r.conns)
	r.connMu.Unlock()

	r.rosterMu.Lock()
	players := 0
	for _, ids := range r.rosters {
		players += len(ids)
	}
	r.rosterMu.Unlock()

	return Stats{Races: races, Connections: conns, Players: players}
}

// Sweep evicts races that have been finished, or empty of registered
// players, for longer than ttl. Returns the number of races removed.
func (r *Registry) Sweep(ttl time.Duration) int {
	now := r.clock.Now()

	r.mu.RLock()
	candidates := make([]model.RaceID, 0, len(r.races))
	for id := range r.races {
		candidates = append(candidates, id)
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range candidates {
		r.mu.RLock()
		e, ok := r.races[id]
		r.mu.RUnlock()
		if !ok {
			continue
		}

		e.mu.Lock()
		stale := now.Sub(e.touched) > ttl
		finished := e.race.Status == model.RaceStatusFinished
		e.mu.Unlock()
		if !stale {
			continue
		}

		r.rosterMu.Lock()
		empty := len(r.rosters[id]) == 0
		r.rosterMu.Unlock()

		if !finished && !empty {
			continue
		}

		r.mu.Lock()
		delete(r.races, id)
		r.mu.Unlock()

		r.rosterMu.Lock()
		delete(r.rosters, id)
		r.rosterMu.Unlock()

		r.logger.Info("race evicted",
			slog.String("race_id", string(id)),
			slog.Bool("finished", finished))
		removed++
	}
	return removed
}
