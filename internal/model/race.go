package model

import (
	"math"
	"sort"
	"time"
)

// RaceID identifies one race session, chosen by the caller at creation
type RaceID string

// RaceStatus represents the lifecycle state of a race
type RaceStatus string

const (
	RaceStatusWaiting  RaceStatus = "waiting"  // Roster assembling, not yet started
	RaceStatusPlaying  RaceStatus = "playing"  // Race in progress
	RaceStatusFinished RaceStatus = "finished" // Terminal
)

// MaxPlayers is the fixed roster capacity of a race
const MaxPlayers = 10

// Race represents one race session: roster, status and per-player progress.
// Mutating methods must only be called under the registry's per-entry lock;
// callers outside the registry work with snapshots.
type Race struct {
	ID         RaceID     `json:"id"`
	Code       string     `json:"code"`
	Difficulty string     `json:"difficulty"`
	Text       string     `json:"text"`
	HostID     PlayerID   `json:"host_id"`
	Players    []Player   `json:"players"`
	Status     RaceStatus `json:"status"`
	StartedAt  *int64     `json:"started_at"`
	MaxPlayers int        `json:"max_players"`
}

// NewRace creates a race in the waiting state with an empty roster
func NewRace(id RaceID, code, difficulty, text string, hostID PlayerID) *Race {
	return &Race{
		ID:         id,
		Code:       code,
		Difficulty: difficulty,
		Text:       text,
		HostID:     hostID,
		Players:    []Player{},
		Status:     RaceStatusWaiting,
		MaxPlayers: MaxPlayers,
	}
}

// Join appends a player to the roster. The caller guarantees id uniqueness by
// minting a fresh player id per connection. If the race's host id was supplied
// as an external user id at creation, it is rebound to the joining player's
// minted id so host checks compare like with like.
func (r *Race) Join(p Player) error {
	if len(r.Players) >= r.MaxPlayers {
		return ErrRaceFull
	}
	if string(r.HostID) == p.UserID {
		r.HostID = p.ID
	}
	r.Players = append(r.Players, p)
	return nil
}

// Leave removes a player from the roster if present. Never changes status.
func (r *Race) Leave(playerID PlayerID) {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return
		}
	}
}

// Start transitions waiting -> playing. Only the host may start, and only
// from the waiting state.
func (r *Race) Start(by PlayerID, now time.Time) error {
	if by != r.HostID {
		return ErrNotHost
	}
	if r.Status != RaceStatusWaiting {
		return ErrAlreadyStarted
	}
	r.Status = RaceStatusPlaying
	ts := now.Unix()
	r.StartedAt = &ts
	return nil
}

// SetProgress overwrites a player's progress stats. No-op if the player is
// not in the roster.
func (r *Race) SetProgress(playerID PlayerID, progress, wpm int, accuracy float64) {
	p := r.player(playerID)
	if p == nil {
		return
	}
	p.Progress = progress
	p.WPM = wpm
	p.Accuracy = accuracy
}

// RecordFinish marks a player finished and stamps finished_at. Calling it
// twice for the same player re-stamps finished_at.
func (r *Race) RecordFinish(playerID PlayerID, wpm int, accuracy float64, now time.Time) {
	p := r.player(playerID)
	if p == nil {
		return
	}
	p.Finished = true
	ts := now.Unix()
	p.FinishedAt = &ts
	p.WPM = wpm
	p.Accuracy = accuracy
}

// AllFinished reports whether the roster is non-empty and every current
// member has finished. An empty roster never counts as finished.
func (r *Race) AllFinished() bool {
	if len(r.Players) == 0 {
		return false
	}
	for i := range r.Players {
		if !r.Players[i].Finished {
			return false
		}
	}
	return true
}

// Finalize transitions playing -> finished if every roster member is done.
// Returns true only for the call that performs the transition, so the caller
// can broadcast completion exactly once.
func (r *Race) Finalize() bool {
	if r.Status != RaceStatusPlaying || !r.AllFinished() {
		return false
	}
	r.Status = RaceStatusFinished
	return true
}

// Winner returns the finisher with the smallest finished_at. Ties go to
// roster order. Returns false if no one has finished.
func (r *Race) Winner() (PlayerID, bool) {
	var winner PlayerID
	best := int64(math.MaxInt64)
	found := false
	for i := range r.Players {
		p := &r.Players[i]
		if !p.Finished || p.FinishedAt == nil {
			continue
		}
		if *p.FinishedAt < best {
			best = *p.FinishedAt
			winner = p.ID
			found = true
		}
	}
	return winner, found
}

// FinalStandings returns the roster sorted ascending by finished_at, with
// unfinished players last, stable otherwise.
func (r *Race) FinalStandings() []Player {
	standings := make([]Player, len(r.Players))
	copy(standings, r.Players)
	sort.SliceStable(standings, func(i, j int) bool {
		return finishedAtOrInf(standings[i]) < finishedAtOrInf(standings[j])
	})
	return standings
}

// Clone returns a deep copy suitable for handing outside the registry lock
func (r *Race) Clone() Race {
	c := *r
	c.Players = make([]Player, len(r.Players))
	copy(c.Players, r.Players)
	for i := range c.Players {
		if r.Players[i].FinishedAt != nil {
			ts := *r.Players[i].FinishedAt
			c.Players[i].FinishedAt = &ts
		}
	}
	if r.StartedAt != nil {
		ts := *r.StartedAt
		c.StartedAt = &ts
	}
	return c
}

func (r *Race) player(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

func finishedAtOrInf(p Player) int64 {
	if p.FinishedAt == nil {
		return math.MaxInt64
	}
	return *p.FinishedAt
}
