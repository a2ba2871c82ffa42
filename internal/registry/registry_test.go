package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/typerace-go/internal/dependencies/mocks"
	"github.com/mcoot/typerace-go/internal/model"
	"github.com/mcoot/typerace-go/internal/testutil"
)

type nopOutbound struct{}

func (nopOutbound) Push(msg []byte) {}

func newTestRegistry() (*Registry, *mocks.MockClock) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return New(clk, testutil.NopLogger()), clk
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	reg, _ := newTestRegistry()

	first := model.NewRace("r1", "CODE1", "easy", "first text", "host")
	snap, created := reg.GetOrCreate(first)
	require.True(t, created)
	assert.Equal(t, "first text", snap.Text)

	second := model.NewRace("r1", "CODE2", "hard", "second text", "other")
	snap, created = reg.GetOrCreate(second)
	assert.False(t, created)
	assert.Equal(t, "first text", snap.Text, "creation fields of the loser are ignored")
}

func TestGetOrCreateConcurrentSingleWinner(t *testing.T) {
	reg, _ := newTestRegistry()

	const n = 32
	var wg sync.WaitGroup
	createdCount := make(chan bool, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			race := model.NewRace("r1", "CODE", "easy", fmt.Sprintf("text-%d", i), "host")
			_, created := reg.GetOrCreate(race)
			createdCount <- created
		}(i)
	}
	wg.Wait()
	close(createdCount)

	wins := 0
	for created := range createdCount {
		if created {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one creator must win")
}

func TestGetNotFound(t *testing.T) {
	reg, _ := newTestRegistry()

	_, err := reg.Get("missing")
	assert.ErrorIs(t, err, model.ErrRaceNotFound)
}

func TestMutateReturnsSnapshotAfterMutation(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.GetOrCreate(model.NewRace("r1", "C", "easy", "text", "host"))

	snap, err := reg.Mutate("r1", func(r *model.Race) error {
		return r.Join(model.NewPlayer("p1", "u1", "alice"))
	})
	require.NoError(t, err)
	require.Len(t, snap.Players, 1)

	// Mutating the snapshot must not affect stored state
	snap.Players[0].WPM = 999
	stored, err := reg.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Players[0].WPM)
}

func TestMutateErrorLeavesStateUntouched(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.GetOrCreate(model.NewRace("r1", "C", "easy", "text", "host"))

	_, err := reg.Mutate("r1", func(r *model.Race) error {
		return r.Start("not-host", time.Unix(100, 0))
	})
	assert.ErrorIs(t, err, model.ErrNotHost)

	stored, err := reg.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, model.RaceStatusWaiting, stored.Status)
}

func TestMutateNotFound(t *testing.T) {
	reg, _ := newTestRegistry()

	_, err := reg.Mutate("missing", func(r *model.Race) error { return nil })
	assert.ErrorIs(t, err, model.ErrRaceNotFound)
}

func TestMutateSerializesPerRace(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.GetOrCreate(model.NewRace("r1", "C", "easy", "text", "host"))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = reg.Mutate("r1", func(r *model.Race) error {
				r.Code = fmt.Sprintf("C%d", i)
				return nil
			})
		}(i)
	}
	wg.Wait()

	// All mutations applied fully; final state is one of them
	stored, err := reg.Get("r1")
	require.NoError(t, err)
	assert.Regexp(t, `^C\d+$`, string(stored.Code))
}

func TestRegisterConnAppendsRosterInOrder(t *testing.T) {
	reg, _ := newTestRegistry()

	for i := 1; i <= 3; i++ {
		reg.RegisterConn(&Connection{
			PlayerID: model.PlayerID(fmt.Sprintf("p%d", i)),
			UserID:   fmt.Sprintf("u%d", i),
			RaceID:   "r1",
			Out:      nopOutbound{},
		})
	}

	ids := reg.RosterIDs("r1")
	assert.Equal(t, []model.PlayerID{"p1", "p2", "p3"}, ids)
}

func TestUnregisterConnReturnsRaceID(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.RegisterConn(&Connection{PlayerID: "p1", UserID: "u1", RaceID: "r1", Out: nopOutbound{}})

	raceID, ok := reg.UnregisterConn("p1")
	require.True(t, ok)
	assert.Equal(t, model.RaceID("r1"), raceID)
	assert.Empty(t, reg.RosterIDs("r1"))

	_, ok = reg.Conn("p1")
	assert.False(t, ok)
}

func TestUnregisterConnNeverRegisteredIsNoOp(t *testing.T) {
	reg, _ := newTestRegistry()

	_, ok := reg.UnregisterConn("ghost")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.GetOrCreate(model.NewRace("r1", "C", "easy", "text", "host"))
	reg.GetOrCreate(model.NewRace("r2", "C", "easy", "text", "host"))
	reg.RegisterConn(&Connection{PlayerID: "p1", UserID: "u1", RaceID: "r1", Out: nopOutbound{}})
	reg.RegisterConn(&Connection{PlayerID: "p2", UserID: "u2", RaceID: "r2", Out: nopOutbound{}})
	reg.RegisterConn(&Connection{PlayerID: "p3", UserID: "u3", RaceID: "r2", Out: nopOutbound{}})

	stats := reg.Stats()
	assert.Equal(t, 2, stats.Races)
	assert.Equal(t, 3, stats.Connections)
	assert.Equal(t, 3, stats.Players)
}

func TestSweepEvictsStaleFinishedRaces(t *testing.T) {
	reg, clk := newTestRegistry()
	reg.GetOrCreate(model.NewRace("r1", "C", "easy", "text", "host"))
	_, err := reg.Mutate("r1", func(r *model.Race) error {
		r.Status = model.RaceStatusFinished
		return nil
	})
	require.NoError(t, err)

	// Not yet stale
	assert.Equal(t, 0, reg.Sweep(10*time.Minute))

	clk.Advance(11 * time.Minute)
	assert.Equal(t, 1, reg.Sweep(10*time.Minute))

	_, err = reg.Get("r1")
	assert.ErrorIs(t, err, model.ErrRaceNotFound)
}

func TestSweepEvictsStaleEmptyRaces(t *testing.T) {
	reg, clk := newTestRegistry()
	reg.GetOrCreate(model.NewRace("r1", "C", "easy", "text", "host"))

	clk.Advance(11 * time.Minute)
	assert.Equal(t, 1, reg.Sweep(10*time.Minute))
}

func TestSweepKeepsActiveRaces(t *testing.T) {
	reg, clk := newTestRegistry()
	reg.GetOrCreate(model.NewRace("r1", "C", "easy", "text", "host"))
	reg.RegisterConn(&Connection{PlayerID: "p1", UserID: "u1", RaceID: "r1", Out: nopOutbound{}})

	clk.Advance(11 * time.Minute)
	assert.Equal(t, 0, reg.Sweep(10*time.Minute), "waiting race with players must survive")
}
