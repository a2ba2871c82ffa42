package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRace(hostID PlayerID) *Race {
	return NewRace("race-1", "CODE1", "medium", "some race text", hostID)
}

func testPlayer(n int) Player {
	return NewPlayer(PlayerID(fmt.Sprintf("p%d", n)), fmt.Sprintf("u%d", n), fmt.Sprintf("user%d", n))
}

func TestJoinAppendsInOrder(t *testing.T) {
	r := testRace("p1")

	require.NoError(t, r.Join(testPlayer(1)))
	require.NoError(t, r.Join(testPlayer(2)))
	require.NoError(t, r.Join(testPlayer(3)))

	assert.Len(t, r.Players, 3)
	assert.Equal(t, PlayerID("p1"), r.Players[0].ID)
	assert.Equal(t, PlayerID("p3"), r.Players[2].ID)
}

func TestJoinRejectsBeyondCapacity(t *testing.T) {
	r := testRace("p0")
	for i := 0; i < MaxPlayers; i++ {
		require.NoError(t, r.Join(testPlayer(i)))
	}

	err := r.Join(testPlayer(MaxPlayers))
	assert.ErrorIs(t, err, ErrRaceFull)
	assert.Len(t, r.Players, MaxPlayers)
}

func TestJoinRebindsHostFromUserID(t *testing.T) {
	// The creating client supplies its external user id as host; the host
	// id is rebound to the minted player id when that user joins
	r := testRace("u1")

	require.NoError(t, r.Join(testPlayer(1)))
	assert.Equal(t, PlayerID("p1"), r.HostID)

	require.NoError(t, r.Join(testPlayer(2)))
	assert.Equal(t, PlayerID("p1"), r.HostID)
}

func TestLeaveRemovesPlayerAndNeverChangesStatus(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))
	require.NoError(t, r.Join(testPlayer(2)))
	require.NoError(t, r.Start("p1", time.Unix(100, 0)))

	r.Leave("p2")
	assert.Len(t, r.Players, 1)
	assert.Equal(t, RaceStatusPlaying, r.Status)

	// Leaving an unknown id is a no-op
	r.Leave("p99")
	assert.Len(t, r.Players, 1)
}

func TestStartRequiresHost(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))
	require.NoError(t, r.Join(testPlayer(2)))

	err := r.Start("p2", time.Unix(100, 0))
	assert.ErrorIs(t, err, ErrNotHost)
	assert.Equal(t, RaceStatusWaiting, r.Status)
	assert.Nil(t, r.StartedAt)
}

func TestStartOnlyFromWaiting(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))

	require.NoError(t, r.Start("p1", time.Unix(100, 0)))
	assert.Equal(t, RaceStatusPlaying, r.Status)
	require.NotNil(t, r.StartedAt)
	assert.Equal(t, int64(100), *r.StartedAt)

	err := r.Start("p1", time.Unix(200, 0))
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.Equal(t, int64(100), *r.StartedAt)
}

func TestSetProgressUnknownPlayerIsNoOp(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))

	r.SetProgress("p99", 50, 80, 97.5)
	assert.Equal(t, 0, r.Players[0].Progress)
}

func TestSetProgressOverwritesStats(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))

	r.SetProgress("p1", 50, 80, 97.5)
	p := r.Players[0]
	assert.Equal(t, 50, p.Progress)
	assert.Equal(t, 80, p.WPM)
	assert.Equal(t, 97.5, p.Accuracy)
}

func TestRecordFinishIsIdempotentButRestamps(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))

	r.RecordFinish("p1", 90, 99.0, time.Unix(100, 0))
	require.NotNil(t, r.Players[0].FinishedAt)
	assert.Equal(t, int64(100), *r.Players[0].FinishedAt)

	// A second finish re-stamps finished_at
	r.RecordFinish("p1", 95, 98.0, time.Unix(200, 0))
	assert.True(t, r.Players[0].Finished)
	assert.Equal(t, int64(200), *r.Players[0].FinishedAt)
	assert.Equal(t, 95, r.Players[0].WPM)
}

func TestAllFinished(t *testing.T) {
	r := testRace("p1")
	assert.False(t, r.AllFinished(), "empty roster never counts as finished")

	require.NoError(t, r.Join(testPlayer(1)))
	require.NoError(t, r.Join(testPlayer(2)))
	assert.False(t, r.AllFinished())

	r.RecordFinish("p1", 90, 99.0, time.Unix(100, 0))
	assert.False(t, r.AllFinished())

	r.RecordFinish("p2", 80, 95.0, time.Unix(110, 0))
	assert.True(t, r.AllFinished())
}

func TestFinalizeTransitionsExactlyOnce(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))
	require.NoError(t, r.Start("p1", time.Unix(50, 0)))
	r.RecordFinish("p1", 90, 99.0, time.Unix(100, 0))

	assert.True(t, r.Finalize())
	assert.Equal(t, RaceStatusFinished, r.Status)
	assert.False(t, r.Finalize(), "second finalize must report no transition")
}

func TestFinalizeRequiresPlaying(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))
	r.RecordFinish("p1", 90, 99.0, time.Unix(100, 0))

	assert.False(t, r.Finalize(), "waiting race must not finalize")
	assert.Equal(t, RaceStatusWaiting, r.Status)
}

func TestWinnerSmallestFinishedAt(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))
	require.NoError(t, r.Join(testPlayer(2)))
	require.NoError(t, r.Join(testPlayer(3)))

	r.RecordFinish("p1", 60, 95.0, time.Unix(30, 0))
	r.RecordFinish("p2", 70, 96.0, time.Unix(10, 0))
	r.RecordFinish("p3", 80, 97.0, time.Unix(20, 0))

	winner, ok := r.Winner()
	require.True(t, ok)
	assert.Equal(t, PlayerID("p2"), winner)
}

func TestWinnerTieBreaksByRosterOrder(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))
	require.NoError(t, r.Join(testPlayer(2)))

	r.RecordFinish("p1", 60, 95.0, time.Unix(10, 0))
	r.RecordFinish("p2", 70, 96.0, time.Unix(10, 0))

	winner, ok := r.Winner()
	require.True(t, ok)
	assert.Equal(t, PlayerID("p1"), winner)
}

func TestWinnerNoneWhenNobodyFinished(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))

	_, ok := r.Winner()
	assert.False(t, ok)
}

func TestFinalStandingsUnfinishedLast(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))
	require.NoError(t, r.Join(testPlayer(2)))
	require.NoError(t, r.Join(testPlayer(3)))
	require.NoError(t, r.Join(testPlayer(4)))

	r.RecordFinish("p1", 60, 95.0, time.Unix(10, 0))
	r.RecordFinish("p2", 70, 96.0, time.Unix(30, 0))
	r.RecordFinish("p3", 80, 97.0, time.Unix(20, 0))
	// p4 never finishes

	standings := r.FinalStandings()
	require.Len(t, standings, 4)
	assert.Equal(t, PlayerID("p1"), standings[0].ID)
	assert.Equal(t, PlayerID("p3"), standings[1].ID)
	assert.Equal(t, PlayerID("p2"), standings[2].ID)
	assert.Equal(t, PlayerID("p4"), standings[3].ID)
}

func TestCloneIsDeep(t *testing.T) {
	r := testRace("p1")
	require.NoError(t, r.Join(testPlayer(1)))
	r.RecordFinish("p1", 60, 95.0, time.Unix(10, 0))

	c := r.Clone()
	c.Players[0].WPM = 999
	*c.Players[0].FinishedAt = 999

	assert.Equal(t, 60, r.Players[0].WPM)
	assert.Equal(t, int64(10), *r.Players[0].FinishedAt)
}
