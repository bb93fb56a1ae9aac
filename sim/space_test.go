package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSpace() *Space {
	return newSpace(0, Rect{X: 0, Y: 0, Width: 10, Height: 10}, 5)
}

func TestSpace_OccupyVacate_RecordsClosedInterval(t *testing.T) {
	// GIVEN a free space
	s := newTestSpace()
	require.True(t, s.IsAvailable())

	// WHEN occupied at 10 and vacated at 40
	require.True(t, s.Occupy("v0", 10))
	assert.False(t, s.IsAvailable())
	assert.Equal(t, "v0", s.Occupant())
	require.True(t, s.Vacate(40))

	// THEN the ledger holds one 30s interval
	stats := s.OccupancyStats(40)
	assert.True(t, s.IsAvailable())
	assert.Equal(t, "", s.Occupant())
	assert.Equal(t, 1, stats.OccupancyCount)
	assert.Equal(t, 30.0, stats.TotalOccupiedTime)
	assert.Equal(t, 30.0, stats.AverageOccupancyTime)
	assert.False(t, stats.CurrentlyOccupied)
	assert.Equal(t, []OccupancyInterval{{Start: 10, End: 40, Duration: 30, OccupantID: "v0"}}, stats.History)
}

func TestSpace_Occupy_FailsWhenAlreadyOccupied(t *testing.T) {
	s := newTestSpace()
	require.True(t, s.Occupy("v0", 0))

	// WHEN a second vehicle tries to claim it
	ok := s.Occupy("v1", 5)

	// THEN the claim fails and the ledger is untouched
	assert.False(t, ok)
	assert.Equal(t, "v0", s.Occupant())
	assert.Equal(t, 1, s.OccupancyStats(5).OccupancyCount)
}

func TestSpace_Vacate_NoOpWhenVacant(t *testing.T) {
	s := newTestSpace()
	assert.False(t, s.Vacate(10))
	assert.Empty(t, s.OccupancyStats(10).History)
}

func TestSpace_Vacate_PanicsBeforeStart(t *testing.T) {
	s := newTestSpace()
	require.True(t, s.Occupy("v0", 10))
	assert.Panics(t, func() { s.Vacate(5) })
}

func TestSpace_Occupy_PanicsOnEmptyOccupant(t *testing.T) {
	s := newTestSpace()
	assert.Panics(t, func() { s.Occupy("", 0) })
}

func TestSpace_OccupancyStats_CountsOpenInterval(t *testing.T) {
	// GIVEN a closed 20s stay and an open stay started at 50
	s := newTestSpace()
	require.True(t, s.Occupy("v0", 0))
	require.True(t, s.Vacate(20))
	require.True(t, s.Occupy("v1", 50))

	// WHEN queried at 60
	stats := s.OccupancyStats(60)

	// THEN the open 10s count toward the total but history has only the closed one
	assert.Equal(t, 30.0, stats.TotalOccupiedTime)
	assert.Equal(t, 2, stats.OccupancyCount)
	assert.Equal(t, 15.0, stats.AverageOccupancyTime)
	assert.True(t, stats.CurrentlyOccupied)
	assert.Equal(t, "v1", stats.CurrentOccupant)
	assert.Len(t, stats.History, 1)

	// AND the query has no side effects
	assert.Equal(t, stats, s.OccupancyStats(60))
}

func TestSpace_OccupancyStats_HistoryIsCopy(t *testing.T) {
	s := newTestSpace()
	require.True(t, s.Occupy("v0", 0))
	require.True(t, s.Vacate(20))

	stats := s.OccupancyStats(20)
	stats.History[0].OccupantID = "tampered"

	assert.Equal(t, "v0", s.OccupancyStats(20).History[0].OccupantID)
}

func TestSpace_OccupancyPercentage(t *testing.T) {
	s := newTestSpace()
	require.True(t, s.Occupy("v0", 0))
	require.True(t, s.Vacate(30))

	assert.InDelta(t, 25.0, s.OccupancyPercentage(120, 120), 1e-9)
	assert.Equal(t, 0.0, s.OccupancyPercentage(120, 0), "non-positive window yields 0")
}

func TestSpace_FormattedStats(t *testing.T) {
	// GIVEN occupancy of 125s then 55s, queried at 360s
	s := newTestSpace()
	require.True(t, s.Occupy("v0", 0))
	require.True(t, s.Vacate(125))
	require.True(t, s.Occupy("v1", 200))
	require.True(t, s.Vacate(255))

	f := s.FormattedStats(360)

	assert.Equal(t, "3m 0s", f.TotalOccupiedTime)
	assert.Equal(t, "1m 30s", f.AverageOccupancyTime)
	assert.Equal(t, 2, f.OccupancyCount)
	assert.Equal(t, "50.0", f.OccupancyPercentage)
	assert.False(t, f.CurrentlyOccupied)
}

func TestSpace_FormattedStats_NeverOccupied(t *testing.T) {
	f := newTestSpace().FormattedStats(100)
	assert.Equal(t, "0m 0s", f.TotalOccupiedTime)
	assert.Equal(t, "0.0", f.OccupancyPercentage)
}
