package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimulationTrace_NoneReturnsNil(t *testing.T) {
	assert.Nil(t, NewSimulationTrace(TraceConfig{Level: TraceLevelNone}))
	assert.Nil(t, NewSimulationTrace(TraceConfig{}))
}

func TestSimulationTrace_NilIsSafe(t *testing.T) {
	var st *SimulationTrace
	assert.NotPanics(t, func() {
		st.RecordAssignment(AssignmentRecord{VehicleID: "v0"})
		st.RecordRetry(RetryRecord{VehicleID: "v0"})
	})
}

func TestSimulationTrace_RecordsInOrder(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	require.NotNil(t, st)

	st.RecordAssignment(AssignmentRecord{VehicleID: "a", SpaceIndex: 3})
	st.RecordAssignment(AssignmentRecord{VehicleID: "b", SpaceIndex: 1})
	st.RecordRetry(RetryRecord{VehicleID: "c", Attempt: 1})

	require.Len(t, st.Assignments, 2)
	assert.Equal(t, "a", st.Assignments[0].VehicleID)
	assert.Equal(t, "b", st.Assignments[1].VehicleID)
	require.Len(t, st.Retries, 1)
}

func TestIsValidTraceLevel(t *testing.T) {
	assert.True(t, IsValidTraceLevel("none"))
	assert.True(t, IsValidTraceLevel("decisions"))
	assert.True(t, IsValidTraceLevel(""))
	assert.False(t, IsValidTraceLevel("detailed"))
}

func TestSummarize_NilTrace(t *testing.T) {
	s := Summarize(nil)
	require.NotNil(t, s)
	assert.Equal(t, 0, s.TotalAssignments)
	assert.NotNil(t, s.SpaceDistribution)
	assert.NotNil(t, s.RetriesByVehicle)
}

func TestSummarize_AggregatesDecisions(t *testing.T) {
	// GIVEN three assignments (one accessible visitor in the accessible
	// space, one ordinary visitor twice turned away)
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordAssignment(AssignmentRecord{VehicleID: "a", SpaceIndex: 1, Distance: 10, AccessibleSpace: true, AccessibleVisitor: true})
	st.RecordAssignment(AssignmentRecord{VehicleID: "b", SpaceIndex: 0, Distance: 20})
	st.RecordAssignment(AssignmentRecord{VehicleID: "c", SpaceIndex: 0, Distance: 30})
	st.RecordRetry(RetryRecord{VehicleID: "c", Attempt: 1})
	st.RecordRetry(RetryRecord{VehicleID: "c", Attempt: 2})
	st.RecordRetry(RetryRecord{VehicleID: "d", Attempt: 1})

	// WHEN summarized
	s := Summarize(st)

	// THEN counts, means and distributions match
	assert.Equal(t, 3, s.TotalAssignments)
	assert.InDelta(t, 20.0, s.MeanDistance, 1e-12)
	assert.Equal(t, 1, s.AccessibleSpaceUses)
	assert.Equal(t, 1, s.AccessibleVisitorHits)
	assert.Equal(t, map[int]int{0: 2, 1: 1}, s.SpaceDistribution)
	assert.Equal(t, 3, s.TotalRetries)
	assert.Equal(t, 2, s.RetriedVehicles)
	assert.Equal(t, 2, s.MaxAttempts)
	assert.Equal(t, map[string]int{"c": 2, "d": 1}, s.RetriesByVehicle)
}
