// Package trace provides decision-trace recording for space assignment analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// AssignmentRecord captures a single successful space assignment.
type AssignmentRecord struct {
	VehicleID         string
	Clock             float64
	SpaceIndex        int
	Distance          float64 // space center to building entrance center
	AccessibleSpace   bool
	AccessibleVisitor bool
	Candidates        int // eligible spaces at decision time
	Reason            string
}

// RetryRecord captures a vehicle turned away by a full lot.
type RetryRecord struct {
	VehicleID         string
	Clock             float64
	Attempt           int     // 1 for the first turn-away
	NextArrival       float64 // rescheduled arrival time
	AccessibleVisitor bool
}
