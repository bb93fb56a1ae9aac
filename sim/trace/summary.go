package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalAssignments      int
	TotalRetries          int
	RetriedVehicles       int // distinct vehicles turned away at least once
	MaxAttempts           int
	MeanDistance          float64
	AccessibleSpaceUses   int
	AccessibleVisitorHits int            // accessible visitors that got an accessible space
	SpaceDistribution     map[int]int    // space index → assignments
	RetriesByVehicle      map[string]int // vehicle ID → turn-aways
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		SpaceDistribution: make(map[int]int),
		RetriesByVehicle:  make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalAssignments = len(st.Assignments)
	if len(st.Assignments) > 0 {
		totalDistance := 0.0
		for _, a := range st.Assignments {
			summary.SpaceDistribution[a.SpaceIndex]++
			totalDistance += a.Distance
			if a.AccessibleSpace {
				summary.AccessibleSpaceUses++
				if a.AccessibleVisitor {
					summary.AccessibleVisitorHits++
				}
			}
		}
		summary.MeanDistance = totalDistance / float64(len(st.Assignments))
	}

	summary.TotalRetries = len(st.Retries)
	for _, r := range st.Retries {
		summary.RetriesByVehicle[r.VehicleID]++
		if r.Attempt > summary.MaxAttempts {
			summary.MaxAttempts = r.Attempt
		}
	}
	summary.RetriedVehicles = len(summary.RetriesByVehicle)

	return summary
}
