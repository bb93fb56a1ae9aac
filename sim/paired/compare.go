package paired

import (
	"fmt"
	"io"
	"os"

	"github.com/parklot/parklot-sim/sim"
)

// Delta is a cost difference in seconds, without minus with. Positive
// values mean the facility without the accessible space costs more.
type Delta struct {
	Walking float64 `json:"walking"`
	Driving float64 `json:"driving"`
}

func deltaOf(with, without sim.CohortTotals) Delta {
	return Delta{
		Walking: without.TotalWalkingTime - with.TotalWalkingTime,
		Driving: without.TotalDrivingTime - with.TotalDrivingTime,
	}
}

// Comparison is the paired-run report at one clock value.
type Comparison struct {
	Clock         float64     `json:"clock"`
	With          sim.Summary `json:"with_accessible"`
	Without       sim.Summary `json:"without_accessible"`
	All           Delta       `json:"all"`
	Accessible    Delta       `json:"accessible"`
	NonAccessible Delta       `json:"non_accessible"`
	// Drained is true once neither run has active or scheduled vehicles, so
	// both cohorts contain the same vehicles.
	Drained bool `json:"drained"`
}

// Compare derives the comparison from both runs' current state.
func (p *PairedRun) Compare() Comparison {
	with, without := p.with.Summary(), p.without.Summary()
	return Comparison{
		Clock:         with.Clock,
		With:          with,
		Without:       without,
		All:           deltaOf(with.Cohort.All, without.Cohort.All),
		Accessible:    deltaOf(with.Cohort.Accessible, without.Cohort.Accessible),
		NonAccessible: deltaOf(with.Cohort.NonAccessible, without.Cohort.NonAccessible),
		Drained:       drained(with) && drained(without),
	}
}

func drained(s sim.Summary) bool {
	return s.Active == 0 && s.Scheduled == 0
}

// Print displays the comparison on stdout.
func (c Comparison) Print() {
	c.Fprint(os.Stdout)
}

// Fprint writes the comparison report to w.
func (c Comparison) Fprint(w io.Writer) {
	_, _ = fmt.Fprintln(w, "=== Paired Comparison ===")
	_, _ = fmt.Fprintf(w, "Clock                : %s (drained: %t)\n", sim.FormatClock(c.Clock), c.Drained)
	_, _ = fmt.Fprintf(w, "Completed            : %d with, %d without\n", c.With.Completed, c.Without.Completed)
	_, _ = fmt.Fprintf(w, "Walking (with)       : %s\n", sim.FormatDuration(c.With.Cohort.All.TotalWalkingTime))
	_, _ = fmt.Fprintf(w, "Walking (without)    : %s\n", sim.FormatDuration(c.Without.Cohort.All.TotalWalkingTime))
	_, _ = fmt.Fprintf(w, "Driving (with)       : %s\n", sim.FormatDuration(c.With.Cohort.All.TotalDrivingTime))
	_, _ = fmt.Fprintf(w, "Driving (without)    : %s\n", sim.FormatDuration(c.Without.Cohort.All.TotalDrivingTime))
	_, _ = fmt.Fprintf(w, "Walking Delta        : %s (accessible %s, other %s)\n",
		sim.FormatDuration(c.All.Walking), sim.FormatDuration(c.Accessible.Walking), sim.FormatDuration(c.NonAccessible.Walking))
	_, _ = fmt.Fprintf(w, "Driving Delta        : %s (accessible %s, other %s)\n",
		sim.FormatDuration(c.All.Driving), sim.FormatDuration(c.Accessible.Driving), sim.FormatDuration(c.NonAccessible.Driving))
}
