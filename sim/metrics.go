// Derives run-wide statistics from engine state: vehicle and space counts,
// average occupancy, and walking/driving totals of the completed cohort.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/parklot/parklot-sim/sim/trace"
)

// CohortTotals sums walking and driving time over a set of completed
// vehicle/visitor pairs. Times are seconds.
type CohortTotals struct {
	Count            int     `json:"count"`
	TotalWalkingTime float64 `json:"total_walking_time"`
	MeanWalkingTime  float64 `json:"mean_walking_time"`
	TotalDrivingTime float64 `json:"total_driving_time"`
	MeanDrivingTime  float64 `json:"mean_driving_time"`
}

// CohortSummary splits the completed cohort by visitor class.
type CohortSummary struct {
	All           CohortTotals `json:"all"`
	Accessible    CohortTotals `json:"accessible"`
	NonAccessible CohortTotals `json:"non_accessible"`
	WalkingTime   Distribution `json:"walking_time"`
	DrivingTime   Distribution `json:"driving_time"`
}

// Distribution describes per-visitor times across a cohort.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// Summary is the aggregator output at one instant.
type Summary struct {
	Clock          float64 `json:"clock"`
	FormattedClock string  `json:"formatted_clock"`
	Running        bool    `json:"running"`

	Active    int `json:"active"`
	Scheduled int `json:"scheduled"`
	// Delayed counts scheduled vehicles that were turned away at least once.
	Delayed   int `json:"delayed"`
	Completed int `json:"completed"`
	Total     int `json:"total"`

	OccupiedSpaces   int     `json:"occupied_spaces"`
	AvailableSpaces  int     `json:"available_spaces"`
	AverageOccupancy float64 `json:"average_occupancy"` // percent of [0, Clock], averaged over spaces

	Cohort CohortSummary `json:"cohort"`
}

func cohortTotals(vs []*Vehicle) CohortTotals {
	ct := CohortTotals{Count: len(vs)}
	if ct.Count == 0 {
		return ct
	}
	ct.TotalWalkingTime = lo.SumBy(vs, func(v *Vehicle) float64 { return v.visitor.totalWalkingTime })
	ct.TotalDrivingTime = lo.SumBy(vs, func(v *Vehicle) float64 { return v.visitor.totalDrivingTime })
	ct.MeanWalkingTime = ct.TotalWalkingTime / float64(ct.Count)
	ct.MeanDrivingTime = ct.TotalDrivingTime / float64(ct.Count)
	return ct
}

// NewDistribution summarizes values. An empty input yields the zero value.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	d := Distribution{
		Mean: stat.Mean(sorted, nil),
		Min:  sorted[0],
		P50:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:  sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}

// SummarizeCohort aggregates a completed log into totals per visitor class.
func SummarizeCohort(vs []*Vehicle) CohortSummary {
	accessible, other := lo.FilterReject(vs, func(v *Vehicle, _ int) bool { return v.visitor.accessible })
	return CohortSummary{
		All:           cohortTotals(vs),
		Accessible:    cohortTotals(accessible),
		NonAccessible: cohortTotals(other),
		WalkingTime:   NewDistribution(lo.Map(vs, func(v *Vehicle, _ int) float64 { return v.visitor.totalWalkingTime })),
		DrivingTime:   NewDistribution(lo.Map(vs, func(v *Vehicle, _ int) float64 { return v.visitor.totalDrivingTime })),
	}
}

// Summary derives counts, occupancy and cohort totals from the current
// state. It never mutates the run.
func (s *Simulator) Summary() Summary {
	occupied := lo.CountBy(s.facility.Spaces, func(sp *Space) bool { return !sp.IsAvailable() })
	return Summary{
		Clock:            s.clock,
		FormattedClock:   FormatClock(s.clock),
		Running:          s.running,
		Active:           len(s.active),
		Scheduled:        s.pending.Len(),
		Delayed:          lo.CountBy(s.pending.items, func(v *Vehicle) bool { return v.retries > 0 }),
		Completed:        len(s.completed),
		Total:            s.total,
		OccupiedSpaces:   occupied,
		AvailableSpaces:  len(s.facility.Spaces) - occupied,
		AverageOccupancy: s.averageOccupancy(),
		Cohort:           SummarizeCohort(s.completed),
	}
}

func (s *Simulator) averageOccupancy() float64 {
	if s.clock <= 0 || len(s.facility.Spaces) == 0 {
		return 0
	}
	total := lo.SumBy(s.facility.Spaces, func(sp *Space) float64 {
		return sp.OccupancyPercentage(s.clock, s.clock)
	})
	return total / float64(len(s.facility.Spaces))
}

// FormatDuration renders seconds as "Mm Ss" after rounding to whole
// seconds. Values that round below zero keep a leading minus sign.
func FormatDuration(seconds float64) string {
	total := int64(math.Round(seconds))
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%dm %ds", sign, total/60, total%60)
}

// FormatClock renders a clock value as HH:MM:SS, truncating fractions.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Print displays the summary on stdout.
func (m Summary) Print() {
	m.Fprint(os.Stdout)
}

// Fprint writes the summary report to w.
func (m Summary) Fprint(w io.Writer) {
	_, _ = fmt.Fprintln(w, "=== Simulation Metrics ===")
	_, _ = fmt.Fprintf(w, "Clock                : %s\n", m.FormattedClock)
	_, _ = fmt.Fprintf(w, "Vehicles             : %d total, %d active, %d scheduled (%d delayed), %d completed\n",
		m.Total, m.Active, m.Scheduled, m.Delayed, m.Completed)
	_, _ = fmt.Fprintf(w, "Spaces               : %d occupied, %d available\n", m.OccupiedSpaces, m.AvailableSpaces)
	_, _ = fmt.Fprintf(w, "Average Occupancy    : %.1f%%\n", m.AverageOccupancy)
	if m.Cohort.All.Count == 0 {
		return
	}
	c := m.Cohort
	_, _ = fmt.Fprintf(w, "Total Walking Time   : %s (mean %s)\n", FormatDuration(c.All.TotalWalkingTime), FormatDuration(c.All.MeanWalkingTime))
	_, _ = fmt.Fprintf(w, "Total Driving Time   : %s (mean %s)\n", FormatDuration(c.All.TotalDrivingTime), FormatDuration(c.All.MeanDrivingTime))
	_, _ = fmt.Fprintf(w, "Accessible Visitors  : %d, walking %s, driving %s\n",
		c.Accessible.Count, FormatDuration(c.Accessible.TotalWalkingTime), FormatDuration(c.Accessible.TotalDrivingTime))
	_, _ = fmt.Fprintf(w, "Other Visitors       : %d, walking %s, driving %s\n",
		c.NonAccessible.Count, FormatDuration(c.NonAccessible.TotalWalkingTime), FormatDuration(c.NonAccessible.TotalDrivingTime))
	_, _ = fmt.Fprintf(w, "Walking p50/p90      : %.2fs / %.2fs\n", c.WalkingTime.P50, c.WalkingTime.P90)
}

// Results is the JSON document written by SaveResults.
type Results struct {
	Summary   Summary             `json:"summary"`
	Completed []VehicleSnapshot   `json:"completed"`
	Spaces    []SpaceSnapshot     `json:"spaces"`
	Trace     *trace.TraceSummary `json:"trace,omitempty"`
}

// Results collects the summary, completed log, per-space state and, when
// tracing is on, the decision-trace summary.
func (s *Simulator) Results() Results {
	r := Results{
		Summary:   s.Summary(),
		Completed: s.CompletedLog(),
		Spaces:    s.FacilitySnapshot().Spaces,
	}
	if s.trace != nil {
		r.Trace = trace.Summarize(s.trace)
	}
	return r
}

// SaveResults writes Results as indented JSON to path.
func (s *Simulator) SaveResults(path string) error {
	data, err := json.MarshalIndent(s.Results(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	logrus.Infof("results written to %s", path)
	return nil
}
