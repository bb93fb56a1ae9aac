package sim

import (
	"fmt"
	"math"
)

// OccupancyInterval is one closed stay of a vehicle in a space.
type OccupancyInterval struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Duration   float64 `json:"duration"`
	OccupantID string  `json:"occupant_id"`
}

// OccupancyStats is the ledger summary of a space at a point in time.
type OccupancyStats struct {
	TotalOccupiedTime    float64             `json:"total_occupied_time"` // closed intervals plus the open one, if any
	OccupancyCount       int                 `json:"occupancy_count"`
	AverageOccupancyTime float64             `json:"average_occupancy_time"` // TotalOccupiedTime / OccupancyCount (0 when never occupied)
	CurrentlyOccupied    bool                `json:"currently_occupied"`
	CurrentOccupant      string              `json:"current_occupant,omitempty"`
	History              []OccupancyInterval `json:"history"` // copy of the closed intervals
}

// Space is one parking space and its occupancy ledger.
//
// Invariant: occupied == (occupant != "") == (currentStart != nil).
// Intervals in history never overlap and are ordered by start time.
type Space struct {
	index        int
	bounds       Rect
	accessible   bool
	walkDistance float64

	occupied     bool
	occupant     string
	currentStart *float64

	history           []OccupancyInterval
	totalOccupiedTime float64
	occupancyCount    int
}

func newSpace(index int, bounds Rect, walkDistance float64) *Space {
	return &Space{
		index:        index,
		bounds:       bounds,
		walkDistance: walkDistance,
		history:      make([]OccupancyInterval, 0),
	}
}

// Index is the position of the space in the row.
func (s *Space) Index() int { return s.index }

// Bounds is the space rectangle.
func (s *Space) Bounds() Rect { return s.bounds }

// Center is where a parked vehicle stands.
func (s *Space) Center() Point { return s.bounds.Center() }

// Accessible reports whether the space is reserved for accessible visitors.
func (s *Space) Accessible() bool { return s.accessible }

// WalkDistance is the distance from the space center to the building entrance center.
func (s *Space) WalkDistance() float64 { return s.walkDistance }

// Occupant returns the ID of the vehicle holding the space, or "".
func (s *Space) Occupant() string { return s.occupant }

// IsAvailable reports whether the space can be claimed.
func (s *Space) IsAvailable() bool {
	return !s.occupied
}

// Occupy claims the space for occupantID at atTime and opens a new interval.
// Returns false without touching the ledger if the space is already occupied;
// callers treat that as an invariant violation.
func (s *Space) Occupy(occupantID string, atTime float64) bool {
	if s.occupied {
		return false
	}
	if occupantID == "" {
		panic(fmt.Sprintf("Occupy: space %d: occupant ID must not be empty", s.index))
	}
	start := atTime
	s.occupied = true
	s.occupant = occupantID
	s.currentStart = &start
	s.occupancyCount++
	return true
}

// Vacate closes the open interval at atTime and frees the space.
// Returns false (no-op) if the space was already vacant.
func (s *Space) Vacate(atTime float64) bool {
	if !s.occupied {
		return false
	}
	start := *s.currentStart
	if atTime < start {
		panic(fmt.Sprintf("Vacate: space %d: end %.3f before start %.3f", s.index, atTime, start))
	}
	duration := atTime - start
	s.history = append(s.history, OccupancyInterval{
		Start:      start,
		End:        atTime,
		Duration:   duration,
		OccupantID: s.occupant,
	})
	s.totalOccupiedTime += duration
	s.occupied = false
	s.occupant = ""
	s.currentStart = nil
	return true
}

// OccupancyStats returns the ledger summary at atTime, counting the open
// interval up to atTime.
func (s *Space) OccupancyStats(atTime float64) OccupancyStats {
	total := s.totalOccupiedTime
	if s.occupied {
		total += math.Max(0, atTime-*s.currentStart)
	}
	avg := 0.0
	if s.occupancyCount > 0 {
		avg = total / float64(s.occupancyCount)
	}
	history := make([]OccupancyInterval, len(s.history))
	copy(history, s.history)
	return OccupancyStats{
		TotalOccupiedTime:    total,
		OccupancyCount:       s.occupancyCount,
		AverageOccupancyTime: avg,
		CurrentlyOccupied:    s.occupied,
		CurrentOccupant:      s.occupant,
		History:              history,
	}
}

// OccupancyPercentage returns the share of windowTotal the space has been
// occupied as of atTime, in percent. A non-positive window yields 0.
func (s *Space) OccupancyPercentage(atTime, windowTotal float64) float64 {
	if windowTotal <= 0 {
		return 0
	}
	return s.OccupancyStats(atTime).TotalOccupiedTime / windowTotal * 100
}

// FormattedStats is the display form of a space's ledger.
type FormattedStats struct {
	TotalOccupiedTime    string `json:"total_occupied_time"`
	AverageOccupancyTime string `json:"average_occupancy_time"`
	OccupancyCount       int    `json:"occupancy_count"`
	OccupancyPercentage  string `json:"occupancy_percentage"`
	CurrentlyOccupied    bool   `json:"currently_occupied"`
	CurrentOccupant      string `json:"current_occupant,omitempty"`
}

// FormattedStats renders OccupancyStats with durations as "Mm Ss" and the
// occupancy share of the elapsed time [0, atTime] with one decimal.
func (s *Space) FormattedStats(atTime float64) FormattedStats {
	stats := s.OccupancyStats(atTime)
	pct := "0.0"
	if stats.TotalOccupiedTime > 0 && atTime > 0 {
		pct = fmt.Sprintf("%.1f", stats.TotalOccupiedTime/atTime*100)
	}
	return FormattedStats{
		TotalOccupiedTime:    FormatDuration(stats.TotalOccupiedTime),
		AverageOccupancyTime: FormatDuration(stats.AverageOccupancyTime),
		OccupancyCount:       stats.OccupancyCount,
		OccupancyPercentage:  pct,
		CurrentlyOccupied:    stats.CurrentlyOccupied,
		CurrentOccupant:      stats.CurrentOccupant,
	}
}

// reset returns the space to its freshly laid-out state, keeping geometry
// and the accessible label.
func (s *Space) reset() {
	s.occupied = false
	s.occupant = ""
	s.currentStart = nil
	s.history = make([]OccupancyInterval, 0)
	s.totalOccupiedTime = 0
	s.occupancyCount = 0
}
