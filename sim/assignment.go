package sim

import (
	"fmt"

	"github.com/samber/lo"
)

// AssignmentDecision is the outcome of one space selection.
type AssignmentDecision struct {
	Space      *Space  // nil when no eligible space exists
	Distance   float64 // space center to building entrance center
	Candidates int     // eligible spaces considered
	Reason     string
}

// AssignmentPolicy chooses a space for an arriving vehicle from the
// eligible candidates. Implementations must be deterministic and must not
// mutate the spaces; the simulator claims the chosen space.
type AssignmentPolicy interface {
	Select(candidates []*Space, building Point) AssignmentDecision
}

// NearestToEntrance selects the candidate whose center is closest to the
// building entrance center. Ties are broken by row order (first found).
type NearestToEntrance struct{}

// Select implements AssignmentPolicy for NearestToEntrance.
func (NearestToEntrance) Select(candidates []*Space, building Point) AssignmentDecision {
	if len(candidates) == 0 {
		return AssignmentDecision{Reason: "no eligible space"}
	}
	best := candidates[0]
	bestDist := best.Center().Distance(building)
	for _, s := range candidates[1:] {
		if d := s.Center().Distance(building); d < bestDist {
			best, bestDist = s, d
		}
	}
	return AssignmentDecision{
		Space:      best,
		Distance:   bestDist,
		Candidates: len(candidates),
		Reason:     fmt.Sprintf("nearest[space %d, %.2f]", best.Index(), bestDist),
	}
}

// FirstAvailable selects the first candidate in row order, regardless of
// distance. Useful as a baseline against nearest-space behavior.
type FirstAvailable struct{}

// Select implements AssignmentPolicy for FirstAvailable.
func (FirstAvailable) Select(candidates []*Space, building Point) AssignmentDecision {
	if len(candidates) == 0 {
		return AssignmentDecision{Reason: "no eligible space"}
	}
	s := candidates[0]
	return AssignmentDecision{
		Space:      s,
		Distance:   s.Center().Distance(building),
		Candidates: len(candidates),
		Reason:     fmt.Sprintf("first-available[space %d]", s.Index()),
	}
}

// ValidAssignmentPolicies is the set of recognized assignment policy names.
var ValidAssignmentPolicies = map[string]bool{"": true, "nearest": true, "first-available": true}

// NewAssignmentPolicy creates a policy by name. Empty string means "nearest".
// Panics on an unknown name; callers validate names first.
func NewAssignmentPolicy(name string) AssignmentPolicy {
	switch name {
	case "", "nearest":
		return NearestToEntrance{}
	case "first-available":
		return FirstAvailable{}
	default:
		panic(fmt.Sprintf("unknown assignment policy %q", name))
	}
}

// EligibleSpaces filters spaces to those a visitor may claim now: available,
// and not accessible unless the visitor is accessible. Row order is kept.
func EligibleSpaces(spaces []*Space, accessibleVisitor bool) []*Space {
	return lo.Filter(spaces, func(s *Space, _ int) bool {
		if !s.IsAvailable() {
			return false
		}
		return accessibleVisitor || !s.Accessible()
	})
}
