package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test geometry: a 400x160 lot whose spaces sit at the entrance/exit height,
// so every drive is a horizontal line and every walk a vertical one.
//
//	entrance center (20, 80), exit center (380, 80), building center (200, 20)
//	with one space its center is (200, 80): drive 180, walk 60
func testLayout(numSpaces int) LayoutConfig {
	return NewLayoutConfig(400, 160, numSpaces, 40, 40, 60, 40)
}

// testConfig uses lot speed 60 and walk speed 20: drives take 3s, a walk leg
// over the single-space layout takes 3s (4.5s for an accessible visitor).
func testConfig(numSpaces int) Config {
	cfg := DefaultConfig()
	cfg.Layout = testLayout(numSpaces)
	cfg.Motion = NewMotionConfig(20, 1.5, 60)
	return cfg
}

func newTestFacility(t *testing.T, cfg Config, keepAccessible bool) *Facility {
	t.Helper()
	f, err := NewFacility(cfg.Layout)
	require.NoError(t, err)
	if !keepAccessible {
		f.ClearAccessible()
	}
	return f
}

func newTestSimulator(t *testing.T, cfg Config, keepAccessible bool, arrivals ...Arrival) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, newTestFacility(t, cfg, keepAccessible), FixedSchedule(arrivals))
	require.NoError(t, err)
	return s
}

// advanceTo steps the clock by one second from the current clock up to and
// including until, checking run invariants after every tick.
func advanceTo(t *testing.T, s *Simulator, until float64) {
	t.Helper()
	if !s.Running() {
		s.Start()
	}
	for tick := s.Clock(); tick <= until; tick++ {
		s.Advance(tick)
		assertRunInvariants(t, s)
	}
}

// assertRunInvariants checks the ledger and conservation invariants that
// must hold after every tick.
func assertRunInvariants(t *testing.T, s *Simulator) {
	t.Helper()
	for _, sp := range s.facility.Spaces {
		if sp.occupied != (sp.occupant != "") || sp.occupied != (sp.currentStart != nil) {
			t.Fatalf("space %d: occupied=%t occupant=%q currentStart=%v", sp.index, sp.occupied, sp.occupant, sp.currentStart)
		}
		for i := 1; i < len(sp.history); i++ {
			if sp.history[i].Start < sp.history[i-1].End {
				t.Fatalf("space %d: interval %d overlaps its predecessor", sp.index, i)
			}
		}
	}

	holders := make(map[int]string)
	for _, v := range s.active {
		if v.status.HoldsSpace() != (v.space != nil) {
			t.Fatalf("vehicle %s: status %s with space %v", v.id, v.status, v.space)
		}
		if v.space == nil {
			continue
		}
		if other, ok := holders[v.space.index]; ok {
			t.Fatalf("space %d held by both %s and %s", v.space.index, other, v.id)
		}
		holders[v.space.index] = v.id
		if v.space.occupant != v.id {
			t.Fatalf("vehicle %s holds space %d occupied by %q", v.id, v.space.index, v.space.occupant)
		}
	}
	for _, v := range s.pending.items {
		if v.status != StatusScheduled || v.space != nil {
			t.Fatalf("pending vehicle %s: status %s, space %v", v.id, v.status, v.space)
		}
	}

	if got := len(s.active) + s.pending.Len() + len(s.completed); got != s.total {
		t.Fatalf("active+scheduled+completed = %d, want %d", got, s.total)
	}
}

func findVehicle(snaps []VehicleSnapshot, id string) (VehicleSnapshot, bool) {
	for _, v := range snaps {
		if v.ID == id {
			return v, true
		}
	}
	return VehicleSnapshot{}, false
}
