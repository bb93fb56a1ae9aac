// sim/simulator.go
package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/parklot/parklot-sim/sim/trace"
)

// vehicleColors is the cosmetic palette vehicles draw from.
var vehicleColors = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
	"#F8C471", "#82E0AA", "#F1948A", "#85C1E9", "#D7BDE2",
	"#A9DFBF", "#F9E79F", "#D5A6BD", "#AED6F1", "#FAD7A0",
}

var vehicleGlyphs = []string{"sedan", "hatchback", "suv", "van", "pickup"}

// ScheduleSource produces the arrival schedule for a run. Reset asks the
// source again, so a generating source yields a fresh schedule per reset.
type ScheduleSource interface {
	Schedule() ([]Arrival, error)
}

// fixedSchedule replays the same arrivals on every reset.
type fixedSchedule []Arrival

func (f fixedSchedule) Schedule() ([]Arrival, error) { return CloneSchedule(f), nil }

// FixedSchedule wraps an explicit schedule as a ScheduleSource that returns
// an independent copy of it on every call.
func FixedSchedule(arrivals []Arrival) ScheduleSource {
	return fixedSchedule(CloneSchedule(arrivals))
}

// Simulator owns one run: the facility, the clock, the pending queue, the
// active set and the completed log. All mutation happens inside Advance and
// the lifecycle controls; nothing is shared between Simulator instances.
type Simulator struct {
	cfg      Config
	facility *Facility
	policy   AssignmentPolicy
	source   ScheduleSource
	cosmetic *rand.Rand
	seed     int64

	clock   float64
	running bool
	// total counts every vehicle introduced since the last reset.
	total int

	pending   PendingQueue
	active    []*Vehicle
	completed []*Vehicle

	trace *trace.SimulationTrace
}

// NewSimulator validates cfg and builds a run over facility whose pending
// queue is loaded from source. The simulator is not running until Start.
func NewSimulator(cfg Config, facility *Facility, source ScheduleSource) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if facility == nil {
		return nil, fmt.Errorf("facility must not be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("schedule source must not be nil")
	}
	s := &Simulator{
		cfg:      cfg,
		facility: facility,
		policy:   NewAssignmentPolicy(cfg.AssignmentPolicy),
		source:   source,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetCosmeticSeed reseeds color/glyph selection. Cosmetic draws never
// influence simulation outcomes.
func (s *Simulator) SetCosmeticSeed(seed int64) {
	s.seed = seed
	s.cosmetic = NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemCosmetic)
}

// load clears derived state and fills the pending queue from the source.
func (s *Simulator) load() error {
	arrivals, err := s.source.Schedule()
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}
	if err := ValidateSchedule(arrivals); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	for _, sp := range s.facility.Spaces {
		sp.reset()
	}
	if s.cosmetic == nil {
		s.SetCosmeticSeed(s.seed)
	}
	s.clock = 0
	s.running = false
	s.pending = PendingQueue{}
	s.active = nil
	s.completed = nil
	s.total = 0
	s.trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(s.cfg.TraceLevel)})
	for _, a := range arrivals {
		color := vehicleColors[s.cosmetic.Intn(len(vehicleColors))]
		glyph := vehicleGlyphs[s.cosmetic.Intn(len(vehicleGlyphs))]
		s.pending.Schedule(newVehicle(a, s.facility, s.cfg.Motion, color, glyph))
		s.total++
	}
	return nil
}

// Start marks the run as running. A fresh or reset run starts at clock 0;
// a paused run resumes from its current clock.
func (s *Simulator) Start() {
	if s.running {
		return
	}
	s.running = true
	logrus.Infof("simulation started at %s with %d scheduled vehicles", FormatClock(s.clock), s.pending.Len())
}

// Pause stops further advancement without clearing state.
func (s *Simulator) Pause() {
	if !s.running {
		return
	}
	s.running = false
	logrus.Infof("simulation paused at %s", FormatClock(s.clock))
}

// Reset clears every derived state (clock, spaces, active set, completed
// log) and reloads the pending queue from the schedule source. The run is
// left paused.
func (s *Simulator) Reset() error {
	if s.cosmetic != nil {
		s.SetCosmeticSeed(s.seed)
	}
	if err := s.load(); err != nil {
		return err
	}
	logrus.Infof("simulation reset: %d scheduled vehicles", s.pending.Len())
	return nil
}

// Advance moves the clock to t and processes one tick:
//  1. promote due arrivals
//  2. claim a space for each arrival (atomic select + occupy)
//  3. requeue arrivals that found the lot full
//  4. advance vehicle and visitor motion
//  5. expire shopping timers
//  6. sweep exited vehicles into the completed log
//
// Calls while paused, or with t below the current clock, leave state
// unchanged. Advance always returns a consistent snapshot.
func (s *Simulator) Advance(t float64) Snapshot {
	s.Step(t)
	return s.Snapshot()
}

// Step performs the same tick as Advance without building a snapshot.
// Returns false if the tick was ignored (paused, or t below the clock).
func (s *Simulator) Step(t float64) bool {
	if !s.running {
		return false
	}
	if t < s.clock {
		logrus.Warnf("ignoring advance to %.2fs: clock already at %.2fs", t, s.clock)
		return false
	}
	s.clock = t

	for v := s.pending.PopDue(t); v != nil; v = s.pending.PopDue(t) {
		v.transition(vehicleArrive, t, nil, 0)
		if !s.assign(v) {
			s.trace.RecordRetry(trace.RetryRecord{
				VehicleID:         v.id,
				Clock:             t,
				Attempt:           v.retries + 1,
				NextArrival:       v.scheduledArrival + s.cfg.Retry.FullLotDelay,
				AccessibleVisitor: v.visitor.accessible,
			})
			v.transition(vehicleLotFull, t, nil, s.cfg.Retry.FullLotDelay)
			s.pending.Schedule(v)
			continue
		}
		s.active = append(s.active, v)
	}

	for _, v := range s.active {
		v.updateMotion(t)
	}
	for _, v := range s.active {
		v.updateShopping(t)
		// a zero-length walk back completes within the same tick
		v.updateMotion(t)
	}

	remaining := s.active[:0]
	for _, v := range s.active {
		if v.status == StatusExited {
			s.completed = append(s.completed, v)
			continue
		}
		remaining = append(remaining, v)
	}
	for i := len(remaining); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = remaining
	return true
}

// assign selects and claims a space for v in one step. Returns false when
// no eligible space exists.
func (s *Simulator) assign(v *Vehicle) bool {
	candidates := EligibleSpaces(s.facility.Spaces, v.visitor.accessible)
	decision := s.policy.Select(candidates, s.facility.BuildingPoint())
	if decision.Space == nil {
		return false
	}
	if !decision.Space.Occupy(v.id, s.clock) {
		panic(fmt.Sprintf("space %d selected for %s but already occupied by %s",
			decision.Space.Index(), v.id, decision.Space.Occupant()))
	}
	s.trace.RecordAssignment(trace.AssignmentRecord{
		VehicleID:         v.id,
		Clock:             s.clock,
		SpaceIndex:        decision.Space.Index(),
		Distance:          decision.Distance,
		AccessibleSpace:   decision.Space.Accessible(),
		AccessibleVisitor: v.visitor.accessible,
		Candidates:        decision.Candidates,
		Reason:            decision.Reason,
	})
	v.transition(vehicleAssigned, s.clock, decision.Space, 0)
	return true
}

// Run starts the simulator and advances it in steps of tick until the clock
// reaches horizon. A non-positive horizon uses the configured window.
func (s *Simulator) Run(horizon, tick float64) Snapshot {
	if tick <= 0 {
		panic(fmt.Sprintf("tick must be positive, got %f", tick))
	}
	if horizon <= 0 {
		horizon = s.cfg.TotalSimulationTime
	}
	s.Start()
	for step := 0; ; step++ {
		t := float64(step) * tick
		if t > horizon {
			break
		}
		// resuming: skip ticks already processed
		if t < s.clock || (t == s.clock && step > 0) {
			continue
		}
		s.Step(t)
	}
	logrus.Infof("[clock %s] simulation ended: %d completed, %d active, %d scheduled",
		FormatClock(s.clock), len(s.completed), len(s.active), s.pending.Len())
	return s.Snapshot()
}

// Clock returns the current simulation time in seconds.
func (s *Simulator) Clock() float64 { return s.clock }

// Running reports whether Advance currently moves the clock.
func (s *Simulator) Running() bool { return s.running }

// Facility returns the facility the run operates on.
func (s *Simulator) Facility() *Facility { return s.facility }

// Config returns the run configuration.
func (s *Simulator) Config() Config { return s.cfg }

// Trace returns the decision trace, nil when tracing is off.
func (s *Simulator) Trace() *trace.SimulationTrace { return s.trace }
