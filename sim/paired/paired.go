// Package paired runs the same arrival schedule against two facilities, one
// with the reserved accessible space and one where that space is ordinary,
// and reports the walking and driving cost difference between the cohorts.
//
// The two simulators share no mutable state. Each receives its own copy of
// the schedule and both are advanced with the same clock values.
package paired

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/parklot/parklot-sim/sim"
)

// sharedSchedule hands each simulator an independent copy of one schedule.
type sharedSchedule struct {
	arrivals []sim.Arrival
}

func (s *sharedSchedule) Schedule() ([]sim.Arrival, error) {
	return sim.CloneSchedule(s.arrivals), nil
}

// PairedRun drives a with-accessible and a without-accessible simulator in
// lockstep.
type PairedRun struct {
	upstream sim.ScheduleSource
	shared   *sharedSchedule
	with     *sim.Simulator
	without  *sim.Simulator
}

// NewPairedRun draws one schedule from source and builds both simulators
// over it. The without-accessible facility uses the same layout with every
// accessible label removed.
func NewPairedRun(cfg sim.Config, source sim.ScheduleSource) (*PairedRun, error) {
	if source == nil {
		return nil, fmt.Errorf("schedule source must not be nil")
	}
	arrivals, err := source.Schedule()
	if err != nil {
		return nil, fmt.Errorf("drawing paired schedule: %w", err)
	}
	shared := &sharedSchedule{arrivals: sim.CloneSchedule(arrivals)}

	withFacility, err := sim.NewFacility(cfg.Layout)
	if err != nil {
		return nil, fmt.Errorf("with-accessible facility: %w", err)
	}
	withoutFacility, err := sim.NewFacility(cfg.Layout)
	if err != nil {
		return nil, fmt.Errorf("without-accessible facility: %w", err)
	}
	withoutFacility.ClearAccessible()

	with, err := sim.NewSimulator(cfg, withFacility, shared)
	if err != nil {
		return nil, fmt.Errorf("with-accessible run: %w", err)
	}
	without, err := sim.NewSimulator(cfg, withoutFacility, shared)
	if err != nil {
		return nil, fmt.Errorf("without-accessible run: %w", err)
	}
	return &PairedRun{upstream: source, shared: shared, with: with, without: without}, nil
}

// With returns the simulator whose facility keeps the accessible space.
func (p *PairedRun) With() *sim.Simulator { return p.with }

// Without returns the simulator whose facility has no accessible space.
func (p *PairedRun) Without() *sim.Simulator { return p.without }

// Schedule returns a copy of the schedule both runs replay.
func (p *PairedRun) Schedule() []sim.Arrival { return sim.CloneSchedule(p.shared.arrivals) }

// SetCosmeticSeed gives both runs the same color/glyph stream.
func (p *PairedRun) SetCosmeticSeed(seed int64) {
	p.with.SetCosmeticSeed(seed)
	p.without.SetCosmeticSeed(seed)
}

// Start starts both runs.
func (p *PairedRun) Start() {
	p.with.Start()
	p.without.Start()
}

// Pause pauses both runs.
func (p *PairedRun) Pause() {
	p.with.Pause()
	p.without.Pause()
}

// Reset clears both runs and reloads the same schedule into each.
func (p *PairedRun) Reset() error {
	if err := p.with.Reset(); err != nil {
		return fmt.Errorf("with-accessible run: %w", err)
	}
	if err := p.without.Reset(); err != nil {
		return fmt.Errorf("without-accessible run: %w", err)
	}
	return nil
}

// Regenerate draws a new schedule from the source and resets both runs
// onto it.
func (p *PairedRun) Regenerate() error {
	arrivals, err := p.upstream.Schedule()
	if err != nil {
		return fmt.Errorf("drawing paired schedule: %w", err)
	}
	p.shared.arrivals = sim.CloneSchedule(arrivals)
	logrus.Infof("paired schedule regenerated: %d arrivals", len(arrivals))
	return p.Reset()
}

// Advance advances both runs to t.
func (p *PairedRun) Advance(t float64) (with, without sim.Snapshot) {
	return p.with.Advance(t), p.without.Advance(t)
}

// Run starts both runs and advances them tick by tick up to horizon. A
// non-positive horizon uses the configured window.
func (p *PairedRun) Run(horizon, tick float64) Comparison {
	if tick <= 0 {
		panic(fmt.Sprintf("tick must be positive, got %f", tick))
	}
	if horizon <= 0 {
		horizon = p.with.Config().TotalSimulationTime
	}
	p.Start()
	clock := p.with.Clock()
	for step := 0; ; step++ {
		t := float64(step) * tick
		if t > horizon {
			break
		}
		if t < clock || (t == clock && step > 0) {
			continue
		}
		p.with.Step(t)
		p.without.Step(t)
	}
	logrus.Infof("paired run ended at %s", sim.FormatClock(p.with.Clock()))
	return p.Compare()
}
