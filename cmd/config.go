package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/parklot/parklot-sim/sim"
	"github.com/parklot/parklot-sim/sim/workload"
)

// RunConfig is the YAML run file: engine parameters plus the schedule that
// feeds them. Every top-level section must be listed to satisfy
// KnownFields(true) strict parsing.
type RunConfig struct {
	Engine   sim.Config            `yaml:"engine"`
	Schedule workload.ScheduleSpec `yaml:"schedule"`
	// ScheduleFile replays an exported CSV schedule instead of generating one.
	ScheduleFile string `yaml:"schedule_file,omitempty"`
}

// DefaultRunConfig returns the reference facility and workload.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Engine:   sim.DefaultConfig(),
		Schedule: workload.DefaultScheduleSpec(42, 120),
	}
}

// LoadRunConfig reads path over the defaults, so a file only needs the
// fields it changes. Unknown keys are rejected.
func LoadRunConfig(path string) (RunConfig, error) {
	rc := DefaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return rc, fmt.Errorf("reading run config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rc); err != nil {
		return rc, fmt.Errorf("parsing run config %s: %w", path, err)
	}
	return rc, nil
}

// Validate checks both sections. A schedule file makes the generated
// schedule section irrelevant, so it is not validated then.
func (rc RunConfig) Validate() error {
	if err := rc.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if rc.ScheduleFile != "" {
		return nil
	}
	if err := rc.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	return nil
}

// ScheduleSource returns the generator or file replay rc describes.
func (rc RunConfig) ScheduleSource() (sim.ScheduleSource, error) {
	if rc.ScheduleFile != "" {
		f, err := workload.LoadSchedule("", rc.ScheduleFile)
		if err != nil {
			return nil, err
		}
		return sim.FixedSchedule(f.Arrivals), nil
	}
	return workload.NewGenerator(rc.Schedule)
}
