package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func TestDefaultScheduleSpec_IsValid(t *testing.T) {
	spec := DefaultScheduleSpec(42, 120)
	require.NoError(t, spec.Validate())
	assert.Equal(t, DefaultAccessibleProbability, spec.AccessibleProb())
	assert.Equal(t, 3600.0, spec.Horizon)
}

func TestScheduleSpec_AccessibleProb_DefaultsWhenUnset(t *testing.T) {
	spec := ScheduleSpec{}
	assert.Equal(t, 0.12, spec.AccessibleProb())
	spec.AccessibleProbability = float64Ptr(0)
	assert.Equal(t, 0.0, spec.AccessibleProb())
}

func TestScheduleSpec_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScheduleSpec)
	}{
		{"unbounded", func(s *ScheduleSpec) { s.Horizon = 0; s.NumVehicles = 0 }},
		{"negative vehicles", func(s *ScheduleSpec) { s.NumVehicles = -1 }},
		{"zero rate", func(s *ScheduleSpec) { s.Rate = 0 }},
		{"unknown process", func(s *ScheduleSpec) { s.Arrival.Process = "bursty" }},
		{"zero cv", func(s *ScheduleSpec) { s.Arrival.CV = float64Ptr(0) }},
		{"weibull cv too large", func(s *ScheduleSpec) { s.Arrival.Process = "weibull"; s.Arrival.CV = float64Ptr(20) }},
		{"probability above one", func(s *ScheduleSpec) { s.AccessibleProbability = float64Ptr(1.5) }},
		{"negative probability", func(s *ScheduleSpec) { s.AccessibleProbability = float64Ptr(-0.1) }},
		{"unknown shop distribution", func(s *ScheduleSpec) { s.ShopDuration.Type = "pareto" }},
		{"negative shop param", func(s *ScheduleSpec) { s.ShopDuration.Params["min"] = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultScheduleSpec(1, 120)
			tt.mutate(&spec)
			assert.Error(t, spec.Validate())
		})
	}
}

func TestScheduleSpec_Validate_NumVehiclesAloneBoundsTheSchedule(t *testing.T) {
	spec := DefaultScheduleSpec(1, 120)
	spec.Horizon = 0
	spec.NumVehicles = 10
	assert.NoError(t, spec.Validate())
}

func TestLoadScheduleSpec_ParsesYAML(t *testing.T) {
	// GIVEN a schedule spec file
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	yamlText := `seed: 7
num_vehicles: 50
rate: 90
arrival:
  process: gamma
  cv: 2.5
accessible_probability: 0.2
shop_duration:
  type: constant
  params:
    value: 300
`
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0644))

	// WHEN loaded
	spec, err := LoadScheduleSpec(path)

	// THEN every field is populated and the spec validates
	require.NoError(t, err)
	assert.Equal(t, int64(7), spec.Seed)
	assert.Equal(t, 50, spec.NumVehicles)
	assert.Equal(t, 90.0, spec.Rate)
	assert.Equal(t, "gamma", spec.Arrival.Process)
	require.NotNil(t, spec.Arrival.CV)
	assert.Equal(t, 2.5, *spec.Arrival.CV)
	assert.Equal(t, 0.2, spec.AccessibleProb())
	assert.Equal(t, DistSpec{Type: "constant", Params: map[string]float64{"value": 300}}, spec.ShopDuration)
	assert.NoError(t, spec.Validate())
}

func TestLoadScheduleSpec_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 1\nrate: 60\nhorizn: 100\n"), 0644))

	_, err := LoadScheduleSpec(path)

	assert.Error(t, err)
}

func TestLoadScheduleSpec_MissingFile(t *testing.T) {
	_, err := LoadScheduleSpec(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
