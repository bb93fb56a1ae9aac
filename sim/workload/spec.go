package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults of the reference shopping-center workload.
const (
	DefaultAccessibleProbability = 0.12
	DefaultShopMin               = 120.0 // 2 minutes
	DefaultShopMax               = 900.0 // 15 minutes
)

// ScheduleSpec is the top-level schedule configuration.
// Loaded from YAML via LoadScheduleSpec(path).
type ScheduleSpec struct {
	Seed        int64   `yaml:"seed"`
	NumVehicles int     `yaml:"num_vehicles,omitempty"` // 0 = unlimited (use horizon only)
	Horizon     float64 `yaml:"horizon,omitempty"`      // seconds; 0 = unlimited (use num_vehicles only)
	// Rate is the mean arrival rate in vehicles per hour.
	Rate                  float64     `yaml:"rate"`
	Arrival               ArrivalSpec `yaml:"arrival"`
	AccessibleProbability *float64    `yaml:"accessible_probability,omitempty"`
	ShopDuration          DistSpec    `yaml:"shop_duration"`
}

// ArrivalSpec configures the inter-arrival time process.
type ArrivalSpec struct {
	Process string   `yaml:"process"`
	CV      *float64 `yaml:"cv,omitempty"`
}

func (a ArrivalSpec) cv() float64 {
	if a.CV == nil || *a.CV <= 0 {
		return 1.0
	}
	return *a.CV
}

// DistSpec parameterizes a shop-duration distribution (seconds).
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Valid value registries.
var (
	validArrivalProcesses = map[string]bool{
		"": true, "poisson": true, "gamma": true, "weibull": true, "constant": true, "uniform": true,
	}
	validDistTypes = map[string]bool{
		"": true, "uniform": true, "constant": true, "gaussian": true, "exponential": true,
	}
)

// DefaultScheduleSpec returns the reference workload: one hour of Poisson
// arrivals at rate vehicles/hour, 12% accessible visitors, shop durations
// uniform over [2, 15] minutes.
func DefaultScheduleSpec(seed int64, rate float64) ScheduleSpec {
	p := DefaultAccessibleProbability
	return ScheduleSpec{
		Seed:                  seed,
		Horizon:               3600,
		Rate:                  rate,
		Arrival:               ArrivalSpec{Process: "poisson"},
		AccessibleProbability: &p,
		ShopDuration: DistSpec{
			Type:   "uniform",
			Params: map[string]float64{"min": DefaultShopMin, "max": DefaultShopMax},
		},
	}
}

// LoadScheduleSpec reads and parses a YAML schedule specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScheduleSpec(path string) (*ScheduleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schedule spec: %w", err)
	}
	var spec ScheduleSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing schedule spec: %w", err)
	}
	return &spec, nil
}

// AccessibleProb returns the configured accessible probability or the default.
func (s *ScheduleSpec) AccessibleProb() float64 {
	if s.AccessibleProbability == nil {
		return DefaultAccessibleProbability
	}
	return *s.AccessibleProbability
}

// Validate checks that all fields in the spec are valid.
func (s *ScheduleSpec) Validate() error {
	if s.NumVehicles < 0 {
		return fmt.Errorf("num_vehicles must be non-negative, got %d", s.NumVehicles)
	}
	if err := validateFiniteNonNegative("horizon", s.Horizon); err != nil {
		return err
	}
	if s.NumVehicles == 0 && s.Horizon == 0 {
		return fmt.Errorf("at least one of num_vehicles or horizon must bound the schedule")
	}
	if err := validateFinitePositive("rate", s.Rate); err != nil {
		return err
	}
	if !validArrivalProcesses[s.Arrival.Process] {
		return fmt.Errorf("unknown arrival process %q; valid: poisson, gamma, weibull, constant, uniform", s.Arrival.Process)
	}
	if s.Arrival.CV != nil {
		if err := validateFinitePositive("arrival.cv", *s.Arrival.CV); err != nil {
			return err
		}
		if s.Arrival.Process == "weibull" && (*s.Arrival.CV < 0.01 || *s.Arrival.CV > 10.4) {
			return fmt.Errorf("weibull CV must be in [0.01, 10.4], got %f", *s.Arrival.CV)
		}
	}
	p := s.AccessibleProb()
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("accessible_probability must be in [0, 1], got %f", p)
	}
	return validateDistSpec("shop_duration", &s.ShopDuration)
}

func validateDistSpec(prefix string, d *DistSpec) error {
	if !validDistTypes[d.Type] {
		return fmt.Errorf("%s: unknown distribution type %q; valid: uniform, constant, gaussian, exponential", prefix, d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s.params.%s must be a finite number, got %f", prefix, name, val)
		}
		if val < 0 {
			return fmt.Errorf("%s.params.%s must be non-negative, got %f", prefix, name, val)
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, val)
	}
	return nil
}
