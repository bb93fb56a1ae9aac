package sim

import (
	"fmt"
	"math"

	"github.com/parklot/parklot-sim/sim/trace"
)

// LayoutConfig groups facility geometry parameters for NewFacility.
type LayoutConfig struct {
	Width       float64 `yaml:"width"`        // lot extent along x (must be > 0)
	Height      float64 `yaml:"height"`       // lot extent along y (must be > 0)
	NumSpaces   int     `yaml:"num_spaces"`   // spaces in the single row (must be > 0)
	SpaceWidth  float64 `yaml:"space_width"`  // width of one space (must be > 0)
	SpaceHeight float64 `yaml:"space_height"` // depth of one space (must be > 0)
	TopMargin   float64 `yaml:"top_margin"`   // gap between lot top edge and the row
	PortalSize  float64 `yaml:"portal_size"`  // side of the square entrance/exit/building portals
}

// MotionConfig groups movement speeds, all in distance units per second.
type MotionConfig struct {
	WalkSpeed          float64 `yaml:"walk_speed"`          // baseline pedestrian speed
	AccessibleSlowdown float64 `yaml:"accessible_slowdown"` // accessible visitors walk at WalkSpeed / AccessibleSlowdown
	LotSpeed           float64 `yaml:"lot_speed"`           // vehicle speed inside the lot
}

// RetryConfig groups the full-lot retry policy.
type RetryConfig struct {
	FullLotDelay float64 `yaml:"full_lot_delay"` // seconds a turned-away vehicle circles before re-arriving
}

// Config is the complete engine configuration for one run.
type Config struct {
	Layout              LayoutConfig `yaml:"layout"`
	Motion              MotionConfig `yaml:"motion"`
	Retry               RetryConfig  `yaml:"retry"`
	TotalSimulationTime float64      `yaml:"total_simulation_time"` // run window in seconds
	AssignmentPolicy    string       `yaml:"assignment_policy"`     // "nearest" (default) or "first-available"
	TraceLevel          string       `yaml:"trace_level"`           // "none" (default) or "decisions"
}

// NewLayoutConfig creates a LayoutConfig with all fields explicitly set.
func NewLayoutConfig(width, height float64, numSpaces int, spaceWidth, spaceHeight, topMargin, portalSize float64) LayoutConfig {
	return LayoutConfig{
		Width:       width,
		Height:      height,
		NumSpaces:   numSpaces,
		SpaceWidth:  spaceWidth,
		SpaceHeight: spaceHeight,
		TopMargin:   topMargin,
		PortalSize:  portalSize,
	}
}

// NewMotionConfig creates a MotionConfig with all fields explicitly set.
func NewMotionConfig(walkSpeed, accessibleSlowdown, lotSpeed float64) MotionConfig {
	return MotionConfig{
		WalkSpeed:          walkSpeed,
		AccessibleSlowdown: accessibleSlowdown,
		LotSpeed:           lotSpeed,
	}
}

// NewRetryConfig creates a RetryConfig with all fields explicitly set.
func NewRetryConfig(fullLotDelay float64) RetryConfig {
	return RetryConfig{FullLotDelay: fullLotDelay}
}

// DefaultConfig returns the reference facility: a 1000x500 lot with 25
// spaces of 32x48, walking at 20 units/s (accessible visitors 1.5x slower),
// driving at 100 units/s, a 60s full-lot delay and a one-hour window.
func DefaultConfig() Config {
	return Config{
		Layout:              NewLayoutConfig(1000, 500, 25, 32, 48, 10, 40),
		Motion:              NewMotionConfig(20, 1.5, 100),
		Retry:               NewRetryConfig(60),
		TotalSimulationTime: 3600,
		AssignmentPolicy:    "nearest",
		TraceLevel:          string(trace.TraceLevelNone),
	}
}

// AccessibleWalkSpeed returns the walking speed of an accessible visitor.
func (c MotionConfig) AccessibleWalkSpeed() float64 {
	return c.WalkSpeed / c.AccessibleSlowdown
}

// Validate checks the configuration for values that would invalidate a run
// (zero spaces, zero speeds, degenerate extents).
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := c.Motion.Validate(); err != nil {
		return fmt.Errorf("motion: %w", err)
	}
	if err := validateFinitePositive("retry.full_lot_delay", c.Retry.FullLotDelay); err != nil {
		return err
	}
	if err := validateFiniteNonNegative("total_simulation_time", c.TotalSimulationTime); err != nil {
		return err
	}
	if !ValidAssignmentPolicies[c.AssignmentPolicy] {
		return fmt.Errorf("unknown assignment_policy %q; valid: nearest, first-available", c.AssignmentPolicy)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("unknown trace_level %q; valid: none, decisions", c.TraceLevel)
	}
	return nil
}

// Validate checks layout extents.
func (c LayoutConfig) Validate() error {
	if c.NumSpaces <= 0 {
		return fmt.Errorf("num_spaces must be positive, got %d", c.NumSpaces)
	}
	extents := []struct {
		name string
		val  float64
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"space_width", c.SpaceWidth},
		{"space_height", c.SpaceHeight},
		{"portal_size", c.PortalSize},
	}
	for _, e := range extents {
		if err := validateFinitePositive(e.name, e.val); err != nil {
			return err
		}
	}
	if err := validateFiniteNonNegative("top_margin", c.TopMargin); err != nil {
		return err
	}
	if rowWidth := float64(c.NumSpaces) * c.SpaceWidth; rowWidth > c.Width {
		return fmt.Errorf("row of %d spaces (%.1f wide) does not fit lot width %.1f", c.NumSpaces, rowWidth, c.Width)
	}
	return nil
}

// Validate checks that every speed is usable as a divisor.
func (c MotionConfig) Validate() error {
	if err := validateFinitePositive("walk_speed", c.WalkSpeed); err != nil {
		return err
	}
	if err := validateFinitePositive("lot_speed", c.LotSpeed); err != nil {
		return err
	}
	if err := validateFinitePositive("accessible_slowdown", c.AccessibleSlowdown); err != nil {
		return err
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
