package workload

import (
	"fmt"
	"math"
	"math/rand"
)

// DurationSampler generates shop durations in whole seconds.
type DurationSampler interface {
	// Sample returns a non-negative duration in seconds.
	Sample(rng *rand.Rand) float64
}

// UniformSampler draws uniformly from [min, max) and floors to whole
// seconds.
type UniformSampler struct {
	min, max float64
}

func (s *UniformSampler) Sample(rng *rand.Rand) float64 {
	if s.max <= s.min {
		return math.Floor(s.min)
	}
	return math.Floor(s.min + rng.Float64()*(s.max-s.min))
}

// GaussianSampler produces clamped Gaussian durations.
type GaussianSampler struct {
	mean, stdDev float64
	min, max     float64
}

func (s *GaussianSampler) Sample(rng *rand.Rand) float64 {
	if s.min == s.max {
		return math.Floor(s.min)
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	return math.Floor(math.Min(s.max, math.Max(s.min, val)))
}

// ExponentialSampler produces exponentially-distributed durations.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return math.Floor(rng.ExpFloat64() * s.mean)
}

// ConstantSampler always returns the same fixed value.
type ConstantSampler struct {
	value float64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) float64 {
	return math.Floor(s.value)
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewDurationSampler creates a DurationSampler from a DistSpec. An empty
// type is the reference uniform [2, 15] minutes.
func NewDurationSampler(spec DistSpec) (DurationSampler, error) {
	switch spec.Type {
	case "":
		return &UniformSampler{min: DefaultShopMin, max: DefaultShopMax}, nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := spec.Params["min"], spec.Params["max"]
		if hi < lo {
			return nil, fmt.Errorf("uniform max %f below min %f", hi, lo)
		}
		return &UniformSampler{min: lo, max: hi}, nil

	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		return &GaussianSampler{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    spec.Params["min"],
			max:    spec.Params["max"],
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialSampler{mean: spec.Params["mean"]}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{value: spec.Params["value"]}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
