package workload

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/parklot/parklot-sim/sim/internal/testutil"
)

func sampleIATs(s ArrivalSampler, rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.SampleIAT(rng)
	}
	return out
}

func coefficientOfVariation(xs []float64) float64 {
	mean, std := stat.MeanStdDev(xs, nil)
	return std / mean
}

func TestPoissonSampler_MeanIAT_MatchesRate(t *testing.T) {
	// GIVEN a Poisson sampler at 120 vehicles/hour
	rng := rand.New(rand.NewSource(42))
	sampler := NewArrivalSampler(ArrivalSpec{Process: "poisson"}, 120.0/3600)

	// WHEN 10000 IATs are sampled
	iats := sampleIATs(sampler, rng, 10000)

	// THEN mean IAT ≈ 30s (within 5%)
	testutil.AssertFloat64Equal(t, "poisson mean IAT", 30, stat.Mean(iats, nil), 0.05)
}

func TestGammaSampler_HighCV_ProducesBurstierArrivals(t *testing.T) {
	// GIVEN a Gamma sampler with CV=3 and a Poisson sampler at the same rate
	cv := 3.0
	rate := 60.0 / 3600
	gamma := NewArrivalSampler(ArrivalSpec{Process: "gamma", CV: &cv}, rate)
	poisson := NewArrivalSampler(ArrivalSpec{Process: "poisson"}, rate)

	// WHEN 20000 IATs are sampled from each
	gammaCV := coefficientOfVariation(sampleIATs(gamma, rand.New(rand.NewSource(42)), 20000))
	poissonCV := coefficientOfVariation(sampleIATs(poisson, rand.New(rand.NewSource(42)), 20000))

	// THEN Gamma CV > 2 and Poisson CV ≈ 1
	if gammaCV < 2.0 {
		t.Errorf("gamma CV = %.2f, want > 2.0", gammaCV)
	}
	if poissonCV < 0.9 || poissonCV > 1.1 {
		t.Errorf("poisson CV = %.2f, want ≈ 1.0", poissonCV)
	}
}

func TestGammaSampler_MeanMatchesRate(t *testing.T) {
	cv := 0.5
	sampler := NewArrivalSampler(ArrivalSpec{Process: "gamma", CV: &cv}, 1.0/20)
	mean := stat.Mean(sampleIATs(sampler, rand.New(rand.NewSource(7)), 20000), nil)
	testutil.AssertFloat64Equal(t, "gamma mean IAT", 20, mean, 0.03)
}

func TestWeibullSampler_MatchesMeanAndCV(t *testing.T) {
	// GIVEN a Weibull sampler with CV=2 at one vehicle per 10s
	cv := 2.0
	sampler := NewArrivalSampler(ArrivalSpec{Process: "weibull", CV: &cv}, 0.1)

	// WHEN 50000 IATs are sampled
	iats := sampleIATs(sampler, rand.New(rand.NewSource(42)), 50000)

	// THEN the sample mean and CV track the targets
	testutil.AssertFloat64Equal(t, "weibull mean IAT", 10, stat.Mean(iats, nil), 0.05)
	if got := coefficientOfVariation(iats); math.Abs(got-2) > 0.3 {
		t.Errorf("weibull CV = %.2f, want ≈ 2.0", got)
	}
}

func TestWeibullShapeFromCV_CVOneIsExponential(t *testing.T) {
	k := weibullShapeFromCV(1.0)
	if math.Abs(k-1.0) > 0.01 {
		t.Errorf("weibullShapeFromCV(1.0) = %.4f, want ≈ 1.0", k)
	}
	if got := weibullCV(k); math.Abs(got-1.0) > 0.001 {
		t.Errorf("weibullCV(%.4f) = %.4f, want ≈ 1.0", k, got)
	}
}

func TestConstantArrivalSampler_FixedInterval(t *testing.T) {
	sampler := NewArrivalSampler(ArrivalSpec{Process: "constant"}, 1.0/45)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5; i++ {
		if got := sampler.SampleIAT(rng); math.Abs(got-45) > 1e-9 {
			t.Fatalf("constant IAT = %v, want 45", got)
		}
	}
}

func TestUniformArrivalSampler_RangeAndMean(t *testing.T) {
	sampler := NewArrivalSampler(ArrivalSpec{Process: "uniform"}, 1.0/30)
	iats := sampleIATs(sampler, rand.New(rand.NewSource(3)), 20000)
	for _, v := range iats {
		if v < 0 || v >= 60 {
			t.Fatalf("uniform IAT %v outside [0, 60)", v)
		}
	}
	testutil.AssertFloat64Equal(t, "uniform mean IAT", 30, stat.Mean(iats, nil), 0.03)
}

func TestNewArrivalSampler_DefaultsToPoisson(t *testing.T) {
	if _, ok := NewArrivalSampler(ArrivalSpec{}, 1).(*PoissonSampler); !ok {
		t.Error("empty process should yield a PoissonSampler")
	}
}
