package sim

import (
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce identical schedules and identical completed logs.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemSchedule is the RNG subsystem for arrival times.
	// Uses master seed directly so --seed maps 1:1 onto the arrival sequence.
	SubsystemSchedule = "schedule"

	// SubsystemVisitor is the RNG subsystem for per-visitor draws
	// (accessible flag, shop duration).
	SubsystemVisitor = "visitor"

	// SubsystemCosmetic is the RNG subsystem for colors and glyphs.
	// Isolated so cosmetic draws never perturb the simulated outcome.
	SubsystemCosmetic = "cosmetic"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemSchedule: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemSchedule {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
