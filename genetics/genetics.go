// Package genetics implements trait crossover, mutation, and the compatibility
// checks that gate predation and mating.
package genetics

import (
	"math"
	"math/bits"
	"math/rand"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/traits"
)

// Rules holds the tunable genetic parameters.
type Rules struct {
	SizeTolerance       float64
	SimilarityThreshold int
	MutationChance      float64
	SpeciationChance    float64
	SpeciationLitter    int
}

// RulesFromConfig extracts genetic rules from the loaded config.
func RulesFromConfig(cfg *config.Config) Rules {
	g := cfg.Genetics
	return Rules{
		SizeTolerance:       g.SizeTolerance,
		SimilarityThreshold: g.SimilarityThreshold,
		MutationChance:      g.MutationChance,
		SpeciationChance:    g.SpeciationChance,
		SpeciationLitter:    g.SpeciationLitter,
	}
}

// CanEat reports whether a predator may eat the prey. Only carnivores eat,
// only herbivores are eaten, and the normalized size gap must be within tolerance.
func (r Rules) CanEat(predDiet traits.Diet, pred traits.Genome, preyDiet traits.Diet, prey traits.Genome) bool {
	if predDiet != traits.Carnivore || preyDiet != traits.Herbivore {
		return false
	}
	gap := math.Abs(pred.Normalized(traits.Size) - prey.Normalized(traits.Size))
	return gap <= r.SizeTolerance
}

// Compatible reports whether two genomes are close enough to mate.
func (r Rules) Compatible(a, b traits.Genome) bool {
	return Similarity(a, b) < r.SimilarityThreshold
}

// Similarity counts the differing bit positions across size, speed, energy
// and vision (32 bits in total). Identical genomes score zero.
func Similarity(a, b traits.Genome) int {
	diff := 0
	for _, i := range traits.Compared {
		diff += bits.OnesCount8(a[i] ^ b[i])
	}
	return diff
}

// Crossover assembles trait i bit by bit, taking each bit from either parent
// with equal probability. With probability mutationChance one random bit of
// the result is then flipped.
func Crossover(a, b traits.Genome, i traits.Index, mutationChance float64, rng *rand.Rand) uint8 {
	var child uint8
	for bit := 0; bit < 8; bit++ {
		mask := uint8(1) << bit
		src := a[i]
		if rng.Intn(2) == 1 {
			src = b[i]
		}
		child |= src & mask
	}
	if rng.Float64() < mutationChance {
		child ^= uint8(1) << rng.Intn(8)
	}
	return child
}

// Cross builds a full child genome by independent per-trait crossover.
func (r Rules) Cross(a, b traits.Genome, rng *rand.Rand) traits.Genome {
	var child traits.Genome
	for i := traits.Index(0); i < traits.NumTraits; i++ {
		child[i] = Crossover(a, b, i, r.MutationChance, rng)
	}
	return child
}

// Offspring describes one child of a mating.
type Offspring struct {
	Diet   traits.Diet
	Genome traits.Genome
}

// Breed produces the children of two parents sharing diet. Usually that is a
// single child of the same diet; with SpeciationChance it is instead a litter
// of SpeciationLitter carnivores. The second result reports the speciation.
func (r Rules) Breed(a, b traits.Genome, diet traits.Diet, rng *rand.Rand) ([]Offspring, bool) {
	count := 1
	speciated := false
	if rng.Float64() < r.SpeciationChance {
		count = max(r.SpeciationLitter, 1)
		diet = traits.Carnivore
		speciated = true
	}

	children := make([]Offspring, count)
	for k := range children {
		children[k] = Offspring{Diet: diet, Genome: r.Cross(a, b, rng)}
	}
	return children, speciated
}
