// Package traits defines the heritable trait bytes and diet classes of agents.
package traits

import "fmt"

// Index names one of the five heritable traits.
type Index uint8

const (
	Color Index = iota
	Size
	Speed
	Energy
	Vision

	// NumTraits is the number of heritable traits.
	NumTraits = 5
)

var indexNames = [NumTraits]string{"color", "size", "speed", "energy", "vision"}

func (i Index) String() string {
	if int(i) < len(indexNames) {
		return indexNames[i]
	}
	return fmt.Sprintf("trait(%d)", uint8(i))
}

// Compared lists the traits that take part in mate compatibility. Color is cosmetic.
var Compared = [...]Index{Size, Speed, Energy, Vision}

// Genome holds an agent's five 8-bit traits, indexed by Index.
type Genome [NumTraits]uint8

// New builds a genome from individual trait values.
func New(color, size, speed, energy, vision uint8) Genome {
	return Genome{color, size, speed, energy, vision}
}

// Uniform returns a genome with every trait set to v.
func Uniform(v uint8) Genome {
	return Genome{v, v, v, v, v}
}

// Get returns the value of trait i.
func (g Genome) Get(i Index) uint8 {
	return g[i]
}

// With returns a copy of g with trait i set to v.
func (g Genome) With(i Index, v uint8) Genome {
	g[i] = v
	return g
}

// Normalized returns trait i mapped into [0, 1].
func (g Genome) Normalized(i Index) float64 {
	return float64(g[i]) / 255.0
}

// Diet is an agent's food class, fixed at birth.
type Diet uint8

const (
	Herbivore Diet = iota
	Carnivore
)

func (d Diet) String() string {
	switch d {
	case Herbivore:
		return "herbivore"
	case Carnivore:
		return "carnivore"
	default:
		return fmt.Sprintf("diet(%d)", uint8(d))
	}
}
