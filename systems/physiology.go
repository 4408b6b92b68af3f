package systems

import (
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/traits"
)

// Physiology derives an agent's physical attributes from its genome.
// All mappings are deterministic and monotonic in the trait they read.
type Physiology struct {
	Radius          Span
	Energy          Span // Seconds of reserve; scaled by TickRate
	Vision          Span
	TickRate        float64
	BaseMetabolism  float64
	MetabolismScale float64
}

// PhysiologyFromConfig builds the trait mappings from the loaded config.
func PhysiologyFromConfig(cfg *config.Config) Physiology {
	a := cfg.Agent
	return Physiology{
		Radius:          Span{Min: a.MinRadius, Max: a.MaxRadius},
		Energy:          Span{Min: a.MinEnergy, Max: a.MaxEnergy},
		Vision:          Span{Min: a.MinVision, Max: a.MaxVision},
		TickRate:        cfg.Derived.TickRate,
		BaseMetabolism:  a.BaseMetabolism,
		MetabolismScale: a.MetabolismScale,
	}
}

// RadiusOf maps the size trait into [min radius, max radius].
func (p Physiology) RadiusOf(g traits.Genome) float64 {
	return p.Radius.Map(g.Get(traits.Size))
}

// MaxEnergyOf maps the energy trait into the energy span, scaled by tick rate.
func (p Physiology) MaxEnergyOf(g traits.Genome) float64 {
	return p.Energy.Map(g.Get(traits.Energy)) * p.TickRate
}

// MetabolismOf returns the energy drained per tick. It grows with vision, size and speed.
func (p Physiology) MetabolismOf(g traits.Genome) float64 {
	load := float64(g.Get(traits.Vision)) + float64(g.Get(traits.Size)) + float64(g.Get(traits.Speed))
	return p.BaseMetabolism + p.MetabolismScale*load/(3*255.0)
}

// SpeedOf returns the distance covered per tick along a unit velocity.
func (p Physiology) SpeedOf(g traits.Genome) float64 {
	return float64(g.Get(traits.Speed)) / p.TickRate
}

// VisionOf maps the vision trait into [min vision, max vision].
func (p Physiology) VisionOf(g traits.Genome) float64 {
	return p.Vision.Map(g.Get(traits.Vision))
}
