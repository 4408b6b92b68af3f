package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
)

// FloraSystem manages plants outside the ECS as an ordered slice.
// Only the orchestrator's serial phase mutates it.
type FloraSystem struct {
	plants []components.Plant
	eaten  []bool

	bounds      Bounds
	radius      float64
	spawnChance float64
	maxPlants   int
}

// NewFloraSystem creates a plant store with spawner settings from config.
func NewFloraSystem(cfg *config.Config) *FloraSystem {
	capHint := cfg.Flora.MaxPlants
	if capHint == 0 {
		capHint = 256
	}
	return &FloraSystem{
		plants:      make([]components.Plant, 0, capHint),
		bounds:      Bounds{Width: cfg.Arena.Width, Height: cfg.Arena.Height},
		radius:      cfg.Flora.Radius,
		spawnChance: cfg.Flora.SpawnChance,
		maxPlants:   cfg.Flora.MaxPlants,
	}
}

// Plants returns the live plants. The slice is only valid until the next mutation.
func (fs *FloraSystem) Plants() []components.Plant {
	return fs.plants
}

// Count returns the number of live plants.
func (fs *FloraSystem) Count() int {
	return len(fs.plants)
}

// SpawnChance returns the per-tick spawn probability.
func (fs *FloraSystem) SpawnChance() float64 {
	return fs.spawnChance
}

// SetSpawnChance changes the per-tick spawn probability, clamped to [0, 1].
func (fs *FloraSystem) SetSpawnChance(p float64) {
	fs.spawnChance = clampFloat(p, 0, 1)
}

// Add places a plant at pos. Returns false if the store is at capacity.
func (fs *FloraSystem) Add(pos r2.Vec) bool {
	if fs.maxPlants > 0 && len(fs.plants) >= fs.maxPlants {
		return false
	}
	fs.plants = append(fs.plants, components.Plant{Pos: pos, Radius: fs.radius})
	return true
}

// SpawnRandom places a plant at a uniformly random position inside the arena.
func (fs *FloraSystem) SpawnRandom(rng *rand.Rand) bool {
	pos := r2.Vec{
		X: fs.radius + rng.Float64()*(fs.bounds.Width-2*fs.radius),
		Y: fs.radius + rng.Float64()*(fs.bounds.Height-2*fs.radius),
	}
	return fs.Add(pos)
}

// Update runs the stochastic spawner: with probability SpawnChance one plant
// is added. Returns true if a plant spawned.
func (fs *FloraSystem) Update(rng *rand.Rand) bool {
	if rng.Float64() >= fs.spawnChance {
		return false
	}
	return fs.SpawnRandom(rng)
}

// Graze marks every uneaten plant overlapping the circle (pos, radius) as
// eaten and returns how many were taken. Eaten plants stay in place until Compact.
func (fs *FloraSystem) Graze(pos r2.Vec, radius float64) int {
	if len(fs.eaten) < len(fs.plants) {
		fs.eaten = append(fs.eaten, make([]bool, len(fs.plants)-len(fs.eaten))...)
	}

	taken := 0
	for i := range fs.plants {
		if fs.eaten[i] {
			continue
		}
		p := &fs.plants[i]
		if Overlapping(pos, radius, p.Pos, p.Radius) {
			fs.eaten[i] = true
			taken++
		}
	}
	return taken
}

// Compact removes eaten plants, preserving the order of the rest.
// Returns the number removed.
func (fs *FloraSystem) Compact() int {
	if len(fs.eaten) == 0 {
		return 0
	}

	alive := 0
	for i := range fs.plants {
		if i < len(fs.eaten) && fs.eaten[i] {
			continue
		}
		fs.plants[alive] = fs.plants[i]
		alive++
	}
	removed := len(fs.plants) - alive
	fs.plants = fs.plants[:alive]

	clear(fs.eaten)
	fs.eaten = fs.eaten[:0]
	return removed
}
