// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Arena       ArenaConfig       `yaml:"arena"`
	Sim         SimConfig         `yaml:"sim"`
	Agent       AgentConfig       `yaml:"agent"`
	Behavior    BehaviorConfig    `yaml:"behavior"`
	Genetics    GeneticsConfig    `yaml:"genetics"`
	Interaction InteractionConfig `yaml:"interaction"`
	Flora       FloraConfig       `yaml:"flora"`
	Population  PopulationConfig  `yaml:"population"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for graphical mode.
type ScreenConfig struct {
	TargetFPS int `yaml:"target_fps"`
}

// ArenaConfig holds the bounded arena dimensions.
type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// SimConfig holds tick engine parameters.
type SimConfig struct {
	TickRate int `yaml:"tick_rate"` // Ticks per simulated second; scales energy capacity and speed
	Workers  int `yaml:"workers"`   // Size of the update worker pool
}

// AgentConfig holds the bounds that trait bytes are mapped into.
type AgentConfig struct {
	MinRadius       float64 `yaml:"min_radius"`
	MaxRadius       float64 `yaml:"max_radius"`
	MinEnergy       float64 `yaml:"min_energy"` // Seconds of reserve at energy trait 0
	MaxEnergy       float64 `yaml:"max_energy"` // Seconds of reserve at energy trait 255
	MinVision       float64 `yaml:"min_vision"`
	MaxVision       float64 `yaml:"max_vision"`
	BaseMetabolism  float64 `yaml:"base_metabolism"`  // Energy drained per tick regardless of traits
	MetabolismScale float64 `yaml:"metabolism_scale"` // Extra drain per tick at vision+size+speed = 765
}

// BehaviorConfig holds state machine thresholds.
type BehaviorConfig struct {
	MateThreshold      float64 `yaml:"mate_threshold"`       // Energy ratio required to seek or accept a mate
	MatingRadiusFactor float64 `yaml:"mating_radius_factor"` // Mating radius = vision * this
}

// GeneticsConfig holds crossover, mutation and compatibility parameters.
type GeneticsConfig struct {
	SizeTolerance       float64 `yaml:"size_tolerance"`       // Max normalized size gap between predator and prey
	SimilarityThreshold int     `yaml:"similarity_threshold"` // Mates must differ in fewer bits than this
	MutationChance      float64 `yaml:"mutation_chance"`      // Per-trait chance of a single bit flip
	SpeciationChance    float64 `yaml:"speciation_chance"`    // Chance a birth becomes a carnivore litter
	SpeciationLitter    int     `yaml:"speciation_litter"`    // Offspring count of a speciation event
}

// InteractionConfig holds serial-phase interaction parameters.
type InteractionConfig struct {
	PlantEnergy float64 `yaml:"plant_energy"` // Fixed energy granted per plant eaten
	HuntPenalty float64 `yaml:"hunt_penalty"` // Subtracted from the prey energy a predator receives
}

// FloraConfig holds plant spawner parameters.
type FloraConfig struct {
	SpawnChance float64 `yaml:"spawn_chance"` // Per-tick chance of one new plant
	Radius      float64 `yaml:"radius"`
	MaxPlants   int     `yaml:"max_plants"` // 0 = unlimited
	Initial     int     `yaml:"initial"`
}

// PopulationConfig holds the seed population composition.
type PopulationConfig struct {
	Herbivores   int         `yaml:"herbivores"`
	Carnivores   int         `yaml:"carnivores"`
	RandomTraits bool        `yaml:"random_traits"` // Uniform random traits instead of SeedTraits
	SeedTraits   TraitConfig `yaml:"seed_traits"`
}

// TraitConfig lists the five heritable trait bytes.
type TraitConfig struct {
	Color  uint8 `yaml:"color"`
	Size   uint8 `yaml:"size"`
	Speed  uint8 `yaml:"speed"`
	Energy uint8 `yaml:"energy"`
	Vision uint8 `yaml:"vision"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	Interval   int `yaml:"interval"`    // Ticks between telemetry records
	PerfWindow int `yaml:"perf_window"` // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickRate    float64 // Sim.TickRate as float64
	FrameBudget float64 // Seconds per tick at the target rate
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports the first parameter that would break the engine's invariants.
func (c *Config) Validate() error {
	switch {
	case c.Arena.Width <= 0 || c.Arena.Height <= 0:
		return fmt.Errorf("arena must have positive size, got %vx%v", c.Arena.Width, c.Arena.Height)
	case c.Sim.TickRate < 1:
		return fmt.Errorf("sim.tick_rate must be >= 1, got %d", c.Sim.TickRate)
	case c.Sim.Workers < 1:
		return fmt.Errorf("sim.workers must be >= 1, got %d", c.Sim.Workers)
	case c.Agent.MinRadius <= 0 || c.Agent.MinRadius >= c.Agent.MaxRadius:
		return fmt.Errorf("agent radius bounds invalid: [%v, %v]", c.Agent.MinRadius, c.Agent.MaxRadius)
	case c.Agent.MinEnergy <= 0 || c.Agent.MinEnergy >= c.Agent.MaxEnergy:
		return fmt.Errorf("agent energy bounds invalid: [%v, %v]", c.Agent.MinEnergy, c.Agent.MaxEnergy)
	case c.Agent.MinVision < 0 || c.Agent.MinVision > c.Agent.MaxVision:
		return fmt.Errorf("agent vision bounds invalid: [%v, %v]", c.Agent.MinVision, c.Agent.MaxVision)
	case c.Agent.BaseMetabolism <= 0:
		return fmt.Errorf("agent.base_metabolism must be positive, got %v", c.Agent.BaseMetabolism)
	}

	probs := map[string]float64{
		"behavior.mate_threshold":    c.Behavior.MateThreshold,
		"genetics.size_tolerance":    c.Genetics.SizeTolerance,
		"genetics.mutation_chance":   c.Genetics.MutationChance,
		"genetics.speciation_chance": c.Genetics.SpeciationChance,
		"flora.spawn_chance":         c.Flora.SpawnChance,
	}
	for name, p := range probs {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", name, p)
		}
	}
	if c.Genetics.SpeciationLitter < 1 {
		return fmt.Errorf("genetics.speciation_litter must be >= 1, got %d", c.Genetics.SpeciationLitter)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TickRate = float64(c.Sim.TickRate)
	c.Derived.FrameBudget = 1.0 / c.Derived.TickRate

	if c.Telemetry.Interval < 1 {
		c.Telemetry.Interval = c.Sim.TickRate
	}
	if c.Screen.TargetFPS == 0 {
		c.Screen.TargetFPS = c.Sim.TickRate
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
