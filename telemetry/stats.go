// Package telemetry provides population tracking, bookmarks and CSV output.
package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/critters/traits"
)

// Record holds the population state at the end of a window plus the events
// counted during it. Field order is the column order of telemetry.csv.
type Record struct {
	WindowStartTick int32 `csv:"-"`
	Tick            int32 `csv:"tick"`

	SpawnRate      float64 `csv:"spawn_rate"`
	Plants         int     `csv:"plants"`
	Herbivores     int     `csv:"herbivores"`
	Carnivores     int     `csv:"carnivores"`
	TickDurationUS int64   `csv:"tick_duration_us"`

	// Population means of the heritable traits (0-255)
	MeanSize   float64 `csv:"mean_size"`
	MeanSpeed  float64 `csv:"mean_speed"`
	MeanEnergy float64 `csv:"mean_energy"`
	MeanVision float64 `csv:"mean_vision"`

	// Events during window
	Births      int `csv:"births"`
	Deaths      int `csv:"deaths"`
	Kills       int `csv:"kills"`
	PlantsEaten int `csv:"plants_eaten"`
	Speciations int `csv:"speciations"`
}

// TraitMeans holds the population mean of each compared trait.
type TraitMeans struct {
	Size, Speed, Energy, Vision float64
}

// ComputeTraitMeans averages size, speed, energy and vision over the genomes.
// Returns zeros for an empty population.
func ComputeTraitMeans(genomes []traits.Genome) TraitMeans {
	if len(genomes) == 0 {
		return TraitMeans{}
	}

	column := make([]float64, len(genomes))
	mean := func(i traits.Index) float64 {
		for k, g := range genomes {
			column[k] = float64(g.Get(i))
		}
		return stat.Mean(column, nil)
	}

	return TraitMeans{
		Size:   mean(traits.Size),
		Speed:  mean(traits.Speed),
		Energy: mean(traits.Energy),
		Vision: mean(traits.Vision),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(r.WindowStartTick)),
		slog.Int("tick", int(r.Tick)),
		slog.Float64("spawn_rate", r.SpawnRate),
		slog.Int("plants", r.Plants),
		slog.Int("herbivores", r.Herbivores),
		slog.Int("carnivores", r.Carnivores),
		slog.Int64("tick_duration_us", r.TickDurationUS),
		slog.Float64("mean_size", r.MeanSize),
		slog.Float64("mean_speed", r.MeanSpeed),
		slog.Float64("mean_energy", r.MeanEnergy),
		slog.Float64("mean_vision", r.MeanVision),
		slog.Int("births", r.Births),
		slog.Int("deaths", r.Deaths),
		slog.Int("kills", r.Kills),
		slog.Int("plants_eaten", r.PlantsEaten),
		slog.Int("speciations", r.Speciations),
	)
}

// LogStats logs the record using slog.
func (r Record) LogStats() {
	slog.Info("stats", "record", r)
}
