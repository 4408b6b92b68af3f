package game

import (
	"log/slog"

	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/traits"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	genomes := g.sampleGenomes()
	record := g.collector.Flush(g.tick, telemetry.Sample{
		SpawnRate:    g.flora.SpawnChance(),
		Plants:       g.flora.Count(),
		Herbivores:   g.numHerb,
		Carnivores:   g.numCarn,
		TickDuration: g.perfCollector.LastTickDuration(),
		Means:        telemetry.ComputeTraitMeans(genomes),
	})
	g.lastRecord = record
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(record)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		record.LogStats()
		perfStats.LogStats()
		g.logWorldState()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(record); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, record.Tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range g.bookmarkDetector.Check(record) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sampleGenomes collects the genome of every live agent.
func (g *Game) sampleGenomes() []traits.Genome {
	genomes := make([]traits.Genome, 0, len(g.agents))

	query := g.agentFilter.Query()
	for query.Next() {
		_, _, genome, energy, _ := query.Get()
		if energy.Dead {
			continue
		}
		genomes = append(genomes, *genome)
	}
	return genomes
}
