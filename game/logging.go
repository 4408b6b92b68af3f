package game

import (
	"log/slog"
	"strings"

	"github.com/pthm-cable/critters/components"
)

// logWorldState logs a summary of the population by behavior status.
func (g *Game) logWorldState() {
	var statusCounts [components.NumStatuses]int
	var energyRatioSum float64
	var n int

	query := g.agentFilter.Query()
	for query.Next() {
		_, _, genome, energy, org := query.Get()
		if energy.Dead {
			continue
		}
		statusCounts[org.Status]++
		if maxE := g.physiology.MaxEnergyOf(*genome); maxE > 0 {
			energyRatioSum += energy.Current / maxE
		}
		n++
	}

	meanRatio := 0.0
	if n > 0 {
		meanRatio = energyRatioSum / float64(n)
	}

	attrs := []any{
		"tick", g.tick,
		"herbivores", g.numHerb,
		"carnivores", g.numCarn,
		"plants", g.flora.Count(),
		"mean_energy_ratio", meanRatio,
	}
	for s, count := range statusCounts {
		attrs = append(attrs, strings.ToLower(components.Status(s).String()), count)
	}
	slog.Info("world", attrs...)
}
