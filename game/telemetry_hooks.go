package game

import (
	"log/slog"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles
// bookmarks. final forces a flush of a partial window.
func (g *Game) flushTelemetry(final bool) {
	if !final && !g.collector.ShouldFlush(g.day) {
		return
	}

	stats := g.collector.Flush(g.day, g.samplePopulation())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndDay); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// samplePopulation collects counts, energy distributions and the mean land
// vegetation density.
func (g *Game) samplePopulation() telemetry.Population {
	w := g.world
	pop := telemetry.Population{
		Erbasts:        w.TotalAnimals(components.Erbast),
		Carvizes:       w.TotalAnimals(components.Carviz),
		ErbastEnergies: w.Registry(components.Erbast).Energies(),
		CarvizEnergies: w.Registry(components.Carviz).Energies(),
	}

	var sum float64
	var land int
	for x := range w.Size() {
		for y := range w.Size() {
			if v := w.Cell(x, y).Vegetob(); v != nil {
				sum += v.Density()
				land++
			}
		}
	}
	if land > 0 {
		pop.MeanVegetation = sum / float64(land)
	}
	return pop
}
