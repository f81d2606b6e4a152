// Package game drives a world day by day and wires it to telemetry.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/telemetry"
	"github.com/pthm-cable/planisuss/world"
)

// Game holds a world and the telemetry observing it.
type Game struct {
	world *world.World
	cfg   *config.Config

	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool

	// State
	day     int
	pending *world.Interventions
	lastErr error
}

// NewGameWithOptions generates a world and attaches telemetry to it.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	w, err := world.NewWithConfig(cfg, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(w.Config()); err != nil {
		om.Close()
		return nil, err
	}

	g := &Game{
		world:            w,
		cfg:              w.Config(),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.StatsWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Bookmarks, cfg.Telemetry.BookmarkHistorySize),
		outputManager:    om,
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
	}
	w.SetObserver(g.collector)
	w.SetPhaseTimer(g.perfCollector)
	return g, nil
}

// Schedule queues interventions for the next simulated day. Later calls
// before that day replace earlier ones.
func (g *Game) Schedule(iv *world.Interventions) {
	g.pending = iv
}

// UpdateHeadless simulates one day. It returns world.ErrTotalExtinction once
// both species are gone; the day that emptied the world still counts.
func (g *Game) UpdateHeadless() error {
	if g.lastErr != nil {
		return g.lastErr
	}

	next := g.day + 1
	snap, err := g.world.Day(next, g.pending)
	g.pending = nil
	if snap != nil && snap.Day == next {
		g.day = next
		g.flushTelemetry(err != nil)
	}
	if err != nil {
		g.lastErr = err
	}
	return err
}

// Run simulates until maxDays or extinction and returns the last simulated day.
func (g *Game) Run(maxDays int) (int, error) {
	for g.day < maxDays {
		if err := g.UpdateHeadless(); err != nil {
			return g.day, err
		}
	}
	return g.day, nil
}

// Unload writes the final death tally and closes output files.
func (g *Game) Unload() {
	deaths := g.world.Deaths()
	slog.Info("run_finished",
		"day", g.day,
		"erbasts", g.world.TotalAnimals(components.Erbast),
		"carvizes", g.world.TotalAnimals(components.Carviz),
		"deaths", deaths,
	)
	if err := g.outputManager.WriteDeaths(deaths); err != nil {
		slog.Error("failed to write deaths", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Day returns the last simulated day.
func (g *Game) Day() int {
	return g.day
}

// World returns the simulated world.
func (g *Game) World() *world.World {
	return g.world
}

// ErbastCount returns the live herbivore count.
func (g *Game) ErbastCount() int {
	return g.world.TotalAnimals(components.Erbast)
}

// CarvizCount returns the live carnivore count.
func (g *Game) CarvizCount() int {
	return g.world.TotalAnimals(components.Carviz)
}
