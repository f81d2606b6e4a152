package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/game"
	"github.com/pthm-cable/planisuss/world"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	size := flag.Int("size", 0, "Grid side (0 = use config)")
	neighborhood := flag.Int("neighborhood", -1, "Herd sensing radius (-1 = use config)")
	days := flag.Int("days", 0, "Stop after N days (0 = use config)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *size > 0 {
		cfg.World.Size = *size
	}
	if *neighborhood >= 0 {
		cfg.World.Neighborhood = *neighborhood
	}
	if *days > 0 {
		cfg.World.Days = *days
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg.ComputeDerived()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	g, err := game.NewGameWithOptions(game.Options{
		Config:    cfg,
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"size", cfg.World.Size,
		"neighborhood", cfg.World.Neighborhood,
		"days", cfg.World.Days,
		"output_dir", *outputDir,
	)

	start := time.Now()
	last, err := g.Run(cfg.World.Days)
	switch {
	case errors.Is(err, world.ErrTotalExtinction):
		slog.Info("simulation ended by extinction", "day", last)
	case err != nil:
		slog.Error("simulation failed", "day", last, "error", err)
	default:
		slog.Info("max days reached", "day", last)
	}
	slog.Info("elapsed", "seconds", time.Since(start).Seconds())
}
