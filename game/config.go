package game

import (
	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/telemetry"
)

// Options configures a headless run.
type Options struct {
	Config    *config.Config // nil = config.Cfg()
	Seed      uint64
	LogStats  bool   // log window stats and bookmarks via slog
	OutputDir string // empty = no CSV output

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}
