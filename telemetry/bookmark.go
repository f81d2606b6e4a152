package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/planisuss/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHuntBreakthrough BookmarkType = "hunt_breakthrough"
	BookmarkPredatorRecovery BookmarkType = "predator_recovery"
	BookmarkPreyCrash        BookmarkType = "prey_crash"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Day         int          `csv:"day"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"day", b.Day,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPredMin      int // minimum carviz count in recent history
	recentPreyPeak     int // peak erbast count in recent history
	stableWindowsCount int // consecutive windows with stable populations
}

// NewBookmarkDetector creates a detector with the given thresholds and history size.
func NewBookmarkDetector(cfg config.BookmarksConfig, historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Hunt breakthrough: success rate well above the rolling average
		if b := bd.checkHuntBreakthrough(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Predator recovery: was near zero, now a multiple of that
		if b := bd.checkPredatorRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Prey crash: dropped sharply from recent peak
		if b := bd.checkPreyCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Stable ecosystem: both populations present with low variance
		if b := bd.checkStableEcosystem(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Update history
	bd.addToHistory(stats)

	// Track predator minimum and prey peak
	if stats.Carvizes < bd.recentPredMin || bd.recentPredMin == 0 {
		bd.recentPredMin = stats.Carvizes
	}
	if stats.Erbasts > bd.recentPreyPeak {
		bd.recentPreyPeak = stats.Erbasts
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkHuntBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var totalKills, totalHunts int
	for _, h := range history {
		totalKills += h.HuntsSucceeded
		totalHunts += h.HuntsAttempted
	}
	if totalHunts == 0 || stats.HuntsAttempted == 0 {
		return nil
	}

	avgRate := float64(totalKills) / float64(totalHunts)
	if avgRate == 0 {
		return nil
	}

	cfg := bd.cfg.HuntBreakthrough
	if stats.HuntRate > avgRate*cfg.Multiplier && stats.HuntsSucceeded >= cfg.MinKills {
		return &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Day:         stats.WindowEndDay,
			Description: fmt.Sprintf("Hunt success %.2f is %.1fx average (%.2f)", stats.HuntRate, stats.HuntRate/avgRate, avgRate),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats WindowStats) *Bookmark {
	cfg := bd.cfg.PredatorRecovery
	if bd.recentPredMin == 0 || bd.recentPredMin > cfg.MinPopulation {
		return nil
	}

	threshold := bd.recentPredMin * cfg.RecoveryMultiplier
	if stats.Carvizes >= threshold && stats.Carvizes >= cfg.MinFinal {
		// Reset the minimum after triggering
		oldMin := bd.recentPredMin
		bd.recentPredMin = stats.Carvizes

		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Day:         stats.WindowEndDay,
			Description: fmt.Sprintf("Carviz population recovered from %d to %d", oldMin, stats.Carvizes),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPreyCrash(stats WindowStats) *Bookmark {
	if bd.recentPreyPeak == 0 {
		return nil
	}

	cfg := bd.cfg.PreyCrash
	dropPercent := 1.0 - float64(stats.Erbasts)/float64(bd.recentPreyPeak)
	if dropPercent > cfg.DropPercent && stats.Erbasts < bd.recentPreyPeak-cfg.MinDrop {
		// Reset peak after crash
		oldPeak := bd.recentPreyPeak
		bd.recentPreyPeak = stats.Erbasts

		return &Bookmark{
			Type:        BookmarkPreyCrash,
			Day:         stats.WindowEndDay,
			Description: fmt.Sprintf("Erbasts crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Erbasts),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	cfg := bd.cfg.StableEcosystem

	// Need both populations present
	if stats.Erbasts < cfg.MinPrey || stats.Carvizes < cfg.MinPred {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	prey := make([]float64, len(recent))
	pred := make([]float64, len(recent))
	for i, h := range recent {
		prey[i] = float64(h.Erbasts)
		pred[i] = float64(h.Carvizes)
	}

	if coefVar(prey) < cfg.CVThreshold && coefVar(pred) < cfg.CVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == cfg.StableWindows { // trigger exactly once
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Day:         stats.WindowEndDay,
			Description: fmt.Sprintf("Stable ecosystem with %d erbasts, %d carvizes over %d+ windows", stats.Erbasts, stats.Carvizes, cfg.StableWindows),
		}
	}

	return nil
}

// coefVar returns the population coefficient of variation, 0 for a zero mean.
func coefVar(x []float64) float64 {
	mean, std := stat.PopMeanStdDev(x, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
