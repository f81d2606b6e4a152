package main

import (
	"errors"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/game"
	"github.com/pthm-cable/planisuss/telemetry"
	"github.com/pthm-cable/planisuss/world"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxDays    int
	seeds      []uint64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxDays int, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxDays:    maxDays,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if either species stays below this for
// extinctionGraceDays consecutive days, it counts as functionally extinct.
const (
	minViablePop        = 3
	extinctionGraceDays = 20
)

// runResult holds the results from a single simulation run.
type runResult struct {
	coexistenceDays int                     // days before either species died out (or maxDays)
	windowStats     []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative coexistence days: longer coexistence = lower fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	// Worlds share nothing, so seeds run in parallel
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness: computeFitness(result.coexistenceDays, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until either species is
// gone, or maxDays.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed uint64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	g, err := game.NewGameWithOptions(game.Options{
		Config: cfg,
		Seed:   seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		slog.Warn("skipping invalid parameters", "error", err)
		return result
	}
	defer g.Unload()

	var erbastBelow, carvizBelow int
	for g.Day() < fe.maxDays {
		if err := g.UpdateHeadless(); err != nil {
			if !errors.Is(err, world.ErrTotalExtinction) {
				slog.Error("simulation failed", "seed", seed, "error", err)
			}
			break
		}

		erbasts, carvizes := g.ErbastCount(), g.CarvizCount()
		if erbasts == 0 || carvizes == 0 {
			break
		}

		erbastBelow = belowCount(erbasts, erbastBelow)
		carvizBelow = belowCount(carvizes, carvizBelow)
		if erbastBelow >= extinctionGraceDays || carvizBelow >= extinctionGraceDays {
			break
		}
	}

	result.coexistenceDays = g.Day()
	return result
}

func belowCount(pop, streak int) int {
	if pop < minViablePop {
		return streak + 1
	}
	return 0
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(days × (1.0 + 0.2 × quality))
// Coexistence dominates; quality adds up to 20% to separate configs with
// similar run lengths.
func computeFitness(days int, quality float64) float64 {
	return -(float64(days) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.40
	qualityWeightStability = 0.35
	qualityWeightHunting   = 0.25

	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinPop        = 3 // exclude windows where either species < this
	qualityTargetRatio   = 10.0
)

// computeQuality computes ecosystem quality ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var ratioSum, huntSum float64
	var ratioCount, huntCount int
	erbasts := make([]float64, 0, len(windows))
	carvizes := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Erbasts < qualityMinPop || w.Carvizes < qualityMinPop {
			continue
		}
		erbasts = append(erbasts, float64(w.Erbasts))
		carvizes = append(carvizes, float64(w.Carvizes))

		// Population ratio, log-normal around the target
		logErr := math.Log(float64(w.Erbasts) / float64(w.Carvizes) / qualityTargetRatio)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++

		// Hunting that neither starves prides nor wipes out herds
		if w.HuntsAttempted > 0 {
			huntSum += math.Exp(-math.Pow((w.HuntRate-0.3)/0.2, 2))
			huntCount++
		}
	}

	if ratioCount == 0 {
		return 0
	}

	ratioScore := ratioSum / float64(ratioCount)

	stabilityScore := 0.0
	if len(erbasts) >= 2 {
		cvE, cvC := cv(erbasts), cv(carvizes)
		stabilityScore = math.Exp(-(cvE*cvE + cvC*cvC))
	}

	huntScore := 0.0
	if huntCount > 0 {
		huntScore = huntSum / float64(huntCount)
	}

	quality := qualityWeightRatio*ratioScore +
		qualityWeightStability*stabilityScore +
		qualityWeightHunting*huntScore

	return min(max(quality, 0), 1)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
