// Package main provides CMA-ES optimization for finding simulation parameters
// under which herds and prides coexist for as long as possible.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/planisuss/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// searchLog records every evaluation to optimize_log.csv and keeps the best
// parameters seen so far.
type searchLog struct {
	params   *ParamVector
	file     *os.File
	w        *csv.Writer
	maxEvals int
	started  time.Time

	evals       int
	bestFitness float64
	best        []float64
}

func newSearchLog(dir string, params *ParamVector, maxEvals int) (*searchLog, error) {
	f, err := os.Create(filepath.Join(dir, "optimize_log.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	sl := &searchLog{
		params:      params,
		file:        f,
		w:           csv.NewWriter(f),
		maxEvals:    maxEvals,
		started:     time.Now(),
		bestFitness: 1e9,
	}

	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := sl.w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing log header: %w", err)
	}
	return sl, nil
}

// record logs one evaluation of the clamped parameters x.
func (sl *searchLog) record(x []float64, fitness, quality float64) {
	sl.evals++
	if fitness < sl.bestFitness {
		sl.bestFitness = fitness
		sl.best = x
	}

	row := make([]string, 0, 3+len(x))
	row = append(row,
		strconv.Itoa(sl.evals),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(quality, 'f', 4, 64),
	)
	for _, v := range x {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := sl.w.Write(row); err != nil {
		slog.Warn("failed to write log row", "eval", sl.evals, "error", err)
	}
	sl.w.Flush()

	elapsed := time.Since(sl.started)
	remaining := time.Duration(sl.maxEvals-sl.evals) * (elapsed / time.Duration(sl.evals))
	days := -fitness / (1.0 + 0.2*quality)
	fmt.Printf("Eval %d/%d: coexisted=%.0f days quality=%.2f (best=%.0f) | elapsed: %s, ETA: %s\n",
		sl.evals, sl.maxEvals, days, quality, sl.bestFitness,
		formatDuration(elapsed), formatDuration(remaining))
}

func (sl *searchLog) close() error {
	sl.w.Flush()
	if err := sl.w.Error(); err != nil {
		sl.file.Close()
		return err
	}
	return sl.file.Close()
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxDays := flag.Int("max-days", 2000, "Maximum simulation duration in days (cap)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Per-run simulation logs would drown the progress lines
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	evalSeeds := make([]uint64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = uint64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *maxDays, evalSeeds, baseCfg)

	slg, err := newSearchLog(*outputDir, params, *maxEvals)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := slg.close(); err != nil {
			log.Printf("failed to close log: %v", err)
		}
	}()

	// The search runs in normalized space; evaluations use clamped raw values
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			slg.record(raw, fitness, evaluator.LastQuality())
			return fitness
		},
	}

	dim := params.Dim()
	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, days per run: %d\n", *seeds, *maxDays)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	best := slg.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", slg.evals, formatDuration(time.Since(slg.started)))
	fmt.Printf("Best fitness: %.0f\n", slg.bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", spec.Name, spec.Path, best[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best)
	outPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(outPath); err != nil {
		log.Printf("failed to write best config: %v", err)
		return
	}
	fmt.Printf("\nBest config saved to: %s\n", outPath)
}
