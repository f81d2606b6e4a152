// Package world is the simulation context: the grid, both species
// registries, their herds and prides, and the daily tick.
package world

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/systems"
	"github.com/pthm-cable/planisuss/telemetry"
)

// CellFilter restricts neighbor queries by terrain.
type CellFilter uint8

const (
	AnyCell CellFilter = iota
	LandOnly
	WaterOnly
)

func (f CellFilter) match(c *Cell) bool {
	switch f {
	case LandOnly:
		return !c.water
	case WaterOnly:
		return c.water
	}
	return true
}

// Observer receives simulation events as they happen.
// telemetry.Collector satisfies it.
type Observer interface {
	RecordBirth(species components.Species)
	RecordDeath(species components.Species, reason components.DeathReason)
	RecordHunt(success bool)
	RecordFight()
	RecordSecession(species components.Species)
}

type nopObserver struct{}

func (nopObserver) RecordBirth(components.Species) {}
func (nopObserver) RecordDeath(components.Species, components.DeathReason) {}
func (nopObserver) RecordHunt(bool) {}
func (nopObserver) RecordFight() {}
func (nopObserver) RecordSecession(components.Species) {}

// PhaseTimer times the phases of a day.
// telemetry.PerfCollector satisfies it.
type PhaseTimer interface {
	StartDay()
	StartPhase(name string)
	EndDay()
}

type nopTimer struct{}

func (nopTimer) StartDay() {}
func (nopTimer) StartPhase(string) {}
func (nopTimer) EndDay() {}

// World owns the grid, the registries and the RNG. Everything runs on the
// caller's goroutine; a World is not safe for concurrent use.
type World struct {
	cfg    *config.Config
	size   int
	radius int
	seed   uint64

	rng      *rand.Rand
	attitude distuv.Normal

	terrain *systems.Terrain
	cells   []*Cell

	erbasts  *Registry
	carvizes *Registry

	groups      map[uint64]*Group
	nextGroupID uint64

	snapshots []*Snapshot
	deaths    *telemetry.DeathTally
	graves    map[int]components.DeathReason
	observer  Observer
	timer     PhaseTimer

	day     int // day being simulated
	extinct bool
}

// New generates a world of side size with herd sensing radius radius, using
// the default configuration.
func New(size, radius int, seed uint64) (*World, error) {
	cfg := config.Default()
	cfg.World.Size = size
	cfg.World.Neighborhood = radius
	cfg.ComputeDerived()
	return NewWithConfig(cfg, seed)
}

// NewWithConfig generates a world from a full configuration. The
// configuration is copied.
func NewWithConfig(cfg *config.Config, seed uint64) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	cfg = cfg.Clone()

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	size := cfg.World.Size

	w := &World{
		cfg:      cfg,
		size:     size,
		radius:   cfg.World.Neighborhood,
		seed:     seed,
		rng:      rng,
		attitude: distuv.Normal{Sigma: cfg.Animals.AttitudeSigma, Src: src},
		erbasts:  NewRegistry(components.Erbast),
		carvizes: NewRegistry(components.Carviz),
		groups:   make(map[uint64]*Group),
		deaths:   telemetry.NewDeathTally(),
		graves:   make(map[int]components.DeathReason),
		observer: nopObserver{},
		timer:    nopTimer{},
	}

	w.terrain = systems.GeneratePangea(rng, size)
	w.cells = make([]*Cell, size*size)
	for i, land := range w.terrain.Land {
		c := systems.CoordOf(i, size)
		w.cells[i] = &Cell{X: c.X, Y: c.Y, water: !land}
	}
	for _, c := range w.cells {
		if c.water {
			continue
		}
		if err := w.seedCell(c); err != nil {
			return nil, err
		}
	}

	w.snapshots = append(w.snapshots, w.snapshot(0))

	slog.Info("world_generated",
		"size", size,
		"seed", seed,
		"land", w.terrain.LandCount(),
		"erbasts", w.erbasts.Live(),
		"carvizes", w.carvizes.Live(),
	)
	return w, nil
}

// seedCell plants vegetation and the initial herd and pride on a land cell.
func (w *World) seedCell(c *Cell) error {
	if err := c.SpawnVegetation(w.rng.Float64() * w.cfg.Vegetob.MaxDensity); err != nil {
		return err
	}
	w.seedHerd(c)
	if w.rng.Float64() < w.cfg.Carviz.SpawnChance {
		w.seedPride(c)
	}
	return nil
}

func (w *World) seedHerd(c *Cell) {
	ec := &w.cfg.Erbast
	for range max(ec.InitialMembers, 1) {
		e := w.erbasts.Spawn(components.Vitals{
			Energy:         ec.InitialEnergy,
			Lifetime:       ec.InitialLifetime,
			SocialAttitude: ec.InitialAttitude,
		}, components.Position{X: c.X, Y: c.Y}, 0)
		w.settle(components.Erbast, e, c, nil)
	}
}

func (w *World) seedPride(c *Cell) {
	cc := &w.cfg.Carviz
	e := w.carvizes.Spawn(components.Vitals{
		Energy:         cc.InitialEnergy,
		Lifetime:       cc.InitialLifetime,
		SocialAttitude: cc.InitialAttitude,
	}, components.Position{X: c.X, Y: c.Y}, 0)
	w.settle(components.Carviz, e, c, nil)
}

// SetObserver routes simulation events to o. Nil disables them.
func (w *World) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	w.observer = o
}

// SetPhaseTimer times every simulated day with t. Nil disables timing.
func (w *World) SetPhaseTimer(t PhaseTimer) {
	if t == nil {
		t = nopTimer{}
	}
	w.timer = t
}

// Config returns the world's configuration. Callers must not modify it.
func (w *World) Config() *config.Config { return w.cfg }

// Size returns the side of the grid.
func (w *World) Size() int { return w.size }

// Seed returns the RNG seed the world was generated with.
func (w *World) Seed() uint64 { return w.seed }

// Terrain returns the land mask, kept in step with terraforming.
func (w *World) Terrain() *systems.Terrain { return w.terrain }

// Registry returns the registry of a species.
func (w *World) Registry(species components.Species) *Registry { return w.registry(species) }

func (w *World) registry(species components.Species) *Registry {
	if species == components.Carviz {
		return w.carvizes
	}
	return w.erbasts
}

func (w *World) speciesConfig(species components.Species) *config.SpeciesConfig {
	if species == components.Carviz {
		return &w.cfg.Carviz.SpeciesConfig
	}
	return &w.cfg.Erbast.SpeciesConfig
}

// Deaths returns the cause-of-death tally.
func (w *World) Deaths() *telemetry.DeathTally { return w.deaths }

// Grave returns the reason of the last death recorded on a cell.
func (w *World) Grave(x, y int) (components.DeathReason, bool) {
	if !(systems.Coord{X: x, Y: y}).InBounds(w.size) {
		return "", false
	}
	r, ok := w.graves[systems.Coord{X: x, Y: y}.Index(w.size)]
	return r, ok
}

// Cell returns the cell at (x,y), or nil off the grid.
func (w *World) Cell(x, y int) *Cell {
	c := systems.Coord{X: x, Y: y}
	if !c.InBounds(w.size) {
		return nil
	}
	return w.cells[c.Index(w.size)]
}

// Distance returns the Euclidean distance between two cells.
func (w *World) Distance(a, b *Cell) float64 {
	return systems.Distance(a.coord(), b.coord())
}

// Neighbors returns the cells of the square of the given radius around c,
// c included, in row-major order.
func (w *World) Neighbors(c *Cell, radius int, f CellFilter) []*Cell {
	coords := systems.Within(w.size, c.coord(), radius)
	out := make([]*Cell, 0, len(coords))
	for _, nb := range coords {
		if cell := w.cells[nb.Index(w.size)]; f.match(cell) {
			out = append(out, cell)
		}
	}
	return out
}

// Adjacent returns the 4-connected neighbors of c.
func (w *World) Adjacent(c *Cell, f CellFilter) []*Cell {
	coords := systems.Adjacent(w.size, c.coord())
	out := make([]*Cell, 0, len(coords))
	for _, nb := range coords {
		if cell := w.cells[nb.Index(w.size)]; f.match(cell) {
			out = append(out, cell)
		}
	}
	return out
}

// TotalAnimals counts live animals of the given species, or of both when
// species is empty.
func (w *World) TotalAnimals(species ...components.Species) int {
	if len(species) == 0 {
		species = components.AllSpecies()
	}
	n := 0
	for _, s := range species {
		n += w.registry(s).Live()
	}
	return n
}

// TotalEnergy sums the energy of live animals of the given species, or of
// both when species is empty.
func (w *World) TotalEnergy(species ...components.Species) float64 {
	if len(species) == 0 {
		species = components.AllSpecies()
	}
	var total float64
	for _, s := range species {
		total += w.registry(s).TotalEnergy()
	}
	return total
}

// Groups returns the live herds or prides in row-major cell order.
func (w *World) Groups(species components.Species) []*Group {
	var out []*Group
	for _, c := range w.cells {
		g := c.herd
		if species == components.Carviz {
			g = c.pride
		}
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}

// Days returns the number of days simulated so far, day 0 included.
func (w *World) Days() int { return len(w.snapshots) }

// Extinct reports whether the world has hit total extinction.
func (w *World) Extinct() bool { return w.extinct }

// Day returns the snapshot of day index, simulating every day up to it that
// has not run yet. Replaying a simulated day returns a copy of the cached
// snapshot and ignores iv. New interventions apply to the first newly
// simulated day. Callers own the returned snapshot.
//
// Once the population reaches zero on a day after day 0, Day returns that
// day's snapshot with ErrTotalExtinction, and later days are refused.
func (w *World) Day(index int, iv *Interventions) (*Snapshot, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: negative day %d", ErrInvalidState, index)
	}
	if index < len(w.snapshots) {
		return w.snapshots[index].Clone(), nil
	}
	if w.extinct {
		last := len(w.snapshots) - 1
		return w.snapshots[last].Clone(), fmt.Errorf("day %d: world died out on day %d: %w", index, last, ErrTotalExtinction)
	}

	for d := len(w.snapshots); d <= index; d++ {
		w.day = d
		w.timer.StartDay()
		w.timer.StartPhase(telemetry.PhaseInterventions)
		if iv != nil {
			w.apply(iv)
			iv = nil
		}
		w.step(d)

		w.timer.StartPhase(telemetry.PhaseSnapshot)
		snap := w.snapshot(d)
		w.snapshots = append(w.snapshots, snap)
		w.timer.EndDay()

		if w.TotalAnimals() == 0 {
			w.extinct = true
			slog.Info("total_extinction", "day", d, "deaths", w.deaths)
			return snap.Clone(), fmt.Errorf("day %d: %w", d, ErrTotalExtinction)
		}
	}
	return w.snapshots[index].Clone(), nil
}

// step runs the two phases of one day.
func (w *World) step(day int) {
	w.timer.StartPhase(telemetry.PhaseCompaction)
	w.maybeCompact()

	w.timer.StartPhase(telemetry.PhaseGrowth)
	for _, c := range w.cells {
		if c.vegetob != nil {
			c.vegetob.Grow(w.cfg.Vegetob)
		}
	}
	for _, s := range components.AllSpecies() {
		for _, e := range w.registry(s).Entities() {
			w.growAnimal(s, e)
		}
	}

	w.timer.StartPhase(telemetry.PhaseMovement)

	// Groups are captured first so one that moves ahead in the
	// sweep is not processed twice.
	type turn struct {
		g    *Group
		herd bool
	}
	var turns []turn
	for _, c := range w.cells {
		if c.herd != nil {
			turns = append(turns, turn{c.herd, true})
		}
		if c.pride != nil {
			turns = append(turns, turn{c.pride, false})
		}
	}
	for _, t := range turns {
		if !t.g.active() {
			continue
		}
		if t.herd {
			w.herdTurn(t.g, day)
		} else {
			w.prideTurn(t.g, day)
		}
	}

	// Hunts and fights later in the sweep leave dead handles behind
	for _, g := range w.groups {
		g.prune(w)
	}
}

// maybeCompact compacts a registry once its dead outnumber the living and
// pass the configured threshold.
func (w *World) maybeCompact() {
	threshold := w.cfg.Registry.CompactThreshold
	for _, s := range components.AllSpecies() {
		reg := w.registry(s)
		if reg.Dead() >= threshold && reg.Dead() >= reg.Live() {
			w.compact(s)
		}
	}
}

// Compact removes every dead animal from both registries. Live animals and
// group membership are unaffected.
func (w *World) Compact() int {
	n := 0
	for _, s := range components.AllSpecies() {
		n += w.compact(s)
	}
	return n
}

func (w *World) compact(s components.Species) int {
	reg := w.registry(s)
	removed := reg.Compact()
	for _, g := range w.groups {
		if g.Species == s {
			g.prune(w)
		}
	}
	slog.Debug("registry_compacted", "species", s.String(), "removed", removed, "live", reg.Live(), "day", w.day)
	return removed
}
