package world

import (
	"log/slog"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/systems"
)

// Terraform turns a cell into water or back into land.
type Terraform struct {
	X, Y  int
	Water bool
}

// Bomb clears the square of the given radius around a cell.
type Bomb struct {
	X, Y   int
	Radius int
}

// Track toggles path recording for the herd and pride on a cell.
type Track struct {
	X, Y int
}

// Interventions are exogenous edits applied at the start of a day, before
// growth. All fields are optional.
type Interventions struct {
	Terraform      []Terraform
	Bombs          []Bomb
	Revive         []components.Species
	Track          []Track
	CancelTracking bool
}

func (iv *Interventions) empty() bool {
	return len(iv.Terraform) == 0 && len(iv.Bombs) == 0 && len(iv.Revive) == 0 &&
		len(iv.Track) == 0 && !iv.CancelTracking
}

// apply runs every intervention in a fixed order.
func (w *World) apply(iv *Interventions) {
	if iv.empty() {
		return
	}
	if iv.CancelTracking {
		for _, g := range w.trackedGroups() {
			g.tracked = false
			g.path = nil
		}
	}
	for _, t := range iv.Terraform {
		w.terraform(t)
	}
	for _, b := range iv.Bombs {
		w.bomb(b)
	}
	for _, s := range iv.Revive {
		w.revive(s)
	}
	for _, t := range iv.Track {
		w.toggleTrack(t)
	}

	slog.Info("intervention_applied",
		"day", w.day,
		"terraform", len(iv.Terraform),
		"bombs", len(iv.Bombs),
		"revive", len(iv.Revive),
		"track", len(iv.Track),
		"cancel_tracking", iv.CancelTracking,
	)
}

func (w *World) terraform(t Terraform) {
	c := w.Cell(t.X, t.Y)
	if c == nil {
		slog.Warn("terraform_out_of_bounds", "x", t.X, "y", t.Y)
		return
	}
	if c.water == t.Water {
		return
	}
	w.terrain.Land[c.index(w.size)] = !t.Water
	if t.Water {
		w.killOccupants(c, components.Drowned)
		c.vegetob = nil
		c.water = true
		return
	}
	c.water = false
	if err := c.SpawnVegetation(w.rng.Float64() * w.cfg.Vegetob.MaxDensity); err != nil {
		slog.Error("terraform_vegetation", "x", t.X, "y", t.Y, "error", err)
	}
}

func (w *World) bomb(b Bomb) {
	if !(systems.Coord{X: b.X, Y: b.Y}).InBounds(w.size) {
		slog.Warn("bomb_out_of_bounds", "x", b.X, "y", b.Y)
		return
	}
	for _, c := range w.Neighbors(w.Cell(b.X, b.Y), max(b.Radius, 0), LandOnly) {
		c.vegetob.Suppress()
		w.killOccupants(c, components.Bomb)
	}
}

// killOccupants kills every member of the cell's herd and pride. Nobody
// leaves offspring, whatever the configured terminal reasons.
func (w *World) killOccupants(c *Cell, reason components.DeathReason) {
	for _, g := range []*Group{c.herd, c.pride} {
		if g == nil {
			continue
		}
		for _, e := range g.Members(w) {
			w.skipDead(g.Species, reason, w.kill(g.Species, e, reason, true))
		}
		w.abandon(g)
	}
}

// revive reseeds a species across every land cell, as at generation.
func (w *World) revive(s components.Species) {
	for _, c := range w.cells {
		if c.water {
			continue
		}
		switch s {
		case components.Erbast:
			w.seedHerd(c)
		case components.Carviz:
			if w.rng.Float64() < w.cfg.Carviz.SpawnChance {
				w.seedPride(c)
			}
		}
	}
}

func (w *World) toggleTrack(t Track) {
	c := w.Cell(t.X, t.Y)
	if c == nil {
		return
	}
	for _, g := range []*Group{c.herd, c.pride} {
		if g == nil {
			continue
		}
		if g.tracked {
			g.tracked = false
			g.path = nil
			continue
		}
		g.tracked = true
		g.path = []TrackPoint{{Day: w.day, X: c.X, Y: c.Y}}
	}
}

func (w *World) trackedGroups() []*Group {
	var out []*Group
	for _, c := range w.cells {
		for _, g := range []*Group{c.herd, c.pride} {
			if g != nil && g.tracked {
				out = append(out, g)
			}
		}
	}
	return out
}
