package world

import (
	"fmt"

	"github.com/pthm-cable/planisuss/config"
	"github.com/pthm-cable/planisuss/systems"
)

// Vegetob is the vegetation patch of a land cell.
type Vegetob struct {
	density float64
}

// NewVegetob creates a patch with the given density in [0,100].
func NewVegetob(density float64) (*Vegetob, error) {
	if density < 0 || density > 100 {
		return nil, fmt.Errorf("%w: vegetob density %g outside [0,100]", ErrInvalidState, density)
	}
	return &Vegetob{density: density}, nil
}

// Density returns the current density.
func (v *Vegetob) Density() float64 { return v.density }

// Grow advances the patch by one day.
func (v *Vegetob) Grow(cfg config.VegetobConfig) {
	v.density = systems.GrowDensity(v.density, cfg.MaxDensity, cfg.GrowthDivisor, cfg.ReseedDensity)
}

// Suppress wipes the patch out. It reseeds on the next Grow.
func (v *Vegetob) Suppress() { v.density = 0 }

// consume removes up to amount and returns what was actually eaten.
func (v *Vegetob) consume(amount float64) float64 {
	eaten := min(amount, v.density)
	v.density -= eaten
	return eaten
}

// Cell is one tile of the grid.
//
// A water cell holds nothing. A land cell always holds a Vegetob and at most
// one herd and one pride, each pointing back at the cell.
type Cell struct {
	X, Y int

	water   bool
	vegetob *Vegetob
	herd    *Group
	pride   *Group
}

func (c *Cell) coord() systems.Coord { return systems.Coord{X: c.X, Y: c.Y} }

// Water reports whether the cell is water.
func (c *Cell) Water() bool { return c.water }

// Vegetob returns the cell's vegetation, nil on water.
func (c *Cell) Vegetob() *Vegetob { return c.vegetob }

// Herd returns the herd occupying the cell, if any.
func (c *Cell) Herd() *Group { return c.herd }

// Pride returns the pride occupying the cell, if any.
func (c *Cell) Pride() *Group { return c.pride }

// density returns the vegetation density, 0 on water.
func (c *Cell) density() float64 {
	if c.vegetob == nil {
		return 0
	}
	return c.vegetob.density
}

// SpawnVegetation plants a new patch on a land cell without one.
func (c *Cell) SpawnVegetation(density float64) error {
	if c.water {
		return fmt.Errorf("spawn vegetation at (%d,%d): %w", c.X, c.Y, ErrWaterCell)
	}
	if c.vegetob != nil {
		return fmt.Errorf("spawn vegetation at (%d,%d): %w", c.X, c.Y, ErrHasVegetation)
	}
	v, err := NewVegetob(density)
	if err != nil {
		return err
	}
	c.vegetob = v
	return nil
}

// AttachHerd makes g the cell's herd, or merges it into the herd already there.
// It returns the herd that now occupies the cell.
func (c *Cell) AttachHerd(w *World, g *Group) *Group {
	if c.herd != nil && c.herd != g {
		w.join(c.herd, g)
		return c.herd
	}
	c.herd = g
	g.pos = c
	return g
}

// AttachPride makes g the cell's pride. If a pride is already there the two
// join when their summed mean attitude is high enough, and fight otherwise.
// It returns the pride that now occupies the cell, which may be nil if both
// were wiped out.
func (c *Cell) AttachPride(w *World, g *Group) *Group {
	resident := c.pride
	if resident == nil || resident == g {
		c.pride = g
		g.pos = c
		return g
	}

	if resident.meanAttitude(w)+g.meanAttitude(w) > w.cfg.Carviz.JoinAttitude {
		w.join(resident, g)
		return resident
	}

	// The newcomer stands on the cell while it fights for it
	g.pos = c
	return w.fight(resident, g)
}

// DetachHerd clears the herd occupant.
func (c *Cell) DetachHerd() {
	c.herd = nil
}

// DetachPride clears the pride occupant.
func (c *Cell) DetachPride() {
	c.pride = nil
}

// Population returns the number of live animals in the cell's herd and pride.
func (c *Cell) Population(w *World) int {
	n := 0
	if c.herd != nil {
		n += c.herd.liveCount()
	}
	if c.pride != nil {
		n += c.pride.liveCount()
	}
	return n
}

func (c *Cell) index(size int) int { return c.coord().Index(size) }
