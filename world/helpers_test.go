package world

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/config"
)

// emptyWorld returns an all-land world with no animals. Starvation is
// disabled so hand-placed animals only die when a test kills them.
func emptyWorld(t *testing.T, size int) *World {
	t.Helper()
	cfg := config.Default()
	cfg.World.Size = size
	cfg.Carviz.SpawnChance = 0
	cfg.Animals.StarvationThreshold = 0
	cfg.ComputeDerived()

	w, err := NewWithConfig(cfg, 1)
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}

	w.erbasts = NewRegistry(components.Erbast)
	w.carvizes = NewRegistry(components.Carviz)
	w.groups = make(map[uint64]*Group)
	for i, c := range w.cells {
		w.terrain.Land[i] = true
		c.herd, c.pride = nil, nil
		c.water = false
		if c.vegetob == nil {
			c.vegetob = &Vegetob{density: 50}
		}
	}
	return w
}

func spawnErbast(w *World, c *Cell, energy float64) ecs.Entity {
	e := w.erbasts.Spawn(components.Vitals{
		Energy:         energy,
		Lifetime:       100,
		SocialAttitude: 0.5,
	}, components.Position{X: c.X, Y: c.Y}, 0)
	w.settle(components.Erbast, e, c, nil)
	return e
}

func spawnCarviz(w *World, c *Cell, energy, attitude float64) ecs.Entity {
	e := w.carvizes.Spawn(components.Vitals{
		Energy:         energy,
		Lifetime:       100,
		SocialAttitude: attitude,
	}, components.Position{X: c.X, Y: c.Y}, 0)
	w.settle(components.Carviz, e, c, nil)
	return e
}

// looseGroup builds a group that is not on any cell yet.
func looseGroup(w *World, species components.Species, energy, attitude float64) (*Group, ecs.Entity) {
	g := w.newGroup(species)
	e := w.registry(species).Spawn(components.Vitals{
		Energy:         energy,
		Lifetime:       100,
		SocialAttitude: attitude,
	}, components.Position{}, 0)
	g.add(w, e)
	return g, e
}

// checkConsistency asserts the structural invariants that must hold
// between days.
func checkConsistency(t *testing.T, w *World) {
	t.Helper()
	for _, s := range components.AllSpecies() {
		reg := w.registry(s)
		live := 0
		for _, e := range reg.Entities() {
			if !reg.Alive(e) {
				continue
			}
			live++
			if v := reg.Vitals(e); v.Energy <= 0 {
				t.Errorf("day %d: live %s with energy %g", w.day, s, v.Energy)
			}
			if reg.Membership(e).Group == 0 {
				t.Errorf("day %d: live %s outside any group", w.day, s)
			}
		}
		if live != reg.Live() {
			t.Errorf("day %d: %s live counter %d, counted %d", w.day, s, reg.Live(), live)
		}

		inGroups := 0
		for _, g := range w.Groups(s) {
			if g.Len() == 0 {
				t.Errorf("day %d: empty %s group %d left on a cell", w.day, s, g.ID)
			}
			if g.Len() != len(g.members) {
				t.Errorf("day %d: %s group %d counts %d live, lists %d", w.day, s, g.ID, g.Len(), len(g.members))
			}
			if g.pos == nil || g.pos.water {
				t.Errorf("day %d: %s group %d not on land", w.day, s, g.ID)
				continue
			}
			for _, e := range g.members {
				inGroups++
				if !reg.Alive(e) {
					t.Errorf("day %d: dead handle in %s group %d", w.day, s, g.ID)
					continue
				}
				if got := reg.Membership(e).Group; got != g.ID {
					t.Errorf("day %d: member of group %d points at %d", w.day, g.ID, got)
				}
				if p := reg.Position(e); p.X != g.pos.X || p.Y != g.pos.Y {
					t.Errorf("day %d: member at (%d,%d), group at (%d,%d)", w.day, p.X, p.Y, g.pos.X, g.pos.Y)
				}
			}
		}
		if inGroups != reg.Live() {
			t.Errorf("day %d: %d %s in groups, %d alive", w.day, inGroups, s, reg.Live())
		}
	}
}
