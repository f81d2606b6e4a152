package world

import (
	"errors"
	"testing"

	"github.com/pthm-cable/planisuss/components"
)

func TestTerraform(t *testing.T) {
	w := emptyWorld(t, 5)
	c := w.Cell(2, 2)
	spawnErbast(w, c, 300)
	spawnCarviz(w, c, 80, 0.5)

	w.apply(&Interventions{Terraform: []Terraform{{X: 2, Y: 2, Water: true}}})

	if !c.Water() || c.Vegetob() != nil || c.Herd() != nil || c.Pride() != nil {
		t.Fatal("flooded cell kept its contents")
	}
	if w.Terrain().IsLand(c.coord()) || w.Terrain().LandCount() != 24 {
		t.Errorf("land mask not updated: %d land cells", w.Terrain().LandCount())
	}
	for _, s := range components.AllSpecies() {
		if n := w.Deaths().Count(s, components.Drowned); n != 1 {
			t.Errorf("%s drowned = %d, want 1", s, n)
		}
		if w.registry(s).Live() != 0 {
			t.Errorf("%s: drowned animals left offspring", s)
		}
	}
	if err := c.SpawnVegetation(10); !errors.Is(err, ErrWaterCell) {
		t.Errorf("SpawnVegetation on water error = %v, want ErrWaterCell", err)
	}

	w.apply(&Interventions{Terraform: []Terraform{{X: 2, Y: 2, Water: false}}})
	if c.Water() || c.Vegetob() == nil {
		t.Error("drained cell has no vegetation")
	}
	if !w.Terrain().IsLand(c.coord()) || w.Terrain().LandCount() != 25 {
		t.Errorf("land mask not restored: %d land cells", w.Terrain().LandCount())
	}

	// Off-grid edits are ignored
	w.apply(&Interventions{Terraform: []Terraform{{X: 9, Y: 9, Water: true}}})
}

func TestBomb(t *testing.T) {
	w := emptyWorld(t, 7)
	inside := w.Cell(3, 4)
	outside := w.Cell(0, 0)
	spawnErbast(w, inside, 300)
	spawnErbast(w, outside, 300)

	w.apply(&Interventions{Bombs: []Bomb{{X: 3, Y: 3, Radius: 1}}})

	for _, c := range w.Neighbors(w.Cell(3, 3), 1, AnyCell) {
		if c.Vegetob().Density() != 0 {
			t.Errorf("(%d,%d) vegetation survived the bomb", c.X, c.Y)
		}
	}
	if inside.Herd() != nil {
		t.Error("herd inside the blast survived")
	}
	if outside.Herd() == nil || outside.Vegetob().Density() == 0 {
		t.Error("bomb reached outside its radius")
	}
	if n := w.Deaths().Count(components.Erbast, components.Bomb); n != 1 {
		t.Errorf("bomb deaths = %d, want 1", n)
	}

	// Suppressed vegetation reseeds on the next growth
	v := w.Cell(3, 3).Vegetob()
	v.Grow(w.cfg.Vegetob)
	if v.Density() != w.cfg.Vegetob.ReseedDensity {
		t.Errorf("density after regrowth = %g, want %g", v.Density(), w.cfg.Vegetob.ReseedDensity)
	}
}

func TestRevive(t *testing.T) {
	w := emptyWorld(t, 4)
	w.cells[0].water = true
	w.cells[0].vegetob = nil

	w.apply(&Interventions{Revive: []components.Species{components.Erbast}})
	if got := w.TotalAnimals(components.Erbast); got != 15 {
		t.Errorf("revived erbasts = %d, want one per land cell (15)", got)
	}
	if w.cells[0].Herd() != nil {
		t.Error("revive put a herd on water")
	}

	w.cfg.Carviz.SpawnChance = 1
	w.apply(&Interventions{Revive: []components.Species{components.Carviz}})
	if got := w.TotalAnimals(components.Carviz); got != 15 {
		t.Errorf("revived carvizes = %d, want 15 at spawn chance 1", got)
	}
	checkConsistency(t, w)
}

func TestTracking(t *testing.T) {
	w := emptyWorld(t, 6)
	c := w.Cell(2, 2)
	c.vegetob.density = 100
	// Hungrier than the cell is rich: the herd stays and grazes
	spawnErbast(w, c, 30)
	spawnErbast(w, w.Cell(5, 5), 500)
	herd := c.Herd()

	snap, err := w.Day(3, &Interventions{Track: []Track{{X: 2, Y: 2}}})
	if err != nil {
		t.Fatalf("Day(3) failed: %v", err)
	}

	var tracked []*Group
	for _, g := range w.Groups(components.Erbast) {
		if g.Tracked() {
			tracked = append(tracked, g)
		}
	}
	if len(tracked) == 0 {
		t.Fatal("no tracked herd after Track")
	}
	if len(snap.Paths) != len(tracked) {
		t.Errorf("snapshot has %d paths, want %d", len(snap.Paths), len(tracked))
	}
	path := tracked[0].Path()
	if len(path) < 2 || path[0].Day != 1 || path[0].X != 2 || path[0].Y != 2 {
		t.Errorf("path = %+v, want it to start at (2,2) on day 1", path)
	}
	if !herd.Tracked() || herd.Pos() != c {
		t.Error("grazing herd lost its tracking or moved")
	}
	if len(path) != 4 {
		t.Errorf("path has %d points, want toggle + days 1..3", len(path))
	}

	snap, err = w.Day(4, &Interventions{CancelTracking: true})
	if err != nil {
		t.Fatalf("Day(4) failed: %v", err)
	}
	if len(snap.Paths) != 0 {
		t.Errorf("snapshot has %d paths after cancel", len(snap.Paths))
	}
}

func TestSpawnVegetation(t *testing.T) {
	w := emptyWorld(t, 3)
	land := w.Cell(0, 0)
	if err := land.SpawnVegetation(10); !errors.Is(err, ErrHasVegetation) || !errors.Is(err, ErrInvalidState) {
		t.Errorf("SpawnVegetation on a vegetated cell error = %v, want ErrHasVegetation", err)
	}

	land.vegetob = nil
	if err := land.SpawnVegetation(150); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SpawnVegetation(150) error = %v, want ErrInvalidState", err)
	}
	if err := land.SpawnVegetation(40); err != nil || land.Vegetob().Density() != 40 {
		t.Errorf("SpawnVegetation(40) = %v, density %g", err, land.Vegetob().Density())
	}
}

func TestBomb_SkipsMembersAlreadyDead(t *testing.T) {
	w := emptyWorld(t, 4)
	c := w.Cell(1, 1)
	dead := spawnErbast(w, c, 40)
	spawnErbast(w, c, 40)
	if err := w.Kill(components.Erbast, dead, components.HuntedDown); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}

	w.apply(&Interventions{Bombs: []Bomb{{X: 1, Y: 1}}})

	tests := []struct {
		reason components.DeathReason
		want   int
	}{
		{components.HuntedDown, 1},
		{components.Bomb, 1},
	}
	for _, tt := range tests {
		if n := w.Deaths().Count(components.Erbast, tt.reason); n != tt.want {
			t.Errorf("%s deaths = %d, want %d", tt.reason, n, tt.want)
		}
	}
	if c.Herd() != nil || w.erbasts.Live() != 0 {
		t.Error("bombed cell still holds a herd")
	}
}
