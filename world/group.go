package world

import (
	"maps"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/systems"
)

// TrackPoint is one entry of a tracked group's path.
type TrackPoint struct {
	Day  int
	X, Y int
}

// Group is a herd (Erbast) or a pride (Carviz).
//
// Members are non-owning handles into the species registry. An animal that
// dies or secedes only lowers the live count; its handle stays listed until
// the next prune, so a departure costs O(1). Memory maps a cell index to a
// remembered value: vegetation density for a herd, rival herd energy for a
// pride.
type Group struct {
	ID      uint64
	Species components.Species

	pos      *Cell
	members  []ecs.Entity
	live     int
	memory   map[int]float64
	tracked  bool
	path     []TrackPoint
	absorbed bool
}

// Pos returns the cell the group occupies, nil once abandoned or absorbed.
func (g *Group) Pos() *Cell { return g.pos }

// Len returns the number of live members.
func (g *Group) Len() int { return g.live }

// Members returns the handles of the live members in join order.
func (g *Group) Members(w *World) []ecs.Entity {
	reg := w.registry(g.Species)
	out := make([]ecs.Entity, 0, g.live)
	for _, e := range g.members {
		if g.isMember(reg, e) {
			out = append(out, e)
		}
	}
	return out
}

// Memory returns a copy of the group's memory.
func (g *Group) Memory() map[int]float64 { return maps.Clone(g.memory) }

// Tracked reports whether the group's path is being recorded.
func (g *Group) Tracked() bool { return g.tracked }

// Path returns the recorded path of a tracked group.
func (g *Group) Path() []TrackPoint { return slices.Clone(g.path) }

// active reports whether the group still occupies a cell.
func (g *Group) active() bool { return !g.absorbed && g.pos != nil }

// newGroup registers an empty group. The caller attaches it to a cell.
func (w *World) newGroup(species components.Species) *Group {
	w.nextGroupID++
	g := &Group{
		ID:      w.nextGroupID,
		Species: species,
		memory:  make(map[int]float64),
	}
	w.groups[g.ID] = g
	return g
}

// settle puts animal e into the group of its species on cell c, founding a
// new group there if the cell has none. A founded group inherits origin's
// tracking.
func (w *World) settle(species components.Species, e ecs.Entity, c *Cell, origin *Group) *Group {
	g := c.herd
	if species == components.Carviz {
		g = c.pride
	}
	if g == nil {
		g = w.newGroup(species)
		if origin != nil && origin.tracked {
			g.tracked = true
			g.path = slices.Clone(origin.path)
		}
		if species == components.Erbast {
			c.AttachHerd(w, g)
		} else {
			c.AttachPride(w, g)
		}
	}
	if g == origin {
		g.rejoin(w, e)
	} else {
		g.add(w, e)
	}
	return g
}

// add appends a handle and moves the animal onto the group's cell.
func (g *Group) add(w *World, e ecs.Entity) {
	g.members = append(g.members, e)
	g.rejoin(w, e)
}

// rejoin relinks an animal whose handle is still listed, as after a
// secession that ends back in the same group.
func (g *Group) rejoin(w *World, e ecs.Entity) {
	reg := w.registry(g.Species)
	reg.Membership(e).Group = g.ID
	g.live++
	if g.pos != nil {
		*reg.Position(e) = components.Position{X: g.pos.X, Y: g.pos.Y}
	}
}

// leave records that a member died or seceded. The caller has already
// unlinked its membership. An emptied group is left for abandonIfEmpty.
func (g *Group) leave() {
	g.live--
}

// isMember reports whether a listed handle is a live animal still linked to g.
func (g *Group) isMember(reg *Registry, e ecs.Entity) bool {
	return reg.Alive(e) && reg.Membership(e).Group == g.ID
}

// prune drops handles of animals that died or left.
func (g *Group) prune(w *World) {
	reg := w.registry(g.Species)
	g.members = slices.DeleteFunc(g.members, func(e ecs.Entity) bool {
		return !g.isMember(reg, e)
	})
	g.live = len(g.members)
}

func (g *Group) liveCount() int { return g.live }

// Energy returns the summed energy of the live members.
func (g *Group) Energy(w *World) float64 {
	reg := w.registry(g.Species)
	var total float64
	for _, e := range g.members {
		if g.isMember(reg, e) {
			total += reg.Vitals(e).Energy
		}
	}
	return total
}

func (g *Group) meanAttitude(w *World) float64 {
	reg := w.registry(g.Species)
	var sum float64
	n := 0
	for _, e := range g.members {
		if g.isMember(reg, e) {
			sum += reg.Vitals(e).SocialAttitude
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Champion returns the live member with the most energy. Dead handles are
// pruned first; ties go to the earliest member.
func (g *Group) Champion(w *World) (ecs.Entity, bool) {
	g.prune(w)
	if len(g.members) == 0 {
		return ecs.Entity{}, false
	}
	reg := w.registry(g.Species)
	best := g.members[0]
	bestEnergy := reg.Vitals(best).Energy
	for _, e := range g.members[1:] {
		if en := reg.Vitals(e).Energy; en > bestEnergy {
			best, bestEnergy = e, en
		}
	}
	return best, true
}

// AddEnergy spreads total over the members with a random partition. No
// member is raised above the share cap; what does not fit rolls over to the
// next member, and whatever is left after the last one is lost.
func (g *Group) AddEnergy(w *World, total float64) {
	g.prune(w)
	if len(g.members) == 0 || total <= 0 {
		return
	}
	reg := w.registry(g.Species)
	limit := w.cfg.Animals.MaxShare
	shares := systems.Partition(w.rng, total, len(g.members), math.Inf(1))

	extra := 0.0
	for i, e := range g.members {
		v := reg.Vitals(e)
		en := shares[i] + extra
		give := min(en, max(0, limit-v.Energy))
		extra = en - give
		v.Energy += give
	}
}

// join moves every member of src into dst and merges memories. On a key
// collision either side's value is kept with even odds. src is discarded.
func (w *World) join(dst, src *Group) {
	if dst == src {
		return
	}
	reg := w.registry(src.Species)
	for _, e := range src.members {
		if src.isMember(reg, e) {
			dst.add(w, e)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(src.memory)) {
		if _, ok := dst.memory[k]; ok && w.rng.Float64() < 0.5 {
			continue
		}
		dst.memory[k] = src.memory[k]
	}
	if src.tracked && !dst.tracked {
		dst.tracked = true
		dst.path = src.path
	}

	src.members = nil
	src.live = 0
	src.absorbed = true
	w.abandon(src)
}

// abandon unlinks a group from its cell and the group table.
func (w *World) abandon(g *Group) {
	if c := g.pos; c != nil {
		if c.herd == g {
			c.DetachHerd()
		}
		if c.pride == g {
			c.DetachPride()
		}
	}
	g.pos = nil
	delete(w.groups, g.ID)
}

// abandonIfEmpty abandons g once its last member is gone.
func (w *World) abandonIfEmpty(g *Group) {
	if g.live == 0 {
		w.abandon(g)
	}
}

// forget drops entries at or below floor and halves the rest.
func (g *Group) forget(floor float64) {
	for k, v := range g.memory {
		if v <= floor {
			delete(g.memory, k)
		} else {
			g.memory[k] = v / 2
		}
	}
}

// bestMemory returns the remembered cell with the highest value, lowest
// index on ties.
func (g *Group) bestMemory() (int, bool) {
	best, found := 0, false
	bestValue := math.Inf(-1)
	for _, k := range slices.Sorted(maps.Keys(g.memory)) {
		if v := g.memory[k]; v > bestValue {
			best, bestValue, found = k, v, true
		}
	}
	return best, found
}

func (g *Group) record(day int) {
	if g.tracked && g.pos != nil {
		g.path = append(g.path, TrackPoint{Day: day, X: g.pos.X, Y: g.pos.Y})
	}
}
