package world

import "slices"

// senseHerd refreshes a herd's memory with the vegetation it can see.
func (w *World) senseHerd(g *Group) {
	g.forget(w.cfg.Erbast.MemoryFloor)
	for _, c := range w.Neighbors(g.pos, w.radius, LandOnly) {
		g.memory[c.index(w.size)] = c.density()
	}
}

// herdTurn runs a herd's movement phase: refresh memory, then either step
// toward the richest remembered cell or stay and graze. Every member then
// decides whether to follow.
func (w *World) herdTurn(g *Group, day int) {
	w.senseHerd(g)

	from := g.pos
	target := from
	if from.density() < g.Energy(w) && len(g.memory) > 0 {
		best, _ := g.bestMemory()
		target = w.stepToward(from, w.cells[best], w.Neighbors(from, w.radius, LandOnly))
	}

	members := slices.Clone(g.members)
	herd := g
	if target != from {
		from.DetachHerd()
		herd = target.AttachHerd(w, g)
	} else {
		w.graze(g)
	}

	for _, e := range members {
		if !herd.active() {
			break
		}
		w.chooseErbast(herd, e, from)
	}
	if herd.active() {
		herd.prune(w)
		herd.record(day)
	}
}

// graze feeds every member an even bite of the cell's vegetation.
func (w *World) graze(g *Group) {
	g.prune(w)
	n := len(g.members)
	if n == 0 || g.pos.vegetob == nil {
		return
	}
	bite := min(1, g.pos.vegetob.density/float64(n))
	gain := w.cfg.Erbast.GrazeGain * bite
	for _, e := range g.members {
		w.erbasts.Vitals(e).Energy += gain
	}
	g.pos.vegetob.consume(float64(n) * bite)
}

// stepToward picks the candidate closest to goal, or stays put once the goal
// is within one step. Ties go to the first candidate.
func (w *World) stepToward(from, goal *Cell, candidates []*Cell) *Cell {
	if w.Distance(from, goal) <= 1 || len(candidates) == 0 {
		return from
	}
	best := candidates[0]
	bestDist := w.Distance(best, goal)
	for _, c := range candidates[1:] {
		if d := w.Distance(c, goal); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// HerdAt returns the herd on a cell, if any.
func (w *World) HerdAt(x, y int) *Group {
	if c := w.Cell(x, y); c != nil {
		return c.herd
	}
	return nil
}
