package world

import (
	"slices"

	"github.com/pthm-cable/planisuss/components"
)

// sensePride refreshes a pride's memory with the herd energy it can see.
// A remembered cell whose herd has gone reads zero.
func (w *World) sensePride(g *Group) {
	g.forget(w.cfg.Carviz.MemoryFloor)
	for _, c := range w.Neighbors(g.pos, w.cfg.Derived.PrideSensing, LandOnly) {
		k := c.index(w.size)
		if c.herd != nil {
			g.memory[k] = c.herd.Energy(w)
		} else if _, ok := g.memory[k]; ok {
			g.memory[k] = 0
		}
	}
}

// prideTurn runs a pride's movement phase. A pride sharing its cell with a
// herd hunts; otherwise it steps along land toward the richest remembered
// herd, or toward a random land cell when it remembers none. Moving onto
// another pride joins or fights it. Surviving members then decide whether to
// follow.
func (w *World) prideTurn(g *Group, day int) {
	w.sensePride(g)

	from := g.pos
	members := slices.Clone(g.members)
	pride := g

	if from.herd != nil {
		w.hunt(g, from.herd)
	} else {
		var goal *Cell
		if best, ok := g.bestMemory(); ok {
			goal = w.cells[best]
		} else if options := w.Neighbors(from, w.cfg.Derived.PrideSensing, LandOnly); len(options) > 0 {
			goal = options[w.rng.IntN(len(options))]
		}
		if goal != nil {
			if target := w.stepToward(from, goal, w.Adjacent(from, LandOnly)); target != from {
				from.DetachPride()
				pride = target.AttachPride(w, g)
			}
		}
	}

	if pride == nil {
		return
	}
	for _, e := range members {
		if !pride.active() {
			break
		}
		w.chooseCarviz(pride, e, from)
	}
	if pride.active() {
		pride.prune(w)
		pride.record(day)
	}
}

// hunt pits a pride against the champion of the herd on its cell.
//
// The hunt succeeds when prey.energy*a < pride.energy*b for uniform a and b.
// A kill feeds the prey's energy to the pride. A miss costs the pride's
// champion the prey's energy, and the pride tries again while it is still
// stronger than the herd's champion.
func (w *World) hunt(pride, herd *Group) {
	for range w.cfg.Groups.HuntMaxAttempts {
		prey, ok := herd.Champion(w)
		if !ok || !pride.active() {
			return
		}
		preyEnergy := w.erbasts.Vitals(prey).Energy

		a, b := w.rng.Float64(), w.rng.Float64()
		success := preyEnergy*a < pride.Energy(w)*b
		w.observer.RecordHunt(success)

		if success {
			pride.AddEnergy(w, preyEnergy)
			w.tryKill(components.Erbast, prey, components.HuntedDown)
			return
		}

		champ, ok := pride.Champion(w)
		if !ok {
			return
		}
		v := w.carvizes.Vitals(champ)
		v.Energy -= preyEnergy
		if v.Energy <= 0 {
			w.tryKill(components.Carviz, champ, components.Injured)
		}

		next, ok := herd.Champion(w)
		if !ok || !pride.active() || pride.Energy(w) <= w.erbasts.Vitals(next).Energy {
			return
		}
	}
}

// fight resolves a collision between the resident pride a and the newcomer b
// on a's cell. Each round the stronger champion takes half the weaker's
// energy and the weaker loses half the stronger's; ties favor a. The fight
// ends when a pride is wiped out. If the round budget runs out first the two
// prides join. It returns the pride left on the cell.
func (w *World) fight(a, b *Group) *Group {
	cell := a.pos
	w.observer.RecordFight()

	for range w.cfg.Groups.FightMaxRounds {
		ca, okA := a.Champion(w)
		cb, okB := b.Champion(w)
		if !okA || !okB {
			break
		}
		strong, weak := w.carvizes.Vitals(ca), w.carvizes.Vitals(cb)
		loser := cb
		if weak.Energy > strong.Energy {
			strong, weak = weak, strong
			loser = ca
		}

		strongEnergy, weakEnergy := strong.Energy, weak.Energy
		strong.Energy += weakEnergy / 2
		weak.Energy -= strongEnergy / 2
		if weak.Energy <= 0 {
			w.tryKill(components.Carviz, loser, components.Fight)
		}
	}

	a.prune(w)
	b.prune(w)
	switch {
	case a.live > 0 && b.live > 0:
		w.join(a, b)
		return a
	case a.live > 0:
		w.abandon(b)
		return a
	case b.live > 0:
		w.abandon(a)
		cell.pride = b
		b.pos = cell
		return b
	}
	w.abandon(a)
	w.abandon(b)
	return nil
}

// PrideAt returns the pride on a cell, if any.
func (w *World) PrideAt(x, y int) *Group {
	if c := w.Cell(x, y); c != nil {
		return c.pride
	}
	return nil
}
