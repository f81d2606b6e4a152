package world

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/systems"
)

// Kill moves a live animal to the graveyard.
//
// The animal leaves its group and its death is tallied. Unless the reason is
// terminal, an animal with enough residual energy splits its energy and
// lifetime among offspring that join the group it belonged to. Killing a dead
// animal returns ErrAlreadyDead.
func (w *World) Kill(species components.Species, e ecs.Entity, reason components.DeathReason) error {
	return w.kill(species, e, reason, w.cfg.Derived.TerminalReasons[string(reason)])
}

func (w *World) kill(species components.Species, e ecs.Entity, reason components.DeathReason, terminal bool) error {
	reg := w.registry(species)
	if !reg.Exists(e) {
		return fmt.Errorf("kill %s (%s): compacted handle: %w", species, reason, ErrAlreadyDead)
	}
	v := reg.Vitals(e)
	if !v.Alive {
		prev, _ := reg.Death(e)
		return fmt.Errorf("kill %s (%s): died of %s on day %d: %w", species, reason, prev.Reason, prev.Day, ErrAlreadyDead)
	}

	parent := *v
	pos := *reg.Position(e)
	g := w.groups[reg.Membership(e).Group]

	reg.markDead(e, reason, w.day)
	w.graves[systems.Coord{X: pos.X, Y: pos.Y}.Index(w.size)] = reason
	w.deaths.Record(species, reason)
	w.observer.RecordDeath(species, reason)
	if g != nil {
		g.leave()
	}

	if !terminal && parent.Energy > w.cfg.Animals.OffspringMinEnergy {
		w.spawnOffspring(species, parent, pos, g)
	}
	if g != nil {
		w.abandonIfEmpty(g)
	}
	return nil
}

// tryKill is Kill for hunt and fight, where a prey or rival may already have
// been killed earlier in the same day.
func (w *World) tryKill(species components.Species, e ecs.Entity, reason components.DeathReason) {
	w.skipDead(species, reason, w.Kill(species, e, reason))
}

// skipDead treats ErrAlreadyDead from a kill attempt as a no-op. Any other
// failure is logged.
func (w *World) skipDead(species components.Species, reason components.DeathReason, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyDead):
		slog.Debug("kill_skipped", "species", species.String(), "reason", string(reason), "error", err)
	default:
		slog.Warn("kill_failed", "species", species.String(), "reason", string(reason), "day", w.day, "error", err)
	}
}

// spawnOffspring creates the children of a dead parent on its group's cell,
// or on the parent's own cell if it had no group.
func (w *World) spawnOffspring(species components.Species, parent components.Vitals, pos components.Position, g *Group) {
	cell := w.Cell(pos.X, pos.Y)
	if cell == nil || cell.water {
		return
	}

	sc := w.speciesConfig(species)
	k := sc.Offspring
	limit := w.cfg.Animals.MaxShare
	energies := systems.Partition(w.rng, parent.Energy*sc.EnergyMultiplier, k, limit)
	lifetimes := systems.Partition(w.rng, parent.Lifetime*float64(k), k, limit)

	reg := w.registry(species)
	for i := range k {
		w.attitude.Mu = parent.SocialAttitude
		sa := systems.Clamp(w.attitude.Rand(), w.cfg.Animals.AttitudeMin, w.cfg.Animals.AttitudeMax)

		child := reg.Spawn(components.Vitals{
			Energy:         energies[i],
			Lifetime:       lifetimes[i],
			SocialAttitude: sa,
		}, pos, 0)
		if g != nil && g.active() {
			g.add(w, child)
		} else {
			g = w.settle(species, child, cell, g)
		}
		w.observer.RecordBirth(species)
	}
}

// growAnimal ages an animal by one day and applies overage and starvation.
func (w *World) growAnimal(species components.Species, e ecs.Entity) {
	reg := w.registry(species)
	if !reg.Alive(e) {
		return
	}
	v := reg.Vitals(e)
	a := &w.cfg.Animals

	v.Age++
	for v.Energy >= a.SurplusThreshold {
		v.Energy -= a.SurplusCost
		v.Lifetime++
	}

	overage := float64(v.Age) >= v.Lifetime
	starving := w.rng.Float64()*v.Energy < a.StarvationThreshold

	switch {
	case overage:
		w.tryKill(species, e, components.Overage)
	case starving:
		w.tryKill(species, e, components.LackEnergy)
	}
}

// erbastMoveCost grows with age: older herbivores tire faster.
func (w *World) erbastMoveCost(age int, from, to *Cell) float64 {
	ec := &w.cfg.Erbast
	return ec.MoveCost * math.Pow(float64(age), ec.MoveAgeExp) * w.Distance(from, to)
}

func (w *World) carvizMoveCost(from, to *Cell) float64 {
	return w.cfg.Carviz.MoveCost * w.Distance(from, to)
}

// chooseErbast lets a member of herd decide whether to follow it from its
// previous cell or secede.
func (w *World) chooseErbast(herd *Group, e ecs.Entity, from *Cell) {
	reg := w.erbasts
	if !reg.Alive(e) {
		return
	}
	if reg.Membership(e).Group != herd.ID {
		return
	}

	v := reg.Vitals(e)
	target := herd.pos
	cost := w.erbastMoveCost(v.Age, from, target)

	favorable := target == from || target.density()*v.SocialAttitude > from.density()
	crowded := float64(herd.Len())*v.SocialAttitude >= w.cfg.Erbast.CrowdLimit

	if favorable && !crowded && v.Energy > cost {
		v.Energy -= cost
		*reg.Position(e) = components.Position{X: target.X, Y: target.Y}
		return
	}
	w.quitHerd(herd, e, from)
}

// quitHerd makes an Erbast leave its herd. A well fed secessionist wanders to
// a random adjacent land cell first. It then joins the herd it finds there or
// founds a new one.
func (w *World) quitHerd(herd *Group, e ecs.Entity, from *Cell) {
	reg := w.erbasts
	herd.leave()
	reg.Membership(e).Group = 0
	w.abandonIfEmpty(herd)
	w.observer.RecordSecession(components.Erbast)

	v := reg.Vitals(e)
	dest := from
	if v.Energy > from.density() {
		if options := w.Adjacent(from, LandOnly); len(options) > 0 {
			next := options[w.rng.IntN(len(options))]
			if cost := w.erbastMoveCost(v.Age, from, next); v.Energy > cost {
				v.Energy -= cost
				dest = next
			}
		}
	}
	w.settle(components.Erbast, e, dest, herd)
}

// chooseCarviz lets a member of pride follow it from its previous cell, or
// secede with a small probability that shrinks with social attitude.
func (w *World) chooseCarviz(pride *Group, e ecs.Entity, from *Cell) {
	reg := w.carvizes
	if !reg.Alive(e) {
		return
	}
	if reg.Membership(e).Group != pride.ID {
		return
	}

	v := reg.Vitals(e)
	if w.rng.Float64() > (1-v.SocialAttitude)/w.cfg.Carviz.QuitScale {
		v.Energy -= w.carvizMoveCost(from, pride.pos)
		if v.Energy <= 0 {
			w.tryKill(components.Carviz, e, components.LackEnergy)
			return
		}
		*reg.Position(e) = components.Position{X: pride.pos.X, Y: pride.pos.Y}
		return
	}
	w.quitPride(pride, e, from)
}

// quitPride makes a Carviz leave its pride. With enough energy it roams to a
// random land cell within sensing range, then joins or founds a pride there.
func (w *World) quitPride(pride *Group, e ecs.Entity, from *Cell) {
	reg := w.carvizes
	pride.leave()
	reg.Membership(e).Group = 0
	w.abandonIfEmpty(pride)
	w.observer.RecordSecession(components.Carviz)

	v := reg.Vitals(e)
	dest := from
	if v.Energy > w.cfg.Carviz.SecessionEnergy {
		if options := w.Neighbors(from, w.cfg.Derived.PrideSensing, LandOnly); len(options) > 0 {
			next := options[w.rng.IntN(len(options))]
			v.Energy -= w.carvizMoveCost(from, next)
			if v.Energy <= 0 {
				w.tryKill(components.Carviz, e, components.LackEnergy)
				return
			}
			dest = next
		}
	}
	w.settle(components.Carviz, e, dest, pride)
}
