package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
)

// Registry owns every animal of one species.
//
// Animals are ark entities; groups keep the entity handles and resolve them
// here. Dead animals stay resolvable until Compact removes them, so their
// Death marker can still be read. Handles are generation-tagged, so a
// compacted handle never aliases a newer animal.
type Registry struct {
	species components.Species
	world   *ecs.World

	mapper    *ecs.Map4[components.Vitals, components.Position, components.Membership, components.Death]
	vitals    *ecs.Map[components.Vitals]
	positions *ecs.Map[components.Position]
	members   *ecs.Map[components.Membership]
	deaths    *ecs.Map[components.Death]
	filter    *ecs.Filter1[components.Vitals]

	// Insertion order; ark iteration order is not stable across removals.
	order []ecs.Entity
	live  int
	dead  int
}

// NewRegistry creates an empty registry for one species.
func NewRegistry(species components.Species) *Registry {
	w := ecs.NewWorld()
	return &Registry{
		species: species,
		world:   w,
		mapper: ecs.NewMap4[
			components.Vitals,
			components.Position,
			components.Membership,
			components.Death,
		](w),
		vitals:    ecs.NewMap[components.Vitals](w),
		positions: ecs.NewMap[components.Position](w),
		members:   ecs.NewMap[components.Membership](w),
		deaths:    ecs.NewMap[components.Death](w),
		filter:    ecs.NewFilter1[components.Vitals](w),
	}
}

// Species returns the species this registry holds.
func (r *Registry) Species() components.Species { return r.species }

// Spawn adds a live animal and returns its handle.
func (r *Registry) Spawn(v components.Vitals, pos components.Position, group uint64) ecs.Entity {
	v.Alive = true
	m := components.Membership{Group: group}
	d := components.Death{}
	e := r.mapper.NewEntity(&v, &pos, &m, &d)
	r.order = append(r.order, e)
	r.live++
	return e
}

// Exists reports whether the handle still resolves, dead or alive.
func (r *Registry) Exists(e ecs.Entity) bool {
	return r.world.Alive(e)
}

// Alive reports whether the handle resolves to a live animal.
func (r *Registry) Alive(e ecs.Entity) bool {
	return r.world.Alive(e) && r.vitals.Get(e).Alive
}

// Vitals returns the mutable vitals of an animal, or nil for a stale handle.
func (r *Registry) Vitals(e ecs.Entity) *components.Vitals {
	if !r.world.Alive(e) {
		return nil
	}
	return r.vitals.Get(e)
}

// Position returns the mutable position of an animal, or nil for a stale handle.
func (r *Registry) Position(e ecs.Entity) *components.Position {
	if !r.world.Alive(e) {
		return nil
	}
	return r.positions.Get(e)
}

// Membership returns the group link of an animal, or nil for a stale handle.
func (r *Registry) Membership(e ecs.Entity) *components.Membership {
	if !r.world.Alive(e) {
		return nil
	}
	return r.members.Get(e)
}

// Death returns the graveyard marker of a dead animal.
func (r *Registry) Death(e ecs.Entity) (components.Death, bool) {
	if !r.world.Alive(e) || r.vitals.Get(e).Alive {
		return components.Death{}, false
	}
	return *r.deaths.Get(e), true
}

// markDead flips the alive flag and records the marker. The caller has
// already checked that the animal is alive.
func (r *Registry) markDead(e ecs.Entity, reason components.DeathReason, day int) {
	v := r.vitals.Get(e)
	v.Alive = false
	p := r.positions.Get(e)
	*r.deaths.Get(e) = components.Death{Reason: reason, Day: day, X: p.X, Y: p.Y}
	r.members.Get(e).Group = 0
	r.live--
	r.dead++
}

// Live returns the number of live animals.
func (r *Registry) Live() int { return r.live }

// Dead returns the number of dead animals not yet compacted.
func (r *Registry) Dead() int { return r.dead }

// Entities returns a copy of all resolvable handles in insertion order.
func (r *Registry) Entities() []ecs.Entity {
	return append([]ecs.Entity(nil), r.order...)
}

// TotalEnergy sums the energy of live animals.
func (r *Registry) TotalEnergy() float64 {
	var total float64
	query := r.filter.Query()
	for query.Next() {
		v := query.Get()
		if v.Alive {
			total += v.Energy
		}
	}
	return total
}

// Energies returns the energy of every live animal in insertion order.
func (r *Registry) Energies() []float64 {
	out := make([]float64, 0, r.live)
	for _, e := range r.order {
		if v := r.vitals.Get(e); v.Alive {
			out = append(out, v.Energy)
		}
	}
	return out
}

// Compact removes dead animals and returns how many were removed.
// Live animals keep their handles and components.
func (r *Registry) Compact() int {
	var toRemove []ecs.Entity
	query := r.filter.Query()
	for query.Next() {
		if !query.Get().Alive {
			toRemove = append(toRemove, query.Entity())
		}
	}

	// Remove outside the query
	for _, e := range toRemove {
		r.world.RemoveEntity(e)
	}

	kept := r.order[:0]
	for _, e := range r.order {
		if r.world.Alive(e) {
			kept = append(kept, e)
		}
	}
	clear(r.order[len(kept):])
	r.order = kept
	r.dead = 0

	return len(toRemove)
}
