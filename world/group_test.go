package world

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/planisuss/components"
)

func TestFight(t *testing.T) {
	tests := []struct {
		name         string
		resident     float64
		newcomer     float64
		wantWinner   string
		wantEnergy   float64
		wantLoserRsn components.DeathReason
	}{
		{"resident wins", 100, 40, "resident", 120, components.Fight},
		{"newcomer wins", 40, 100, "newcomer", 120, components.Fight},
		{"tie goes to resident", 60, 60, "resident", 105, components.Fight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := emptyWorld(t, 5)
			c := w.Cell(2, 2)
			ra := spawnCarviz(w, c, tt.resident, 0.2)
			a := c.Pride()
			b, rb := looseGroup(w, components.Carviz, tt.newcomer, 0.2)

			got := c.AttachPride(w, b)

			winner, loser, winnerE, loserE := a, b, ra, rb
			if tt.wantWinner == "newcomer" {
				winner, loser, winnerE, loserE = b, a, rb, ra
			}
			if got != winner || c.Pride() != winner || winner.Pos() != c {
				t.Fatalf("cell held by group %v, want %s", got, tt.wantWinner)
			}
			if loser.active() || loser.Len() != 0 {
				t.Error("losing pride still active")
			}
			if e := w.carvizes.Vitals(winnerE).Energy; e != tt.wantEnergy {
				t.Errorf("winner energy = %g, want %g", e, tt.wantEnergy)
			}
			if d, ok := w.carvizes.Death(loserE); !ok || d.Reason != tt.wantLoserRsn {
				t.Errorf("loser death = %+v, %v", d, ok)
			}
		})
	}
}

func TestAttachPride_Join(t *testing.T) {
	w := emptyWorld(t, 5)
	c := w.Cell(1, 1)
	spawnCarviz(w, c, 50, 0.8)
	a := c.Pride()
	a.memory[3] = 10
	b, e := looseGroup(w, components.Carviz, 30, 0.8)
	b.memory[7] = 5

	got := c.AttachPride(w, b)
	if got != a || a.Len() != 2 {
		t.Fatalf("join kept group %v with %d members", got, a.Len())
	}
	if b.active() {
		t.Error("absorbed pride still active")
	}
	if w.carvizes.Membership(e).Group != a.ID {
		t.Error("joined member not relinked")
	}
	if p := w.carvizes.Position(e); p.X != 1 || p.Y != 1 {
		t.Errorf("joined member at (%d,%d)", p.X, p.Y)
	}
	if len(a.memory) != 2 {
		t.Errorf("memory = %v, want both entries", a.memory)
	}
	if _, ok := w.groups[b.ID]; ok {
		t.Error("absorbed pride still registered")
	}
}

func TestAttachHerd_Merge(t *testing.T) {
	w := emptyWorld(t, 5)
	c := w.Cell(3, 0)
	spawnErbast(w, c, 200)
	resident := c.Herd()
	resident.memory[1] = 40
	resident.memory[2] = 10

	g, _ := looseGroup(w, components.Erbast, 100, 0.5)
	g.memory[2] = 20
	g.memory[9] = 30
	g.tracked = true
	g.path = []TrackPoint{{Day: 0, X: 4, Y: 0}}

	if got := c.AttachHerd(w, g); got != resident {
		t.Fatal("AttachHerd did not merge into the resident")
	}
	if resident.Len() != 2 || g.active() {
		t.Errorf("merge left %d members, newcomer active=%v", resident.Len(), g.active())
	}
	if len(resident.memory) != 3 || resident.memory[1] != 40 || resident.memory[9] != 30 {
		t.Errorf("merged memory = %v", resident.memory)
	}
	if v := resident.memory[2]; v != 10 && v != 20 {
		t.Errorf("collided entry = %g, want one of the two sides", v)
	}
	if !resident.Tracked() || len(resident.Path()) != 1 {
		t.Error("tracking not inherited from the absorbed herd")
	}
}

func TestAddEnergy_Cap(t *testing.T) {
	w := emptyWorld(t, 3)
	c := w.Cell(0, 0)
	for range 3 {
		spawnCarviz(w, c, 90, 0.9)
	}
	g := c.Pride()
	if g.Len() != 3 {
		t.Fatalf("pride has %d members, want 3", g.Len())
	}

	g.AddEnergy(w, 1000)
	total := 0.0
	for _, e := range g.Members(w) {
		v := w.carvizes.Vitals(e)
		if v.Energy > w.cfg.Animals.MaxShare || v.Energy < 90 {
			t.Errorf("member energy %g outside [90, cap]", v.Energy)
		}
		total += v.Energy
	}
	if total > 300 {
		t.Errorf("group energy %g above 3*cap", total)
	}

	// Nothing to feed
	empty := w.newGroup(components.Carviz)
	empty.AddEnergy(w, 50)
}

func TestChampion(t *testing.T) {
	w := emptyWorld(t, 3)
	c := w.Cell(1, 1)
	first := spawnErbast(w, c, 40)
	strong := spawnErbast(w, c, 70)
	spawnErbast(w, c, 70)
	g := c.Herd()

	got, ok := g.Champion(w)
	if !ok || got != strong {
		t.Error("Champion is not the first member with the most energy")
	}

	// A dead handle is pruned, never returned
	w.erbasts.markDead(strong, components.HuntedDown, 0)
	w.erbasts.markDead(first, components.HuntedDown, 0)
	got, ok = g.Champion(w)
	if !ok || !w.erbasts.Alive(got) || g.Len() != 1 {
		t.Errorf("Champion after deaths = %v (alive %v), group len %d", got, w.erbasts.Alive(got), g.Len())
	}
}

func TestHunt(t *testing.T) {
	w := emptyWorld(t, 4)
	c := w.Cell(2, 1)
	prey := spawnErbast(w, c, 1e-6)
	hunter := spawnCarviz(w, c, 50, 0.9)

	w.hunt(c.Pride(), c.Herd())

	if w.erbasts.Alive(prey) {
		t.Fatal("overwhelmed prey survived the hunt")
	}
	if d, _ := w.erbasts.Death(prey); d.Reason != components.HuntedDown {
		t.Errorf("prey died of %q", d.Reason)
	}
	if c.Herd() != nil {
		t.Error("emptied herd still on the cell")
	}
	if e := w.carvizes.Vitals(hunter).Energy; e < 50 || e > w.cfg.Animals.MaxShare {
		t.Errorf("hunter energy = %g", e)
	}
}

func TestHunt_Miss(t *testing.T) {
	tests := []struct {
		name     string
		prey     float64
		pride    []float64
		seed     uint64
		maxTries int
	}{
		// The herd is far stronger: one miss, the champion dies, no retry
		{"lone hunter", 1e6, []float64{50}, 1, 1},
		{"pride outmatched", 1e6, []float64{50, 60, 40}, 2, 1},
		// Stronger pride retries while it still outweighs the prey
		{"retry", 300, []float64{100, 100, 100, 100, 100}, 3, 3},
		{"retry other seed", 300, []float64{100, 100, 100, 100, 100}, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := emptyWorld(t, 4)
			w.rng = rand.New(rand.NewPCG(tt.seed, tt.seed))
			obs := &countingObserver{}
			w.SetObserver(obs)

			c := w.Cell(1, 2)
			prey := spawnErbast(w, c, tt.prey)
			var hunters []ecs.Entity
			for _, e := range tt.pride {
				hunters = append(hunters, spawnCarviz(w, c, e, 0.9))
			}
			pride := c.Pride()

			w.hunt(pride, c.Herd())

			injured := w.Deaths().Count(components.Carviz, components.Injured)
			caught := 0
			if !w.erbasts.Alive(prey) {
				caught = 1
			}
			if obs.hunts < 1 || obs.hunts > tt.maxTries {
				t.Fatalf("hunt made %d attempts, want 1..%d", obs.hunts, tt.maxTries)
			}
			if obs.hunts != injured+caught {
				t.Errorf("%d attempts, %d injured, %d caught", obs.hunts, injured, caught)
			}

			for _, e := range hunters {
				if d, dead := w.carvizes.Death(e); dead && d.Reason != components.Injured {
					t.Errorf("hunter died of %q, want injured", d.Reason)
				}
			}
			if caught == 1 {
				return
			}
			if e := w.erbasts.Vitals(prey).Energy; e != tt.prey {
				t.Errorf("missed prey energy = %g, want %g", e, tt.prey)
			}
			if c.Herd() == nil {
				t.Error("missed herd left the cell")
			}
			if pride.active() && pride.Energy(w) > tt.prey {
				t.Errorf("hunt stopped with pride energy %g above prey %g", pride.Energy(w), tt.prey)
			}
		})
	}
}

func TestHunt_ToleratesDeadPrey(t *testing.T) {
	w := emptyWorld(t, 4)
	c := w.Cell(0, 3)
	stale := spawnErbast(w, c, 500)
	live := spawnErbast(w, c, 1e-6)
	spawnCarviz(w, c, 80, 0.9)

	// Killed earlier in the day without the herd having been pruned
	w.erbasts.markDead(stale, components.Overage, 0)

	w.hunt(c.Pride(), c.Herd())
	if w.erbasts.Alive(live) {
		t.Error("live prey survived the hunt")
	}
	if n := w.Deaths().Count(components.Erbast, components.HuntedDown); n != 1 {
		t.Errorf("hunted_down tally = %d, want 1", n)
	}
}

func TestMemory(t *testing.T) {
	g := &Group{memory: map[int]float64{1: 0.5, 2: 8, 3: 8, 4: 2}}
	if best, ok := g.bestMemory(); !ok || best != 2 {
		t.Errorf("bestMemory = %d, %v; want 2 (lowest index on ties)", best, ok)
	}

	g.forget(1)
	want := map[int]float64{2: 4, 3: 4, 4: 1}
	if len(g.memory) != len(want) {
		t.Fatalf("after forget: %v, want %v", g.memory, want)
	}
	for k, v := range want {
		if g.memory[k] != v {
			t.Errorf("memory[%d] = %g, want %g", k, g.memory[k], v)
		}
	}

	empty := &Group{memory: map[int]float64{}}
	if _, ok := empty.bestMemory(); ok {
		t.Error("empty memory reported a best cell")
	}
}

func TestHerdTurn_Grazes(t *testing.T) {
	w := emptyWorld(t, 3)
	for _, c := range w.cells {
		c.vegetob.density = 1
	}
	c := w.Cell(1, 1)
	c.vegetob.density = 100
	a := spawnErbast(w, c, 500)
	b := spawnErbast(w, c, 500)

	// Nothing nearby beats the current cell, so the herd stays and eats
	w.herdTurn(c.Herd(), 1)
	gain := w.cfg.Erbast.GrazeGain
	if got := w.erbasts.Vitals(a).Energy; got != 500+gain {
		t.Errorf("energy after grazing = %g, want %g", got, 500+gain)
	}
	if got := c.vegetob.Density(); got != 98 {
		t.Errorf("density after grazing = %g, want 98", got)
	}
	if w.erbasts.Vitals(b).Energy != w.erbasts.Vitals(a).Energy {
		t.Error("bites were not even")
	}
}

func TestGroup_DeparturesAreLazy(t *testing.T) {
	w := emptyWorld(t, 5)
	c, other := w.Cell(1, 1), w.Cell(3, 3)
	c.vegetob.density = 100
	e1 := spawnErbast(w, c, 50)
	e2 := spawnErbast(w, c, 50)
	e3 := spawnErbast(w, c, 50)
	herd := c.Herd()

	// A death only drops the live count
	if err := w.Kill(components.Erbast, e1, components.HuntedDown); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}
	if herd.Len() != 2 || len(herd.members) != 3 || c.Population(w) != 2 {
		t.Fatalf("after a death: len %d, listed %d, population %d", herd.Len(), len(herd.members), c.Population(w))
	}

	// Too hungry to wander: the secessionist rejoins without a second listing
	w.quitHerd(herd, e2, c)
	if w.erbasts.Membership(e2).Group != herd.ID || herd.Len() != 2 || len(herd.members) != 3 {
		t.Fatalf("rejoin: group %d, len %d, listed %d", w.erbasts.Membership(e2).Group, herd.Len(), len(herd.members))
	}

	// e3 leaves for another cell; its stale handle must not drag it along
	herd.leave()
	w.erbasts.Membership(e3).Group = 0
	w.settle(components.Erbast, e3, other, herd)

	w.apply(&Interventions{Bombs: []Bomb{{X: c.X, Y: c.Y}}})
	if w.erbasts.Alive(e2) {
		t.Error("bombed member survived")
	}
	if !w.erbasts.Alive(e3) || other.Herd() == nil || other.Herd().Len() != 1 {
		t.Error("member that left was killed with its old herd")
	}
	if n := w.Deaths().Count(components.Erbast, components.Bomb); n != 1 {
		t.Errorf("bomb deaths = %d, want 1", n)
	}

	other.Herd().prune(w)
	if got := other.Herd().Members(w); len(got) != 1 || got[0] != e3 {
		t.Errorf("members after prune = %v", got)
	}
}

func TestKill_LargePrideIsLinear(t *testing.T) {
	const n = 100_000
	w := emptyWorld(t, 3)
	c := w.Cell(1, 1)
	for range n {
		spawnCarviz(w, c, 50, 0.5)
	}
	pride := c.Pride()
	members := pride.Members(w)

	start := time.Now()
	for _, e := range members {
		w.tryKill(components.Carviz, e, components.Fight)
	}
	elapsed := time.Since(start)

	if c.Pride() != nil || pride.active() || w.carvizes.Live() != 0 {
		t.Fatalf("pride left with %d live members", pride.Len())
	}
	if elapsed > 5*time.Second {
		t.Errorf("killing %d pride members took %v", n, elapsed)
	}
}
