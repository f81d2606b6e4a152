package systems

import "math/rand/v2"

// Terrain is the land mask of a generated world, indexed by Coord.Index.
type Terrain struct {
	Size int
	Land []bool
	Seed Coord // cell the landmass grew from
}

// GeneratePangea grows a single landmass from a random seed cell.
//
// The fill is breadth first over 4-adjacent cells. A neighbor is accepted with
// probability p, which starts at 1 and drops by 1/size² on every acceptance, so
// growth decelerates until it stops. Rejected neighbors become water. A final
// pass turns enclosed one-cell lakes back into land.
func GeneratePangea(rng *rand.Rand, size int) *Terrain {
	n := size * size
	t := &Terrain{
		Size: size,
		Land: make([]bool, n),
		Seed: Coord{X: rng.IntN(size), Y: rng.IntN(size)},
	}

	done := make([]bool, n)
	queue := []Coord{t.Seed}
	p := 1.0
	step := 1 / float64(n)

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		i := c.Index(size)
		if done[i] {
			continue
		}
		t.Land[i] = true
		done[i] = true

		for _, nb := range Adjacent(size, c) {
			j := nb.Index(size)
			if done[j] {
				continue
			}
			if rng.Float64() < p {
				p -= step
				queue = append(queue, nb)
			} else {
				done[j] = true
			}
		}
	}

	t.fillPuddles()
	return t
}

// fillPuddles converts every water cell whose 4 neighbors are all land.
// A single row-major pass is enough: a cell can only be converted when all its
// neighbors are land, so it never leaves a water neighbor newly enclosed.
func (t *Terrain) fillPuddles() {
	for i := range t.Land {
		if t.Land[i] {
			continue
		}
		enclosed := true
		for _, nb := range Adjacent(t.Size, CoordOf(i, t.Size)) {
			if !t.Land[nb.Index(t.Size)] {
				enclosed = false
				break
			}
		}
		if enclosed {
			t.Land[i] = true
		}
	}
}

// IsLand reports whether c is land.
func (t *Terrain) IsLand(c Coord) bool {
	return t.Land[c.Index(t.Size)]
}

// LandCount returns the number of land cells.
func (t *Terrain) LandCount() int {
	count := 0
	for _, l := range t.Land {
		if l {
			count++
		}
	}
	return count
}
