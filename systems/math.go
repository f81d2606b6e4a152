// Package systems provides the pure, RNG-explicit algorithms the world is built from.
package systems

import "math"

// Coord addresses a grid cell.
type Coord struct {
	X, Y int
}

// Index returns the row-major index of c in a grid of the given side.
func (c Coord) Index(size int) int {
	return c.X*size + c.Y
}

// CoordOf is the inverse of Coord.Index.
func CoordOf(index, size int) Coord {
	return Coord{X: index / size, Y: index % size}
}

// InBounds reports whether c lies on a grid of the given side.
func (c Coord) InBounds(size int) bool {
	return 0 <= min(c.X, c.Y) && max(c.X, c.Y) < size
}

// Clamp clamps v between minVal and maxVal.
func Clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Distance returns the Euclidean distance between two cells.
func Distance(a, b Coord) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Adjacent returns the 4-connected neighbors of c that lie on the grid,
// in the order up, down, left, right.
func Adjacent(size int, c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range [4]Coord{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		n := Coord{X: c.X + d.X, Y: c.Y + d.Y}
		if n.InBounds(size) {
			out = append(out, n)
		}
	}
	return out
}

// Within returns every cell of the (2r+1)x(2r+1) square centered on c,
// clipped to the grid, c included, in row-major order.
func Within(size int, c Coord, r int) []Coord {
	out := make([]Coord, 0, (2*r+1)*(2*r+1))
	for x := c.X - r; x <= c.X+r; x++ {
		for y := c.Y - r; y <= c.Y+r; y++ {
			n := Coord{X: x, Y: y}
			if n.InBounds(size) {
				out = append(out, n)
			}
		}
	}
	return out
}
