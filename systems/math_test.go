package systems

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b Coord
		want float64
	}{
		{Coord{0, 0}, Coord{0, 0}, 0},
		{Coord{0, 0}, Coord{3, 4}, 5},
		{Coord{2, 2}, Coord{3, 3}, math.Sqrt2},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAdjacent(t *testing.T) {
	if got := len(Adjacent(5, Coord{0, 0})); got != 2 {
		t.Errorf("corner has %d adjacent cells, want 2", got)
	}
	if got := len(Adjacent(5, Coord{0, 2})); got != 3 {
		t.Errorf("edge has %d adjacent cells, want 3", got)
	}
	if got := len(Adjacent(5, Coord{2, 2})); got != 4 {
		t.Errorf("interior has %d adjacent cells, want 4", got)
	}
}

func TestWithin(t *testing.T) {
	if got := len(Within(10, Coord{5, 5}, 1)); got != 9 {
		t.Errorf("radius 1 interior = %d cells, want 9", got)
	}
	if got := len(Within(10, Coord{0, 0}, 2)); got != 9 {
		t.Errorf("radius 2 corner = %d cells, want 9", got)
	}
	if got := Within(10, Coord{4, 4}, 0); len(got) != 1 || got[0] != (Coord{4, 4}) {
		t.Errorf("radius 0 = %v, want only the center", got)
	}
}

func TestCoordIndexRoundTrip(t *testing.T) {
	for i := 0; i < 49; i++ {
		if got := CoordOf(i, 7).Index(7); got != i {
			t.Errorf("CoordOf(%d).Index() = %d", i, got)
		}
	}
}
