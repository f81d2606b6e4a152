package systems

import "testing"

func TestGrowDensity_Reseed(t *testing.T) {
	for _, d := range []float64{0, 0.2, 0.999} {
		if got := GrowDensity(d, 100, 100000, 1); got != 1 {
			t.Errorf("GrowDensity(%v) = %v, want reseed to 1", d, got)
		}
	}
}

func TestGrowDensity_MonotoneAndBounded(t *testing.T) {
	d := 1.0
	prev := d
	for day := 0; day < 20000; day++ {
		d = GrowDensity(d, 100, 100000, 1)
		if d < prev {
			t.Fatalf("day %d: density decreased %v -> %v", day, prev, d)
		}
		if d < 0 || d > 100 {
			t.Fatalf("day %d: density %v out of [0,100]", day, d)
		}
		prev = d
	}
	if d < 99 {
		t.Errorf("density after 20000 days = %v, want close to 100", d)
	}
}

func TestGrowDensity_FastestMidRange(t *testing.T) {
	gain := func(d float64) float64 { return GrowDensity(d, 100, 100000, 1) - d }
	if !(gain(33) > gain(5) && gain(33) > gain(90)) {
		t.Errorf("expected mid-range growth to dominate: g(5)=%v g(33)=%v g(90)=%v", gain(5), gain(33), gain(90))
	}
	if gain(100) != 0 {
		t.Errorf("saturated density should not grow, got %v", gain(100))
	}
}
