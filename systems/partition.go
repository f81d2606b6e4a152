package systems

import "math/rand/v2"

// Partition splits total into count random shares.
//
// Each step draws a uniform cut point in the remaining quantity and recurses on
// both sides, count/2 shares left and the rest right. Every share is capped at
// limit, so the sum never exceeds total.
func Partition(rng *rand.Rand, total float64, count int, limit float64) []float64 {
	if count <= 0 {
		return nil
	}
	return partition(rng, total, count, limit, make([]float64, 0, count))
}

func partition(rng *rand.Rand, n float64, m int, limit float64, out []float64) []float64 {
	if m == 1 {
		return append(out, min(n, limit))
	}
	cut := rng.Float64() * n
	out = partition(rng, cut, m/2, limit, out)
	return partition(rng, n-cut, m/2+m%2, limit, out)
}
