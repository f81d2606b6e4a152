package systems

// GrowDensity returns a vegetob's density after one day of growth.
// Below 1 the patch reseeds to reseed; otherwise it grows by
// d*(max-d)^2/divisor, fastest at mid range and flat near saturation.
func GrowDensity(d, maxDensity, divisor, reseed float64) float64 {
	if d < 1 {
		return reseed
	}
	gap := maxDensity - d
	return Clamp(d+d*gap*gap/divisor, 0, maxDensity)
}
