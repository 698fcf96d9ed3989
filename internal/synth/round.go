package synth

import "math"

// Round2Sig rounds x to two significant figures, halves away from zero:
// 4.73 -> 4.7, 0.0891 -> 0.089, 4.25 -> 4.3. Zero, NaN and infinities are
// returned unchanged. Round2Sig(Round2Sig(x)) == Round2Sig(x).
func Round2Sig(x float64) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	e := int(math.Floor(math.Log10(math.Abs(x))))
	// Scale so the two kept digits sit left of the decimal point. Dividing
	// or multiplying by an exact power of ten keeps the result the nearest
	// double to the decimal value.
	if shift := 1 - e; shift < 0 {
		p := math.Pow10(-shift)
		return math.Round(x/p) * p
	}
	p := math.Pow10(1 - e)
	return math.Round(x*p) / p
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
