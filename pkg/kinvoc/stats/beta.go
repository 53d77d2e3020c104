package stats

import (
	"math"
	"math/rand"
)

// Gamma draws one sample from a Gamma(shape, 1) distribution using the
// Marsaglia-Tsang squeeze method. Shapes below one are handled by the
// standard boost: draw at shape+1 and scale by U^(1/shape).
func Gamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return Gamma(rng, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}

// Beta draws one sample from a Beta(a, b) distribution via two Gamma
// draws. Requires a > 0 and b > 0.
func Beta(rng *rand.Rand, a, b float64) float64 {
	ga := Gamma(rng, a)
	gb := Gamma(rng, b)
	if ga+gb == 0 {
		return 0
	}
	return ga / (ga + gb)
}
