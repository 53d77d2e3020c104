// Package stats implements the estimation layer: rank correlation
// with bootstrap credible intervals, Beta-posterior sampling, and the
// confusion-matrix uncertainty propagation that corrects observed
// vocative rates for classifier error. Everything random runs on a
// caller-seeded generator, so identical inputs and seeds reproduce
// identical numbers. No significance testing anywhere: point
// estimates and intervals only.
package stats

import (
	"math"
	"math/rand"
	"sort"
)

// Bootstrap defaults.
const (
	DefaultBootstrapDraws = 10000
	DefaultBootstrapSeed  = 20260209
)

// Ranks assigns 1-based ranks with midrank tie handling: every member
// of a tied group receives the mean of the ranks the group spans.
func Ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if xs[idx[a]] != xs[idx[b]] {
			return xs[idx[a]] < xs[idx[b]]
		}
		return idx[a] < idx[b]
	})

	out := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j < len(idx) && xs[idx[j]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j-1)/2 + 1
		for k := i; k < j; k++ {
			out[idx[k]] = avg
		}
		i = j
	}
	return out
}

// Pearson returns the product-moment correlation of two equal-length
// series. The second return is false when the correlation is
// undefined: empty input or zero variance on either side.
func Pearson(x, y []float64) (float64, bool) {
	n := len(x)
	if n == 0 {
		return 0, false
	}
	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var num, dx, dy float64
	for i := 0; i < n; i++ {
		a := x[i] - meanX
		b := y[i] - meanY
		num += a * b
		dx += a * a
		dy += b * b
	}
	denX := math.Sqrt(dx)
	denY := math.Sqrt(dy)
	if denX == 0 || denY == 0 {
		return 0, false
	}
	return num / (denX * denY), true
}

// Spearman returns the rank correlation of two equal-length series:
// Pearson over midranks.
func Spearman(x, y []float64) (float64, bool) {
	if len(x) == 0 {
		return 0, false
	}
	return Pearson(Ranks(x), Ranks(y))
}

// BootstrapCI resamples (x, y) pairs with replacement, recomputes
// Spearman's rho per draw, and returns the 2.5th and 97.5th
// percentiles of the resampled distribution as a 95% credible
// interval. Degenerate draws (resamples with zero variance) are
// skipped; the percentile positions index the successful draws. The
// third return is false when nothing could be estimated. draws <= 0
// takes the default.
func BootstrapCI(x, y []float64, draws int, seed int64) (lo, hi float64, ok bool) {
	if draws <= 0 {
		draws = DefaultBootstrapDraws
	}
	n := len(x)
	if n == 0 {
		return 0, 0, false
	}

	rng := rand.New(rand.NewSource(seed))
	rhos := make([]float64, 0, draws)
	bx := make([]float64, n)
	by := make([]float64, n)
	for d := 0; d < draws; d++ {
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			bx[i] = x[j]
			by[i] = y[j]
		}
		if r, rok := Spearman(bx, by); rok {
			rhos = append(rhos, r)
		}
	}
	if len(rhos) == 0 {
		return 0, 0, false
	}
	sort.Float64s(rhos)
	lo = rhos[int(float64(len(rhos))*0.025)]
	hi = rhos[int(float64(len(rhos))*0.975)]
	return lo, hi, true
}
