// Package testutil provides deterministic spectrum generators for tests.
package testutil

import (
	"math"
	"math/rand"
	"testing"
)

// Axis returns wavenumbers from `from` to `to` inclusive at the given step.
func Axis(from, to, step float64) []float64 {
	n := int(math.Floor((to-from)/step)) + 1
	out := make([]float64, n)

	for i := range out {
		out[i] = from + float64(i)*step
	}

	return out
}

// Flat returns a constant-valued signal of length n.
func Flat(n int, level float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = level
	}

	return out
}

// AddDip subtracts a Gaussian absorption band of the given depth and FWHM
// centered at the given wavenumber, in place.
func AddDip(intensities, axis []float64, center, depth, fwhm float64) {
	k := 4 * math.Ln2 / (fwhm * fwhm)
	for i, w := range axis {
		d := w - center
		intensities[i] -= depth * math.Exp(-k*d*d)
	}
}

// AddBump adds a Gaussian band, for absorbance-oriented spectra.
func AddBump(intensities, axis []float64, center, height, fwhm float64) {
	AddDip(intensities, axis, center, -height, fwhm)
}

// NoisyFlat returns a flat signal with seeded uniform jitter in
// [-jitter, +jitter], reproducible for a given seed.
func NoisyFlat(seed int64, n int, level, jitter float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)

	for i := range out {
		out[i] = level + (rng.Float64()*2-1)*jitter
	}

	return out
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair differs by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}
