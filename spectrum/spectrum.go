package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Errors returned by spectrum construction and lookup.
var (
	ErrInvalidSpectrum = errors.New("spectrum: invalid spectrum")
	ErrOutOfRange      = errors.New("spectrum: wavenumber outside sampled range")
)

// Unit describes how intensity values are expressed.
type Unit int

const (
	// Transmittance marks spectra where absorption peaks are local minima.
	Transmittance Unit = iota

	// Absorbance marks spectra where absorption peaks are local maxima.
	Absorbance
)

// String returns the unit name.
func (u Unit) String() string {
	switch u {
	case Transmittance:
		return "transmittance"
	case Absorbance:
		return "absorbance"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Spectrum is an immutable series of (wavenumber, intensity) samples sorted
// by ascending wavenumber.
type Spectrum struct {
	wavenumbers []float64
	intensities []float64
	unit        Unit
}

// New validates and copies the sample series.
//
// Requirements: at least 2 samples, matching slice lengths, strictly
// increasing wavenumbers, and finite values throughout. Violations return an
// error wrapping [ErrInvalidSpectrum].
func New(wavenumbers, intensities []float64, unit Unit) (*Spectrum, error) {
	if len(wavenumbers) != len(intensities) {
		return nil, fmt.Errorf("%w: %d wavenumbers vs %d intensities",
			ErrInvalidSpectrum, len(wavenumbers), len(intensities))
	}

	if len(wavenumbers) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d",
			ErrInvalidSpectrum, len(wavenumbers))
	}

	for i, w := range wavenumbers {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: non-finite wavenumber at index %d",
				ErrInvalidSpectrum, i)
		}

		if i > 0 && w <= wavenumbers[i-1] {
			return nil, fmt.Errorf("%w: wavenumbers not strictly increasing at index %d (%g after %g)",
				ErrInvalidSpectrum, i, w, wavenumbers[i-1])
		}

		if y := intensities[i]; math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("%w: non-finite intensity at index %d",
				ErrInvalidSpectrum, i)
		}
	}

	s := &Spectrum{
		wavenumbers: make([]float64, len(wavenumbers)),
		intensities: make([]float64, len(intensities)),
		unit:        unit,
	}
	copy(s.wavenumbers, wavenumbers)
	copy(s.intensities, intensities)

	return s, nil
}

// Len returns the number of samples.
func (s *Spectrum) Len() int {
	return len(s.wavenumbers)
}

// Unit returns the intensity unit.
func (s *Spectrum) Unit() Unit {
	return s.unit
}

// At returns the i-th (wavenumber, intensity) sample.
func (s *Spectrum) At(i int) (wavenumber, intensity float64) {
	return s.wavenumbers[i], s.intensities[i]
}

// Range returns the sampled wavenumber domain [min, max].
func (s *Spectrum) Range() (min, max float64) {
	return s.wavenumbers[0], s.wavenumbers[len(s.wavenumbers)-1]
}

// IntensityRange returns the minimum and maximum intensity values.
func (s *Spectrum) IntensityRange() (min, max float64) {
	min = s.intensities[0]
	max = s.intensities[0]

	for _, y := range s.intensities[1:] {
		if y < min {
			min = y
		}

		if y > max {
			max = y
		}
	}

	return min, max
}

// Wavenumbers returns a copy of the wavenumber axis.
func (s *Spectrum) Wavenumbers() []float64 {
	out := make([]float64, len(s.wavenumbers))
	copy(out, s.wavenumbers)

	return out
}

// Intensities returns a copy of the intensity values.
func (s *Spectrum) Intensities() []float64 {
	out := make([]float64, len(s.intensities))
	copy(out, s.intensities)

	return out
}

// IntensityAt evaluates the spectrum at an arbitrary wavenumber using linear
// interpolation between the two bracketing samples. Wavenumbers outside the
// sampled domain return an error wrapping [ErrOutOfRange].
func (s *Spectrum) IntensityAt(w float64) (float64, error) {
	lo, hi := s.Range()
	if w < lo || w > hi {
		return 0, fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfRange, w, lo, hi)
	}

	// Index of the first sample >= w.
	i := sort.SearchFloat64s(s.wavenumbers, w)
	if i < len(s.wavenumbers) && s.wavenumbers[i] == w {
		return s.intensities[i], nil
	}

	w0, y0 := s.wavenumbers[i-1], s.intensities[i-1]
	w1, y1 := s.wavenumbers[i], s.intensities[i]
	frac := (w - w0) / (w1 - w0)

	return y0 + frac*(y1-y0), nil
}
