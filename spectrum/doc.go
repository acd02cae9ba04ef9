// Package spectrum provides the immutable sample model shared by all
// IR processing stages.
//
// A [Spectrum] holds an ordered series of (wavenumber, intensity) samples
// together with the intensity [Unit]. The unit decides whether an absorption
// peak appears as a dip (transmittance) or a bump (absorbance); everything
// else is unit-agnostic.
//
// Construction validates the series once, so downstream consumers never need
// to re-check ordering or finiteness:
//
//	s, err := spectrum.New(wavenumbers, intensities, spectrum.Transmittance)
//	if err != nil { ... }
//	y, err := s.IntensityAt(1650.0)
package spectrum
