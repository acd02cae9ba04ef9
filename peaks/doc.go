// Package peaks detects absorption peaks in IR spectra and classifies their
// relative intensity.
//
// The pipeline smooths the absorption-oriented signal with a centered moving
// average, scans the smoothed signal for local extrema, then measures each
// candidate's topographic prominence against the original, unsmoothed
// samples so genuinely sharp bands are not flattened away. Candidates below
// the prominence floor are rejected, survivors closer together than the merge
// distance are collapsed onto the more prominent one, and the remaining peaks
// receive weak/medium/strong labels from the terciles of their own prominence
// distribution.
//
//	pks, err := peaks.Detect(s, peaks.Config{})
//	if errors.Is(err, peaks.ErrNoPeaks) {
//		// valid outcome: render an empty report
//	}
//
// Detect is a pure function: it holds no state between calls and is safe to
// run concurrently over independent spectra.
package peaks
