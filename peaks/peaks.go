package peaks

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-ir/spectrum"
)

// Errors returned by peak detection.
var (
	ErrInvalidConfig = errors.New("peaks: invalid config")
	ErrNoPeaks       = errors.New("peaks: no peaks found")
)

// Label is the qualitative strength of an absorption peak, judged relative
// to the other peaks of the same spectrum.
type Label int

const (
	Weak Label = iota
	Medium
	Strong
)

// String returns the spelled-out label name.
func (l Label) String() string {
	switch l {
	case Weak:
		return "weak"
	case Medium:
		return "medium"
	case Strong:
		return "strong"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// Letter returns the conventional single-letter notation: w, m or s.
func (l Label) Letter() string {
	switch l {
	case Weak:
		return "w"
	case Medium:
		return "m"
	case Strong:
		return "s"
	default:
		return "?"
	}
}

// Peak is one detected absorption feature.
type Peak struct {
	// Position is the peak wavenumber.
	Position float64

	// Prominence is the topographic height of the feature above the higher
	// of its two flanking baselines, in the spectrum's intensity units.
	Prominence float64

	// Width is the full width at half prominence, in wavenumber units.
	Width float64

	// Label is the relative strength within this spectrum.
	Label Label

	// Broad marks bands wider than the configured broad-band width.
	Broad bool
}

// Default detection parameters. A zero Config field selects the matching
// default at Detect time.
const (
	DefaultMinSeparation   = 8.0
	DefaultSmoothingWindow = 5
	DefaultBroadWidth      = 100.0

	// defaultProminenceFraction scales the default prominence floor to the
	// spectrum's own intensity range, so spectra of any scale behave alike.
	defaultProminenceFraction = 0.02
)

// Config holds the detection thresholds.
//
// Zero values select documented defaults; negative values are rejected with
// [ErrInvalidConfig].
type Config struct {
	// MinProminence is the smallest prominence a candidate may have and
	// still be reported. Default: 2% of the spectrum's intensity range.
	MinProminence float64

	// MinSeparation is the merge distance in wavenumber units: of two
	// candidates closer than this, only the more prominent survives.
	// Default: 8.
	MinSeparation float64

	// SmoothingWindow is the moving-average width in samples applied before
	// the extremum scan. Even values are rounded up to odd; 1 disables
	// smoothing. Default: 5.
	SmoothingWindow int

	// MinWidth discards peaks narrower than this many wavenumber units at
	// half prominence. 0 disables the gate (the default).
	MinWidth float64

	// BroadWidth is the half-prominence width beyond which a peak is
	// flagged broad. Default: 100.
	BroadWidth float64
}

// withDefaults validates cfg and fills zero fields with defaults derived
// from the spectrum.
func (c Config) withDefaults(s *spectrum.Spectrum) (Config, error) {
	if c.MinProminence < 0 {
		return c, fmt.Errorf("%w: min prominence must be > 0: %g", ErrInvalidConfig, c.MinProminence)
	}

	if c.MinSeparation < 0 {
		return c, fmt.Errorf("%w: min separation must be > 0: %g", ErrInvalidConfig, c.MinSeparation)
	}

	if c.SmoothingWindow < 0 {
		return c, fmt.Errorf("%w: smoothing window must be >= 0: %d", ErrInvalidConfig, c.SmoothingWindow)
	}

	if c.MinWidth < 0 {
		return c, fmt.Errorf("%w: min width must be >= 0: %g", ErrInvalidConfig, c.MinWidth)
	}

	if c.BroadWidth < 0 {
		return c, fmt.Errorf("%w: broad width must be >= 0: %g", ErrInvalidConfig, c.BroadWidth)
	}

	if c.MinProminence == 0 {
		yMin, yMax := s.IntensityRange()
		c.MinProminence = defaultProminenceFraction * (yMax - yMin)
	}

	if c.MinSeparation == 0 {
		c.MinSeparation = DefaultMinSeparation
	}

	if c.SmoothingWindow == 0 {
		c.SmoothingWindow = DefaultSmoothingWindow
	}

	if c.SmoothingWindow%2 == 0 {
		c.SmoothingWindow++
	}

	if c.BroadWidth == 0 {
		c.BroadWidth = DefaultBroadWidth
	}

	return c, nil
}
