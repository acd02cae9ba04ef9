package peaks

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-ir/internal/testutil"
	"github.com/cwbudde/algo-ir/spectrum"
)

// fiveBands builds a transmittance spectrum with five well-separated
// absorption bands of distinct depths.
func fiveBands(t *testing.T, scale float64) *spectrum.Spectrum {
	t.Helper()

	axis := testutil.Axis(600, 3600, 1)
	y := testutil.Flat(len(axis), 1.0)
	testutil.AddDip(y, axis, 3400, 0.5, 60)
	testutil.AddDip(y, axis, 2950, 0.2, 30)
	testutil.AddDip(y, axis, 1700, 0.6, 20)
	testutil.AddDip(y, axis, 1210, 0.35, 15)
	testutil.AddDip(y, axis, 800, 0.1, 12)

	if scale != 1 {
		for i := range y {
			y[i] *= scale
		}
	}

	s, err := spectrum.New(axis, y, spectrum.Transmittance)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return s
}

func TestDetectFiveBands(t *testing.T) {
	s := fiveBands(t, 1)

	pks, err := Detect(s, Config{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(pks) != 5 {
		t.Fatalf("got %d peaks, want 5: %+v", len(pks), pks)
	}

	wantPos := []float64{3400, 2950, 1700, 1210, 800}
	for i, pk := range pks {
		if math.Abs(pk.Position-wantPos[i]) > 2 {
			t.Errorf("peak %d at %g, want ~%g", i, pk.Position, wantPos[i])
		}
	}

	wantLabel := []Label{Strong, Medium, Strong, Medium, Weak}
	for i, pk := range pks {
		if pk.Label != wantLabel[i] {
			t.Errorf("peak at %g labeled %s, want %s", pk.Position, pk.Label, wantLabel[i])
		}
	}
}

func TestDetectDeterministic(t *testing.T) {
	s := fiveBands(t, 1)

	a, err := Detect(s, Config{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	b, err := Detect(s, Config{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Detect not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestDetectInvariants(t *testing.T) {
	s := fiveBands(t, 1)
	cfg := Config{MinProminence: 0.05, MinSeparation: 8}

	pks, err := Detect(s, cfg)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	for i, pk := range pks {
		if pk.Prominence < cfg.MinProminence {
			t.Errorf("peak at %g has prominence %g below floor %g",
				pk.Position, pk.Prominence, cfg.MinProminence)
		}

		if i > 0 && pks[i-1].Position <= pk.Position {
			t.Errorf("positions not strictly descending: %g then %g",
				pks[i-1].Position, pk.Position)
		}

		for j := i + 1; j < len(pks); j++ {
			if d := pk.Position - pks[j].Position; d < cfg.MinSeparation {
				t.Errorf("peaks at %g and %g violate min separation %g",
					pk.Position, pks[j].Position, cfg.MinSeparation)
			}
		}
	}
}

func TestDetectScaleInvariantLabels(t *testing.T) {
	a, err := Detect(fiveBands(t, 1), Config{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	b, err := Detect(fiveBands(t, 3), Config{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("peak counts differ: %d vs %d", len(a), len(b))
	}

	for i := range a {
		if a[i].Position != b[i].Position {
			t.Errorf("peak %d position changed under scaling: %g vs %g",
				i, a[i].Position, b[i].Position)
		}

		if a[i].Label != b[i].Label {
			t.Errorf("peak %d label changed under scaling: %s vs %s",
				i, a[i].Label, b[i].Label)
		}

		if math.Abs(b[i].Prominence-3*a[i].Prominence) > 1e-9 {
			t.Errorf("peak %d prominence %g, want 3x %g",
				i, b[i].Prominence, a[i].Prominence)
		}
	}
}

func TestDetectSingleDip(t *testing.T) {
	axis := testutil.Axis(3000, 3500, 1)
	y := testutil.Flat(len(axis), 1.0)
	testutil.AddDip(y, axis, 3412, 0.2, 40)

	s, err := spectrum.New(axis, y, spectrum.Transmittance)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pks, err := Detect(s, Config{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(pks) != 1 {
		t.Fatalf("got %d peaks, want 1: %+v", len(pks), pks)
	}

	pk := pks[0]
	if math.Abs(pk.Position-3412) > 2 {
		t.Errorf("position = %g, want ~3412", pk.Position)
	}

	if math.Abs(pk.Prominence-0.2) > 0.02 {
		t.Errorf("prominence = %g, want ~0.2", pk.Prominence)
	}

	// A lone peak trivially occupies the top tercile.
	if pk.Label != Strong {
		t.Errorf("label = %s, want strong", pk.Label)
	}

	if pk.Broad {
		t.Errorf("band of width %g flagged broad", pk.Width)
	}
}

func TestDetectMergesClosePeaks(t *testing.T) {
	axis := testutil.Axis(1100, 1300, 1)
	y := testutil.Flat(len(axis), 1.0)
	testutil.AddDip(y, axis, 1210, 0.3, 3)
	testutil.AddDip(y, axis, 1215, 0.15, 3)

	s, err := spectrum.New(axis, y, spectrum.Transmittance)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pks, err := Detect(s, Config{MinSeparation: 8, SmoothingWindow: 1})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(pks) != 1 {
		t.Fatalf("got %d peaks, want the merged survivor only: %+v", len(pks), pks)
	}

	if math.Abs(pks[0].Position-1210) > 2 {
		t.Errorf("survivor at %g, want the deeper band at ~1210", pks[0].Position)
	}
}

func TestDetectNoisyFlat(t *testing.T) {
	axis := testutil.Axis(1000, 2000, 1)
	y := testutil.NoisyFlat(42, len(axis), 1.0, 0.005)

	s, err := spectrum.New(axis, y, spectrum.Transmittance)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = Detect(s, Config{MinProminence: 0.05})
	if !errors.Is(err, ErrNoPeaks) {
		t.Fatalf("Detect() error = %v, want ErrNoPeaks", err)
	}
}

func TestDetectTwoSamples(t *testing.T) {
	s, err := spectrum.New([]float64{1000, 2000}, []float64{90, 85}, spectrum.Transmittance)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = Detect(s, Config{})
	if !errors.Is(err, ErrNoPeaks) {
		t.Fatalf("Detect() error = %v, want ErrNoPeaks", err)
	}
}

func TestDetectAbsorbanceOrientation(t *testing.T) {
	axis := testutil.Axis(1500, 1900, 1)
	y := testutil.Flat(len(axis), 0.05)
	testutil.AddBump(y, axis, 1715, 0.8, 25)

	s, err := spectrum.New(axis, y, spectrum.Absorbance)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pks, err := Detect(s, Config{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(pks) != 1 {
		t.Fatalf("got %d peaks, want 1", len(pks))
	}

	if math.Abs(pks[0].Position-1715) > 2 {
		t.Errorf("position = %g, want ~1715", pks[0].Position)
	}
}

func TestDetectBroadBand(t *testing.T) {
	axis := testutil.Axis(2500, 4000, 1)
	y := testutil.Flat(len(axis), 1.0)
	testutil.AddDip(y, axis, 3300, 0.4, 300) // O-H style broad band
	testutil.AddDip(y, axis, 2900, 0.3, 30)

	s, err := spectrum.New(axis, y, spectrum.Transmittance)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pks, err := Detect(s, Config{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	var broad, sharp *Peak

	for i := range pks {
		switch {
		case math.Abs(pks[i].Position-3300) < 10:
			broad = &pks[i]
		case math.Abs(pks[i].Position-2900) < 10:
			sharp = &pks[i]
		}
	}

	if broad == nil || sharp == nil {
		t.Fatalf("missing expected bands in %+v", pks)
	}

	if !broad.Broad {
		t.Errorf("band at %g with width %g not flagged broad", broad.Position, broad.Width)
	}

	if sharp.Broad {
		t.Errorf("band at %g with width %g flagged broad", sharp.Position, sharp.Width)
	}
}

func TestDetectBroadThresholdIsStrict(t *testing.T) {
	axis := testutil.Axis(2500, 4000, 1)
	y := testutil.Flat(len(axis), 1.0)
	testutil.AddDip(y, axis, 3300, 0.4, 300)

	s, err := spectrum.New(axis, y, spectrum.Transmittance)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pks, err := Detect(s, Config{})
	if err != nil || len(pks) != 1 {
		t.Fatalf("Detect() = %v, %v; want one band", pks, err)
	}

	width := pks[0].Width

	// A threshold exactly at the measured width leaves the band un-flagged.
	pks, err = Detect(s, Config{BroadWidth: width})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if pks[0].Broad {
		t.Fatalf("band of width %g flagged broad at threshold %g", pks[0].Width, width)
	}

	// Any lower threshold flags it.
	pks, err = Detect(s, Config{BroadWidth: width * 0.99})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if !pks[0].Broad {
		t.Fatalf("band of width %g not flagged broad at threshold %g", pks[0].Width, width*0.99)
	}
}

func TestDetectMinWidthGate(t *testing.T) {
	axis := testutil.Axis(1000, 1100, 1)
	y := testutil.Flat(len(axis), 1.0)
	y[50] = 0.5 // single-sample spike, not a real band

	s, err := spectrum.New(axis, y, spectrum.Transmittance)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Without the gate the spike is reported.
	pks, err := Detect(s, Config{SmoothingWindow: 1})
	if err != nil || len(pks) != 1 {
		t.Fatalf("ungated Detect() = %v, %v; want one spike", pks, err)
	}

	// With the original tool's 4 cm-1 gate it is rejected.
	_, err = Detect(s, Config{SmoothingWindow: 1, MinWidth: 4})
	if !errors.Is(err, ErrNoPeaks) {
		t.Fatalf("gated Detect() error = %v, want ErrNoPeaks", err)
	}
}

func TestDetectInvalidConfig(t *testing.T) {
	s := fiveBands(t, 1)

	bad := []Config{
		{MinProminence: -1},
		{MinSeparation: -0.5},
		{SmoothingWindow: -3},
		{MinWidth: -2},
		{BroadWidth: -10},
	}

	for _, cfg := range bad {
		if _, err := Detect(s, cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("Detect(%+v) error = %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

func TestProminenceAt(t *testing.T) {
	// Two maxima: the taller one at index 5 measures from the global floor,
	// the shorter one at index 1 only from its own saddle.
	a := []float64{0, 3, 1, 2, 4, 6, 2, 0}

	if got := prominenceAt(a, 5); got != 6 {
		t.Fatalf("prominence of global max = %g, want 6", got)
	}

	if got := prominenceAt(a, 1); got != 2 {
		t.Fatalf("prominence of side peak = %g, want 2", got)
	}
}

func TestLocalMaximaPlateau(t *testing.T) {
	a := []float64{0, 1, 2, 2, 2, 1, 0}

	got := localMaxima(a)
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("localMaxima = %v, want [3] (plateau center)", got)
	}
}
