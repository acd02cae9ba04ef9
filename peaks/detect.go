package peaks

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-ir/spectrum"
)

// Detect finds absorption peaks in the spectrum and labels their relative
// intensity.
//
// It is a pure function of (spectrum, config): identical inputs always yield
// identical peaks, in descending wavenumber order. When no candidate clears
// the configured gates it returns [ErrNoPeaks], which callers may treat as an
// empty result rather than a failure.
func Detect(s *spectrum.Spectrum, cfg Config) ([]Peak, error) {
	cfg, err := cfg.withDefaults(s)
	if err != nil {
		return nil, err
	}

	wavenumbers := s.Wavenumbers()

	// Orient the signal so absorption peaks are always local maxima.
	height := s.Intensities()
	if s.Unit() == spectrum.Transmittance {
		for i, y := range height {
			height[i] = -y
		}
	}

	smoothed, err := smooth(height, cfg.SmoothingWindow)
	if err != nil {
		return nil, err
	}

	// Candidates come from the smoothed signal, but prominence and width are
	// measured on the original samples near each smoothed extremum.
	candidates := refine(localMaxima(smoothed), height, cfg.SmoothingWindow/2)

	type scored struct {
		idx   int
		prom  float64
		width float64
	}

	var survivors []scored

	for _, idx := range candidates {
		prom := prominenceAt(height, idx)
		if prom <= 0 || prom < cfg.MinProminence {
			continue
		}

		width := halfProminenceWidth(wavenumbers, height, idx, prom)
		if cfg.MinWidth > 0 && width < cfg.MinWidth {
			continue
		}

		survivors = append(survivors, scored{idx: idx, prom: prom, width: width})
	}

	// Merge: walk candidates by descending prominence and accept each one
	// only if it keeps the minimum separation to everything accepted so far.
	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].prom != survivors[j].prom {
			return survivors[i].prom > survivors[j].prom
		}

		return wavenumbers[survivors[i].idx] > wavenumbers[survivors[j].idx]
	})

	var accepted []scored

	for _, c := range survivors {
		ok := true

		for _, a := range accepted {
			d := wavenumbers[c.idx] - wavenumbers[a.idx]
			if d < 0 {
				d = -d
			}

			if d < cfg.MinSeparation {
				ok = false
				break
			}
		}

		if ok {
			accepted = append(accepted, c)
		}
	}

	if len(accepted) == 0 {
		return nil, ErrNoPeaks
	}

	// Tercile cut points over the surviving prominences. Strict comparisons
	// put peaks sitting on a cut (including a lone peak) in the band above.
	proms := make([]float64, len(accepted))
	for i, c := range accepted {
		proms[i] = c.prom
	}

	sort.Float64s(proms)

	q33 := stat.Quantile(1.0/3.0, stat.Empirical, proms, nil)
	q66 := stat.Quantile(2.0/3.0, stat.Empirical, proms, nil)

	result := make([]Peak, len(accepted))

	for i, c := range accepted {
		label := Strong

		switch {
		case c.prom < q33:
			label = Weak
		case c.prom < q66:
			label = Medium
		}

		result[i] = Peak{
			Position:   wavenumbers[c.idx],
			Prominence: c.prom,
			Width:      c.width,
			Label:      label,
			Broad:      c.width > cfg.BroadWidth,
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Position > result[j].Position
	})

	return result, nil
}

// localMaxima returns the indices of local maxima, counting each flat
// plateau once at its center. Endpoints never qualify.
func localMaxima(a []float64) []int {
	var out []int

	n := len(a)
	i := 1

	for i < n-1 {
		if a[i] <= a[i-1] {
			i++
			continue
		}

		// Rising edge at i; extend across any plateau.
		j := i
		for j < n-1 && a[j+1] == a[j] {
			j++
		}

		if j < n-1 && a[j+1] < a[j] {
			out = append(out, (i+j)/2)
		}

		i = j + 1
	}

	return out
}

// refine moves each candidate to the strongest original sample within half a
// smoothing window, deduplicating candidates that collapse onto the same
// sample.
func refine(candidates []int, height []float64, half int) []int {
	seen := make(map[int]struct{}, len(candidates))
	out := make([]int, 0, len(candidates))

	for _, c := range candidates {
		lo := c - half
		if lo < 0 {
			lo = 0
		}

		hi := c + half
		if hi > len(height)-1 {
			hi = len(height) - 1
		}

		best := lo
		for j := lo + 1; j <= hi; j++ {
			if height[j] > height[best] {
				best = j
			}
		}

		if _, dup := seen[best]; dup {
			continue
		}

		seen[best] = struct{}{}
		out = append(out, best)
	}

	sort.Ints(out)

	return out
}

// prominenceAt measures topographic prominence: walk outward from the peak
// on each side until a higher sample (or the signal edge) is reached,
// tracking the lowest level passed; the prominence is the peak height above
// the higher of the two side minima.
func prominenceAt(a []float64, p int) float64 {
	ref := a[p]

	leftBase := ref
	for j := p - 1; j >= 0; j-- {
		if a[j] > ref {
			break
		}

		if a[j] < leftBase {
			leftBase = a[j]
		}
	}

	rightBase := ref
	for j := p + 1; j < len(a); j++ {
		if a[j] > ref {
			break
		}

		if a[j] < rightBase {
			rightBase = a[j]
		}
	}

	base := leftBase
	if rightBase > base {
		base = rightBase
	}

	return ref - base
}

// halfProminenceWidth returns the full width of the peak at half prominence
// in wavenumber units, interpolating the crossings linearly. Sides that
// never drop below the half level extend to the signal edge.
func halfProminenceWidth(w, a []float64, p int, prom float64) float64 {
	ref := a[p] - prom/2

	left := w[0]
	for j := p; j > 0; j-- {
		if a[j-1] <= ref {
			t := (a[j] - ref) / (a[j] - a[j-1])
			left = w[j] + t*(w[j-1]-w[j])

			break
		}
	}

	right := w[len(w)-1]
	for j := p; j < len(w)-1; j++ {
		if a[j+1] <= ref {
			t := (a[j] - ref) / (a[j] - a[j+1])
			right = w[j] + t*(w[j+1]-w[j])

			break
		}
	}

	return right - left
}
