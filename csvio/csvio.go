// Package csvio loads exported IR spectrometer CSV files into spectra.
//
// The expected layout matches common FTIR exports: an optional title line,
// a header row naming a "cm-1" wavenumber column plus an intensity column
// ("%T" for transmittance, "A"/"Abs" for absorbance), then one sample per
// row. Malformed rows are skipped, rows are sorted ascending by wavenumber,
// and duplicate wavenumbers are collapsed by averaging.
//
// Transmittance data is normalized by default so the deepest band spans the
// full scale, matching how spectra are conventionally reported; use [WithRaw]
// to keep instrument values untouched. An unnamed intensity column is read
// as transmittance; [WithUnit] overrides the detected unit.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-ir/spectrum"
)

// Errors returned by the loader.
var (
	ErrNoHeader = errors.New("csvio: no header row with a cm-1 column")
	ErrNoData   = errors.New("csvio: fewer than 2 valid data rows")
)

type loader struct {
	raw       bool
	unit      spectrum.Unit
	forceUnit bool
}

// Option configures the loader.
type Option func(*loader)

// WithRaw disables transmittance normalization, keeping raw instrument
// values.
func WithRaw() Option {
	return func(l *loader) {
		l.raw = true
	}
}

// WithUnit forces the intensity unit, overriding header detection. Useful
// for exports whose intensity column is unnamed, which would otherwise be
// read as transmittance.
func WithUnit(unit spectrum.Unit) Option {
	return func(l *loader) {
		l.unit = unit
		l.forceUnit = true
	}
}

// LoadFile reads and parses one CSV file.
func LoadFile(path string, opts ...Option) (*spectrum.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: %w", err)
	}
	defer f.Close()

	return Load(f, opts...)
}

// Load parses CSV data into a validated [spectrum.Spectrum].
func Load(r io.Reader, opts ...Option) (*spectrum.Spectrum, error) {
	var l loader
	for _, opt := range opts {
		if opt != nil {
			opt(&l)
		}
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records [][]string

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			// A syntax error poisons only its own row; later rows still parse.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}

			return nil, fmt.Errorf("csvio: %w", err)
		}

		records = append(records, rec)
	}

	headerIdx, wCol, yCol, unit, err := findHeader(records)
	if err != nil {
		return nil, err
	}

	if l.forceUnit {
		unit = l.unit
	}

	wavenumbers, intensities := parseRows(records[headerIdx+1:], wCol, yCol)
	if len(wavenumbers) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNoData, len(wavenumbers))
	}

	wavenumbers, intensities = sortAndDedup(wavenumbers, intensities)

	if unit == spectrum.Transmittance && !l.raw {
		normalize(intensities)
	}

	s, err := spectrum.New(wavenumbers, intensities, unit)
	if err != nil {
		return nil, fmt.Errorf("csvio: %w", err)
	}

	return s, nil
}

// findHeader locates the header row and resolves the wavenumber and
// intensity columns plus the intensity unit.
func findHeader(records [][]string) (row, wCol, yCol int, unit spectrum.Unit, err error) {
	for i, rec := range records {
		wCol = -1

		for j, field := range rec {
			if strings.EqualFold(strings.TrimSpace(field), "cm-1") {
				wCol = j
				break
			}
		}

		if wCol < 0 {
			continue
		}

		yCol, unit = findIntensityColumn(rec, wCol)
		if yCol < 0 {
			continue
		}

		return i, wCol, yCol, unit, nil
	}

	return 0, 0, 0, 0, ErrNoHeader
}

func findIntensityColumn(rec []string, wCol int) (int, spectrum.Unit) {
	for j, field := range rec {
		if j == wCol {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(field)) {
		case "%t", "t", "transmittance":
			return j, spectrum.Transmittance
		case "a", "abs", "absorbance":
			return j, spectrum.Absorbance
		}
	}

	// Unnamed second column: assume transmittance, the dominant export form.
	for j := range rec {
		if j != wCol {
			return j, spectrum.Transmittance
		}
	}

	return -1, spectrum.Transmittance
}

// parseRows extracts numeric pairs, silently skipping malformed rows.
func parseRows(records [][]string, wCol, yCol int) (wavenumbers, intensities []float64) {
	for _, rec := range records {
		if wCol >= len(rec) || yCol >= len(rec) {
			continue
		}

		w, err := strconv.ParseFloat(strings.TrimSpace(rec[wCol]), 64)
		if err != nil {
			continue
		}

		y, err := strconv.ParseFloat(strings.TrimSpace(rec[yCol]), 64)
		if err != nil {
			continue
		}

		if math.IsNaN(w) || math.IsInf(w, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}

		wavenumbers = append(wavenumbers, w)
		intensities = append(intensities, y)
	}

	return wavenumbers, intensities
}

// sortAndDedup orders samples by ascending wavenumber and averages the
// intensities of duplicate wavenumbers.
func sortAndDedup(wavenumbers, intensities []float64) ([]float64, []float64) {
	idx := make([]int, len(wavenumbers))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return wavenumbers[idx[a]] < wavenumbers[idx[b]]
	})

	outW := make([]float64, 0, len(wavenumbers))
	outY := make([]float64, 0, len(intensities))

	for i := 0; i < len(idx); {
		w := wavenumbers[idx[i]]

		sum := 0.0
		count := 0

		for ; i < len(idx) && wavenumbers[idx[i]] == w; i++ {
			sum += intensities[idx[i]]
			count++
		}

		outW = append(outW, w)
		outY = append(outY, sum/float64(count))
	}

	return outW, outY
}

// normalize rescales %T values so the deepest band reaches 0 %T:
// t' = 100 - 100 * (100 - t) / max(100 - t).
func normalize(intensities []float64) {
	inverted := make([]float64, len(intensities))
	for i, t := range intensities {
		inverted[i] = 100 - t
	}

	m := floats.Max(inverted)
	if m <= 0 {
		return
	}

	floats.Scale(100/m, inverted)

	for i, inv := range inverted {
		intensities[i] = 100 - inv
	}
}
