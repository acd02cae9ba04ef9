// Package report renders detected peaks as conventional IR writeup text.
package report

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-ir/peaks"
)

// Describe returns the parenthesized strength tag for one peak, e.g. "(w)"
// or "(s br)" for a strong broad band.
func Describe(pk peaks.Peak) string {
	if pk.Broad {
		return fmt.Sprintf("(%s br)", pk.Label.Letter())
	}

	return fmt.Sprintf("(%s)", pk.Label.Letter())
}

// Format joins peaks into the conventional comma-separated notation, e.g.
// "3412 (w), 2955 (w), 1210 (s br)". Peaks are rendered in the order given,
// which the detector already emits as descending wavenumber.
func Format(pks []peaks.Peak) string {
	parts := make([]string, len(pks))
	for i, pk := range pks {
		parts[i] = fmt.Sprintf("%.0f %s", pk.Position, Describe(pk))
	}

	return strings.Join(parts, ", ")
}

// Line returns the full writeup sentence, e.g.
// "IR (ATR): 3412 (w), 2955 (w).". An empty peak list yields a
// no-absorptions sentence so batch output stays one line per file.
func Line(pks []peaks.Peak) string {
	if len(pks) == 0 {
		return "IR (ATR): no significant absorptions."
	}

	return "IR (ATR): " + Format(pks) + "."
}
