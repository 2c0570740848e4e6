// Package rolloff extracts the spectral rolloff curve: per frame, the frequency below which a given share of the
// spectral energy lies.
package rolloff

import (
	"log/slog"

	"github.com/farcloser/sonogram/internal/types"
)

// DefaultFraction is the share of energy the rolloff frequency encloses.
const DefaultFraction = 0.85

// Extract computes one rolloff point per frame. A non-positive fraction falls back to DefaultFraction.
func Extract(spec *types.Spectrogram, fraction float64) types.RolloffCurve {
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultFraction
	}

	curve := make(types.RolloffCurve, spec.Frames)

	for i := range spec.Frames {
		curve[i] = types.RolloffPoint{
			Frame:     i,
			Frequency: spec.BinFrequency(Bin(spec.Frame(i), fraction)),
		}
	}

	slog.Debug("rolloff.Extract", "frames", spec.Frames, "median", curve.Median())

	return curve
}

// Bin returns the smallest bin whose cumulative energy reaches fraction of the frame total.
// A frame with no energy returns 0.
func Bin(spectrum []float64, fraction float64) int {
	var total float64
	for _, m := range spectrum {
		total += m * m
	}

	if total == 0 {
		return 0
	}

	threshold := fraction * total

	var cumulative float64

	for k, m := range spectrum {
		cumulative += m * m
		if cumulative >= threshold {
			return k
		}
	}

	return len(spectrum) - 1
}
