package palette

import (
	"fmt"
	"image/color"
	"math"
)

// Range is the dynamic range, in dB, spread over the gradient.
type Range struct {
	MinDb float64
	MaxDb float64
}

// DefaultRange is [-100, 0] dB.
var DefaultRange = Range{MinDb: -100, MaxDb: 0}

func (r Range) Validate() error {
	if math.IsNaN(r.MinDb) || math.IsNaN(r.MaxDb) || r.MinDb >= r.MaxDb {
		return fmt.Errorf("%w: dynamic range [%v, %v]", ErrInvalidPalette, r.MinDb, r.MaxDb)
	}

	return nil
}

// Decibels converts a linear magnitude to dB relative to ref, clamped to rng.
// A non-positive reference or magnitude yields the floor.
func Decibels(mag, ref float64, rng Range) float64 {
	if ref <= 0 || mag <= 0 {
		return rng.MinDb
	}

	return math.Min(math.Max(20*math.Log10(mag/ref), rng.MinDb), rng.MaxDb)
}

// Normalize maps a clamped dB value linearly onto [0, 1].
func Normalize(db float64, rng Range) float64 {
	return math.Min(math.Max((db-rng.MinDb)/(rng.MaxDb-rng.MinDb), 0), 1)
}

// Mapper binds a palette, a range and the global reference magnitude.
type Mapper struct {
	Palette   *Palette
	Range     Range
	Reference float64
}

// Level returns the normalized [0, 1] intensity of mag.
func (m Mapper) Level(mag float64) float64 {
	return Normalize(Decibels(mag, m.Reference, m.Range), m.Range)
}

// Color returns the color of mag.
func (m Mapper) Color(mag float64) color.RGBA {
	return m.Palette.At(m.Level(mag))
}
