// Package palette converts magnitudes to colors: decibels against a global reference, clamped to a dynamic range,
// normalized to [0, 1] and resolved through a piecewise-linear gradient.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrInvalidPalette = errors.New("invalid palette")
	ErrUnknownPalette = errors.New("unknown palette")
	ErrInvalidColor   = errors.New("invalid color")
)

// Stop anchors a color at a position in [0, 1].
type Stop struct {
	Position float64
	Color    color.RGBA
}

// Palette is an immutable gradient. Stops are sorted, the first at 0 and the last at 1.
type Palette struct {
	stops []Stop
}

// New validates and sorts stops. Both ends of the gradient must be present.
func New(stops []Stop) (*Palette, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("%w: need at least two stops, got %d", ErrInvalidPalette, len(stops))
	}

	sorted := slices.Clone(stops)
	slices.SortStableFunc(sorted, func(a, b Stop) int {
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		}

		return 0
	})

	for _, s := range sorted {
		if math.IsNaN(s.Position) || s.Position < 0 || s.Position > 1 {
			return nil, fmt.Errorf("%w: stop position %v outside [0, 1]", ErrInvalidPalette, s.Position)
		}
	}

	if sorted[0].Position != 0 || sorted[len(sorted)-1].Position != 1 {
		return nil, fmt.Errorf("%w: stops must include positions 0 and 1", ErrInvalidPalette)
	}

	for i := range sorted {
		sorted[i].Color.A = 0xff
	}

	return &Palette{stops: sorted}, nil
}

// Stops returns a copy of the sorted stops.
func (p *Palette) Stops() []Stop {
	return slices.Clone(p.stops)
}

// At resolves t, clamped to [0, 1], to a color. A t sitting exactly on a stop returns that stop's color.
func (p *Palette) At(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return p.stops[0].Color
	}

	last := p.stops[len(p.stops)-1]
	if t >= 1 {
		return last.Color
	}

	for i := 1; i < len(p.stops); i++ {
		hi := p.stops[i]
		if t > hi.Position {
			continue
		}

		if t == hi.Position {
			return hi.Color
		}

		lo := p.stops[i-1]
		if t == lo.Position {
			return lo.Color
		}

		return lerp(lo.Color, hi.Color, (t-lo.Position)/(hi.Position-lo.Position))
	}

	return last.Color
}

func lerp(a, b color.RGBA, f float64) color.RGBA {
	channel := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + f*(float64(y)-float64(x))))
	}

	return color.RGBA{R: channel(a.R, b.R), G: channel(a.G, b.G), B: channel(a.B, b.B), A: 0xff}
}

// ParseHex parses "#RRGGBB" (the leading # is optional).
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Hex formats a color as "#RRGGBB".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
