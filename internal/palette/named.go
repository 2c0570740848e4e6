package palette

import (
	"fmt"
	"maps"
	"slices"
)

// Default is the palette used when none is configured.
const Default = "audacity"

type hexStop struct {
	pos float64
	hex string
}

var named = map[string][]hexStop{
	"audacity":  {{0, "#000000"}, {0.4, "#0000FF"}, {0.7, "#FF0000"}, {1, "#FFFFFF"}},
	"magma":     {{0, "#000004"}, {0.25, "#3B0F70"}, {0.5, "#8C2981"}, {0.75, "#DE4968"}, {1, "#FCFDBF"}},
	"viridis":   {{0, "#440154"}, {0.25, "#3B528B"}, {0.5, "#21918C"}, {0.75, "#5EC962"}, {1, "#FDE725"}},
	"inferno":   {{0, "#000004"}, {0.25, "#420A68"}, {0.5, "#932667"}, {0.75, "#DD513A"}, {1, "#FCFFA4"}},
	"grayscale": {{0, "#000000"}, {1, "#FFFFFF"}},
}

// Names lists the built-in palettes, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(named))
}

// Named returns a built-in palette.
func Named(name string) (*Palette, error) {
	specs, ok := named[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrUnknownPalette, name, Names())
	}

	stops := make([]Stop, len(specs))

	for i, spec := range specs {
		c, err := ParseHex(spec.hex)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", name, err)
		}

		stops[i] = Stop{Position: spec.pos, Color: c}
	}

	return New(stops)
}
