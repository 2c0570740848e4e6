package stft

import (
	"fmt"
	"slices"

	"github.com/mjibson/go-dsp/window"
)

//nolint:gochecknoglobals // lookup table, effectively const
var windows = map[string]func(int) []float64{
	"hann":        window.Hann,
	"hamming":     window.Hamming,
	"blackman":    window.Blackman,
	"bartlett":    window.Bartlett,
	"flattop":     window.FlatTop,
	"rectangular": window.Rectangular,
}

// Windows lists the supported window function names, sorted.
func Windows() []string {
	names := make([]string, 0, len(windows))
	for name := range windows {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Window returns the coefficients of the named window for the given length.
func Window(name string, size int) ([]float64, error) {
	fn, ok := windows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrWindow, name, Windows())
	}

	return fn(size), nil
}
