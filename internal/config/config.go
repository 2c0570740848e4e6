// Package config resolves the run configuration from built-in defaults, the YAML configuration file and command
// line overrides, in increasing order of precedence.
package config

import (
	"github.com/farcloser/sonogram/internal/dsp/freqaxis"
	"github.com/farcloser/sonogram/internal/dsp/stft"
	"github.com/farcloser/sonogram/internal/palette"
)

// File is the on-disk layout.
type File struct {
	Defaults Defaults `yaml:"defaults"`
	Colors   *Colors  `yaml:"colors,omitempty"`
	FontPath string   `yaml:"font_path,omitempty"`
}

type Defaults struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	Scale        string  `yaml:"scale"`
	Palette      string  `yaml:"palette"`
	Rolloff      bool    `yaml:"rolloff"`
	Verbose      bool    `yaml:"verbose"`
	Window       string  `yaml:"window"`
	FFTSize      int     `yaml:"fft_size"`
	HopSize      int     `yaml:"hop_size"`
	Aggregation  string  `yaml:"aggregation"`
	MinDb        float64 `yaml:"min_db"`
	MaxDb        float64 `yaml:"max_db"`
	MinFrequency float64 `yaml:"min_frequency"`
}

// Colors replaces the named palette with explicit stops.
type Colors struct {
	Stops []Stop `yaml:"stops"`
}

type Stop struct {
	Position float64 `yaml:"position"`
	Color    string  `yaml:"color"` // #RRGGBB
}

// Default returns the built-in configuration file.
func Default() File {
	return File{
		Defaults: Defaults{
			Width:        2048,
			Height:       1024,
			Scale:        freqaxis.Log.String(),
			Palette:      palette.Default,
			Window:       stft.DefaultWindow,
			FFTSize:      stft.DefaultFrameSize,
			Aggregation:  freqaxis.Max.String(),
			MinDb:        palette.DefaultRange.MinDb,
			MaxDb:        palette.DefaultRange.MaxDb,
			MinFrequency: freqaxis.DefaultMinFrequency,
		},
	}
}

// Config is the resolved, validated configuration of one run.
type Config struct {
	Width        int
	Height       int
	Scale        freqaxis.Scale
	Palette      *palette.Palette
	PaletteName  string // "custom" when colors.stops is set
	Rolloff      bool
	Verbose      bool
	Window       string
	FFTSize      int
	HopSize      int
	Aggregation  freqaxis.Aggregation
	Range        palette.Range
	MinFrequency float64
	FontPath     string

	// Source is the file the values came from; empty when the built-in defaults were used.
	Source string
}

// Overrides holds command line values; nil fields were not set by the user.
type Overrides struct {
	Width   *int
	Height  *int
	Scale   *string
	Palette *string
	Rolloff *bool
	Verbose *bool
	Window  *string
	FFTSize *int
	HopSize *int
}

func (o Overrides) apply(file *File) {
	d := &file.Defaults

	set(&d.Width, o.Width)
	set(&d.Height, o.Height)
	set(&d.Scale, o.Scale)
	set(&d.Rolloff, o.Rolloff)
	set(&d.Verbose, o.Verbose)
	set(&d.Window, o.Window)
	set(&d.FFTSize, o.FFTSize)
	set(&d.HopSize, o.HopSize)

	if o.Palette != nil {
		d.Palette = *o.Palette
		// An explicit palette name wins over custom stops from the file.
		file.Colors = nil
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
