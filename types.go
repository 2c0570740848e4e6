package sonogram

import (
	"errors"
	"fmt"
	"image"
	"runtime"

	"github.com/farcloser/sonogram/internal/compose"
	"github.com/farcloser/sonogram/internal/dsp/freqaxis"
	"github.com/farcloser/sonogram/internal/dsp/stft"
	"github.com/farcloser/sonogram/internal/glyph"
	"github.com/farcloser/sonogram/internal/observe"
	"github.com/farcloser/sonogram/internal/palette"
	"github.com/farcloser/sonogram/internal/types"
)

// Error kinds surfaced at the pipeline boundary. Match them with errors.Is.
var (
	ErrDecode     = errors.New("cannot decode audio")
	ErrEmptyInput = errors.New("empty input")
	ErrConfig     = errors.New("invalid configuration")
	ErrOutput     = errors.New("cannot write output")
)

const (
	DefaultWidth  = 2048
	DefaultHeight = 1024

	// Auto hop aims for this many frames per body column.
	framesPerColumn = 4
)

// Options configures one render.
type Options struct {
	Width  int
	Height int

	Scale        freqaxis.Scale
	Aggregation  freqaxis.Aggregation
	MinFrequency float64 // log floor in Hz (default 20)

	Palette *palette.Palette // default audacity
	Range   palette.Range    // zero value = [-100, 0] dB

	Window    string // default hann
	FrameSize int    // power of two (default 2048)
	HopSize   int    // 0 = auto

	Rolloff bool // draw the rolloff overlay

	// Title overrides the title derived from the metadata.
	Title string

	// Glyphs rasterizes labels; nil leaves them out of the image (they remain in Result.Labels).
	Glyphs *glyph.Renderer

	// Timings records stage durations; nil disables it.
	Timings *observe.Timings

	Workers int // default GOMAXPROCS
}

// defaultPalette panics if the builtin table is broken.
func defaultPalette() *palette.Palette {
	named, err := palette.Named(palette.Default)
	if err != nil {
		panic(fmt.Sprintf("builtin palette %q: %v", palette.Default, err))
	}

	return named
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Scale:        freqaxis.Log,
		Aggregation:  freqaxis.Max,
		MinFrequency: freqaxis.DefaultMinFrequency,
		Palette:      defaultPalette(),
		Range:        palette.DefaultRange,
		Window:       stft.DefaultWindow,
		FrameSize:    stft.DefaultFrameSize,
		Workers:      runtime.GOMAXPROCS(0),
	}
}

// Result contains the rendered image and everything derived on the way.
type Result struct {
	Image  *image.RGBA
	Labels []compose.Label
	Layout compose.Layout

	// Linear magnitudes, one frame per hop.
	Spectrogram *types.Spectrogram
	// Magnitudes mapped onto the body rows.
	Rows *types.RowMatrix
	// Global maximum magnitude; 0 for silence.
	Reference float64
	// Computed even when the overlay is disabled.
	Rolloff types.RolloffCurve

	Transcode *types.TranscodeResult
	Metadata  *types.AudioMetadata

	// Authenticity verdict
	Issues        []Issue
	IssueCount    int
	WorstSeverity Severity
}

// Decibels returns the clamped dB level of a magnitude against the global reference.
func (r *Result) Decibels(magnitude float64, rng palette.Range) float64 {
	return palette.Decibels(magnitude, r.Reference, rng)
}
