// Package sonogram turns a decoded audio signal into an annotated spectrogram raster.
//
// Usage:
//
//	buf, meta, err := sonogram.Load(ctx, "track.flac", decode.Options{})
//	result, err := sonogram.Render(buf, meta, sonogram.DefaultOptions())
//	err = sink.SavePNG("track.png", result.Image)
//
// Render is CPU-bound and blocking: it fans out across workers internally and returns once the image is complete.
package sonogram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/sonogram/internal/audit/transcode"
	"github.com/farcloser/sonogram/internal/compose"
	"github.com/farcloser/sonogram/internal/decode"
	"github.com/farcloser/sonogram/internal/dsp/freqaxis"
	"github.com/farcloser/sonogram/internal/dsp/rolloff"
	"github.com/farcloser/sonogram/internal/dsp/stft"
	"github.com/farcloser/sonogram/internal/observe"
	"github.com/farcloser/sonogram/internal/palette"
	"github.com/farcloser/sonogram/internal/types"
)

// Load decodes path into a mono buffer. Any decoding failure is an ErrDecode; a file without samples is an
// ErrEmptyInput.
func Load(ctx context.Context, path string, opts decode.Options) (*types.SampleBuffer, *types.AudioMetadata, error) {
	buf, meta, err := decode.File(ctx, path, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if len(buf.Samples) == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no samples", ErrEmptyInput, filepath.Base(path))
	}

	return buf, meta, nil
}

// Render runs the whole pipeline on buf. meta is optional and only feeds the title and the verdict.
func Render(buf *types.SampleBuffer, meta *types.AudioMetadata, opts Options) (*Result, error) {
	if buf == nil || len(buf.Samples) == 0 {
		return nil, ErrEmptyInput
	}

	if buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrConfig, buf.SampleRate)
	}

	applyDefaults(&opts)

	ctx := context.Background()

	composer, err := compose.New(compose.Config{
		Width:   opts.Width,
		Height:  opts.Height,
		Palette: opts.Palette,
		Range:   opts.Range,
		Workers: opts.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	layout := composer.Layout()

	stftOpts := stft.Options{
		FrameSize: opts.FrameSize,
		HopSize:   opts.HopSize,
		Window:    opts.Window,
		Workers:   opts.Workers,
	}
	if stftOpts.HopSize == 0 {
		stftOpts.HopSize = AutoHop(len(buf.Samples), opts.FrameSize, layout.Body.Dx())
	}

	slog.Debug("sonogram.Render", "stage", "stft", "samples", len(buf.Samples),
		"frame", stftOpts.FrameSize, "hop", stftOpts.HopSize, "window", stftOpts.Window)

	stop := opts.Timings.Track(ctx, observe.StageSTFT)
	spec, err := stft.Compute(buf, stftOpts)
	stop()

	if err != nil {
		if errors.Is(err, stft.ErrEmptyInput) {
			return nil, fmt.Errorf("%w: %w", ErrEmptyInput, err)
		}

		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	// The floor comes from configuration, before the file's sample rate is known.
	if nyquist := float64(buf.SampleRate) / 2; opts.Scale == freqaxis.Log && opts.MinFrequency >= nyquist {
		floor := math.Min(freqaxis.DefaultMinFrequency, nyquist/2)
		slog.Warn("minimum frequency is above the Nyquist frequency, using the default",
			"min_frequency", opts.MinFrequency, "nyquist", nyquist, "using", floor)

		opts.MinFrequency = floor
	}

	axis, err := freqaxis.New(freqaxis.Config{
		Scale:        opts.Scale,
		Rows:         layout.Body.Dy(),
		SampleRate:   buf.SampleRate,
		FrameSize:    stftOpts.FrameSize,
		MinFrequency: opts.MinFrequency,
		Aggregation:  opts.Aggregation,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	result := &Result{
		Layout:      layout,
		Spectrogram: spec,
		Reference:   floats.Max(spec.Data),
		Metadata:    meta,
	}

	// Row mapping and rolloff only read the spectrogram.
	var group sync.WaitGroup

	group.Go(func() {
		defer opts.Timings.Track(ctx, observe.StageMap)()

		result.Rows = axis.Map(spec)
	})

	group.Go(func() {
		defer opts.Timings.Track(ctx, observe.StageRolloff)()

		result.Rolloff = rolloff.Extract(spec, rolloff.DefaultFraction)
	})

	group.Wait()

	stop = opts.Timings.Track(ctx, observe.StageAudit)
	result.Transcode = transcode.Analyze(spec, result.Rolloff.Median())
	judge(result)
	stop()

	input := compose.Input{
		Rows:      result.Rows,
		Reference: result.Reference,
		Axis:      axis,
		Duration:  buf.Duration(),
		Title:     opts.Title,
	}
	if input.Title == "" {
		input.Title = title(meta)
	}

	if opts.Rolloff {
		input.Rolloff = result.Rolloff
	}

	stop = opts.Timings.Track(ctx, observe.StageCompose)
	defer stop()

	out, err := composer.Compose(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if opts.Glyphs != nil {
		opts.Glyphs.Draw(out.Image, out.Labels)
	}

	result.Image = out.Image
	result.Labels = out.Labels

	slog.Debug("sonogram.Render", "stage", "done", "frames", spec.Frames, "reference", result.Reference,
		"issues", result.IssueCount)

	return result, nil
}

// AutoHop returns frameSize/4, raised when needed so that long signals produce about four frames per body column.
// The hop never exceeds the frame size.
func AutoHop(samples, frameSize, columns int) int {
	hop := max(frameSize/4, 1)

	if columns > 0 {
		target := columns * framesPerColumn
		hop = max(hop, (samples+target-1)/target)
	}

	return min(hop, frameSize)
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()

	if opts.Width == 0 {
		opts.Width = defaults.Width
	}

	if opts.Height == 0 {
		opts.Height = defaults.Height
	}

	if opts.Palette == nil {
		opts.Palette = defaults.Palette
	}

	if opts.Range == (palette.Range{}) {
		opts.Range = defaults.Range
	}

	if opts.Window == "" {
		opts.Window = defaults.Window
	}

	if opts.FrameSize == 0 {
		opts.FrameSize = defaults.FrameSize
	}

	if opts.MinFrequency == 0 {
		opts.MinFrequency = defaults.MinFrequency
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
}

func title(meta *types.AudioMetadata) string {
	if meta == nil {
		return ""
	}

	name := filepath.Base(meta.Path)
	if meta.Path == "" {
		name = "stdin"
	}

	text := fmt.Sprintf("%s  |  %s  %d Hz", name, meta.Codec, meta.SampleRate)
	if meta.BitsPerSample > 0 {
		text += fmt.Sprintf("  %d-bit", meta.BitsPerSample)
	}

	if meta.ChannelLayout != "" {
		text += "  " + meta.ChannelLayout
	}

	return text
}
