// Package stft computes the short-time Fourier transform of a mono sample buffer.
//
// Frames are independent: the frame range is split into contiguous partitions, one per worker,
// and every worker writes only the rows of its own partition in the pre-allocated matrix.
// The output is identical whatever the worker count or completion order.
package stft

import (
	"errors"
	"fmt"
	"log/slog"
	"math/cmplx"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/sonogram/internal/types"
)

const (
	DefaultFrameSize = 2048
	DefaultWindow    = "hann"

	minFrameSize = 16
)

var (
	ErrEmptyInput = errors.New("empty input")
	ErrFrameSize  = errors.New("frame size must be a power of two")
	ErrHopSize    = errors.New("hop size out of range")
	ErrWindow     = errors.New("unknown window function")
)

type Options struct {
	FrameSize int    // power of two (default 2048)
	HopSize   int    // default FrameSize/4
	Window    string // default "hann"
	Workers   int    // default GOMAXPROCS
}

func DefaultOptions() Options {
	return Options{
		FrameSize: DefaultFrameSize,
		HopSize:   DefaultFrameSize / 4,
		Window:    DefaultWindow,
		Workers:   runtime.GOMAXPROCS(0),
	}
}

// FrameCount returns floor((numSamples - frameSize) / hop) + 1, and 1 for buffers not longer than one frame.
func FrameCount(numSamples, frameSize, hop int) int {
	if numSamples <= frameSize {
		return 1
	}

	return (numSamples-frameSize)/hop + 1
}

// Validate checks frame and hop sizes after defaults are applied.
func (o *Options) Validate() error {
	if o.FrameSize < minFrameSize || o.FrameSize&(o.FrameSize-1) != 0 {
		return fmt.Errorf("%w: %d", ErrFrameSize, o.FrameSize)
	}

	if o.HopSize <= 0 || o.HopSize > o.FrameSize {
		return fmt.Errorf("%w: %d (frame size %d)", ErrHopSize, o.HopSize, o.FrameSize)
	}

	return nil
}

func applyDefaults(opts *Options) {
	if opts.FrameSize == 0 {
		opts.FrameSize = DefaultFrameSize
	}

	if opts.HopSize == 0 {
		opts.HopSize = opts.FrameSize / 4
	}

	if opts.Window == "" {
		opts.Window = DefaultWindow
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
}

// Compute returns the linear magnitude spectrogram of buf, with FrameSize/2+1 bins per frame.
// The last frame is zero-padded when it runs past the end of the buffer.
func Compute(buf *types.SampleBuffer, opts Options) (*types.Spectrogram, error) {
	applyDefaults(&opts)

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if buf == nil || len(buf.Samples) == 0 {
		return nil, ErrEmptyInput
	}

	coeffs, err := Window(opts.Window, opts.FrameSize)
	if err != nil {
		return nil, err
	}

	frames := FrameCount(len(buf.Samples), opts.FrameSize, opts.HopSize)
	bins := opts.FrameSize/2 + 1
	spec := types.NewSpectrogram(frames, bins, buf.SampleRate, opts.FrameSize, opts.HopSize)

	workers := min(opts.Workers, frames)
	chunk := (frames + workers - 1) / workers

	slog.Debug("stft.Compute", "stage", "start", "frames", frames, "bins", bins, "workers", workers)

	var group errgroup.Group

	group.SetLimit(workers)

	for lo := 0; lo < frames; lo += chunk {
		hi := min(lo+chunk, frames)

		group.Go(func() error {
			computeRange(buf.Samples, spec, coeffs, lo, hi)

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("stft.Compute", "stage", "done")

	return spec, nil
}

// computeRange fills frames [lo, hi). Each call owns its FFT plan and frame buffer.
func computeRange(samples []float64, spec *types.Spectrogram, window []float64, lo, hi int) {
	size := spec.FrameSize
	fft := fourier.NewFFT(size)
	frame := make([]float64, size)
	coeffs := make([]complex128, spec.Bins)

	for i := lo; i < hi; i++ {
		start := min(i*spec.HopSize, len(samples))
		end := min(start+size, len(samples))

		copied := copy(frame, samples[start:end])
		clear(frame[copied:])

		for j := range frame {
			frame[j] *= window[j]
		}

		coeffs = fft.Coefficients(coeffs, frame)

		row := spec.Frame(i)
		for b, c := range coeffs {
			row[b] = cmplx.Abs(c)
		}
	}
}
