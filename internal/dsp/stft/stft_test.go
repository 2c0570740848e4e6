package stft_test

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/farcloser/sonogram/internal/dsp/stft"
	"github.com/farcloser/sonogram/internal/types"
)

func sine(freq float64, sampleRate, n int) *types.SampleBuffer {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}

	return &types.SampleBuffer{Samples: samples, SampleRate: sampleRate}
}

func TestFrameCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		samples   int
		frameSize int
		hop       int
		want      int
	}{
		{name: "one second at 44.1k", samples: 44100, frameSize: 2048, hop: 512, want: 83},
		{name: "exactly one frame", samples: 2048, frameSize: 2048, hop: 512, want: 1},
		{name: "shorter than a frame", samples: 100, frameSize: 2048, hop: 512, want: 1},
		{name: "one hop past a frame", samples: 2560, frameSize: 2048, hop: 512, want: 2},
		{name: "remainder is dropped", samples: 2559, frameSize: 2048, hop: 512, want: 1},
		{name: "half overlap", samples: 10000, frameSize: 1024, hop: 512, want: 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := stft.FrameCount(tt.samples, tt.frameSize, tt.hop); got != tt.want {
				t.Errorf("FrameCount(%d, %d, %d) = %d, want %d", tt.samples, tt.frameSize, tt.hop, got, tt.want)
			}
		})
	}
}

func TestComputeShape(t *testing.T) {
	t.Parallel()

	buf := sine(440, 44100, 44100)

	spec, err := stft.Compute(buf, stft.Options{FrameSize: 2048, HopSize: 512})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	want := (44100-2048)/512 + 1
	if spec.Frames != want {
		t.Errorf("frames = %d, want %d", spec.Frames, want)
	}

	if spec.Bins != 1025 {
		t.Errorf("bins = %d, want 1025", spec.Bins)
	}

	if len(spec.Data) != spec.Frames*spec.Bins {
		t.Errorf("arena length = %d, want %d", len(spec.Data), spec.Frames*spec.Bins)
	}
}

func TestComputeShortBufferIsPadded(t *testing.T) {
	t.Parallel()

	buf := sine(1000, 8000, 300)

	spec, err := stft.Compute(buf, stft.Options{FrameSize: 1024})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if spec.Frames != 1 {
		t.Fatalf("frames = %d, want 1", spec.Frames)
	}

	if slices.Max(spec.Frame(0)) == 0 {
		t.Error("padded frame lost the signal")
	}
}

func TestComputeEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := stft.Compute(&types.SampleBuffer{SampleRate: 44100}, stft.DefaultOptions())
	if !errors.Is(err, stft.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestComputeRejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	buf := sine(440, 44100, 4096)

	tests := []struct {
		name string
		opts stft.Options
		want error
	}{
		{name: "not a power of two", opts: stft.Options{FrameSize: 1000}, want: stft.ErrFrameSize},
		{name: "hop larger than frame", opts: stft.Options{FrameSize: 1024, HopSize: 2048}, want: stft.ErrHopSize},
		{name: "unknown window", opts: stft.Options{Window: "kaiser"}, want: stft.ErrWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := stft.Compute(buf, tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComputeSinePeak(t *testing.T) {
	t.Parallel()

	const sampleRate = 44100

	buf := sine(1000, sampleRate, sampleRate)

	spec, err := stft.Compute(buf, stft.Options{FrameSize: 2048, HopSize: 512})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantBin := 1000.0 * 2048 / sampleRate

	for i := range spec.Frames {
		frame := spec.Frame(i)
		peak := slices.Index(frame, slices.Max(frame))

		if math.Abs(float64(peak)-wantBin) > 1 {
			t.Fatalf("frame %d: peak bin %d (%.0f Hz), want near bin %.1f", i, peak, spec.BinFrequency(peak), wantBin)
		}
	}
}

func TestComputeSilence(t *testing.T) {
	t.Parallel()

	buf := &types.SampleBuffer{Samples: make([]float64, 44100), SampleRate: 44100}

	spec, err := stft.Compute(buf, stft.Options{FrameSize: 2048, HopSize: 512})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if slices.Max(spec.Data) != 0 {
		t.Error("silent buffer produced non-zero magnitudes")
	}
}

func TestComputeIsIndependentOfWorkerCount(t *testing.T) {
	t.Parallel()

	buf := sine(3000, 48000, 48000)
	for i := range buf.Samples {
		buf.Samples[i] += 0.1 * math.Sin(float64(i)*0.37)
	}

	single, err := stft.Compute(buf, stft.Options{FrameSize: 1024, HopSize: 256, Workers: 1})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for _, workers := range []int{2, 3, 7, 64} {
		parallel, err := stft.Compute(buf, stft.Options{FrameSize: 1024, HopSize: 256, Workers: workers})
		if err != nil {
			t.Fatalf("Compute(%d workers): %v", workers, err)
		}

		if !slices.Equal(single.Data, parallel.Data) {
			t.Errorf("%d workers: output differs from single worker", workers)
		}
	}
}

func TestWindowsAreKnown(t *testing.T) {
	t.Parallel()

	for _, name := range stft.Windows() {
		coeffs, err := stft.Window(name, 64)
		if err != nil {
			t.Errorf("Window(%q): %v", name, err)

			continue
		}

		if len(coeffs) != 64 {
			t.Errorf("Window(%q) length = %d, want 64", name, len(coeffs))
		}
	}
}
