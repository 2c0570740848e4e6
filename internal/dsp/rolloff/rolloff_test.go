package rolloff_test

import (
	"testing"

	"github.com/farcloser/sonogram/internal/dsp/rolloff"
	"github.com/farcloser/sonogram/internal/types"
)

func TestBin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spectrum []float64
		want     int
	}{
		{"silence", []float64{0, 0, 0, 0}, 0},
		{"single peak", []float64{0, 0, 3, 0}, 2},
		{"flat", []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, 8},
		{"heavy low end", []float64{10, 1, 1, 1}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := rolloff.Bin(tt.spectrum, rolloff.DefaultFraction); got != tt.want {
				t.Errorf("Bin(%v) = %d, want %d", tt.spectrum, got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	spec := types.NewSpectrogram(3, 5, 8000, 8, 4)
	// frame 0 silent, frame 1 all energy in bin 3, frame 2 flat.
	copy(spec.Frame(1), []float64{0, 0, 0, 2, 0})
	copy(spec.Frame(2), []float64{1, 1, 1, 1, 1})

	curve := rolloff.Extract(spec, 0)
	if len(curve) != 3 {
		t.Fatalf("len = %d, want 3", len(curve))
	}

	want := []float64{0, 3000, 4000}
	for i, p := range curve {
		if p.Frame != i {
			t.Errorf("point %d has frame %d", i, p.Frame)
		}

		if p.Frequency != want[i] {
			t.Errorf("frame %d: frequency = %f, want %f", i, p.Frequency, want[i])
		}
	}
}

func TestExtractBoundedByNyquist(t *testing.T) {
	t.Parallel()

	spec := types.NewSpectrogram(1, 1025, 44100, 2048, 512)
	spec.Frame(0)[1024] = 1

	curve := rolloff.Extract(spec, rolloff.DefaultFraction)
	if curve[0].Frequency != spec.Nyquist() {
		t.Errorf("frequency = %f, want %f", curve[0].Frequency, spec.Nyquist())
	}
}
