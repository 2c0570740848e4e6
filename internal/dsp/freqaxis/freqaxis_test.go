package freqaxis_test

import (
	"errors"
	"testing"

	"github.com/farcloser/sonogram/internal/dsp/freqaxis"
	"github.com/farcloser/sonogram/internal/types"
)

func newMapper(t *testing.T, cfg freqaxis.Config) *freqaxis.Mapper {
	t.Helper()

	mapper, err := freqaxis.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return mapper
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cases := []freqaxis.Config{
		{Rows: 0, SampleRate: 44100, FrameSize: 2048},
		{Rows: 100, SampleRate: 0, FrameSize: 2048},
		{Rows: 100, SampleRate: 44100, FrameSize: 1},
		{Scale: freqaxis.Log, Rows: 100, SampleRate: 8000, FrameSize: 2048, MinFrequency: 4000},
	}

	for _, cfg := range cases {
		if _, err := freqaxis.New(cfg); !errors.Is(err, freqaxis.ErrInvalidConfig) {
			t.Errorf("New(%+v) error = %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

func TestLogPositionIsStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	mapper := newMapper(t, freqaxis.Config{Scale: freqaxis.Log, Rows: 1024, SampleRate: 44100, FrameSize: 2048})

	prev := -1.0

	for bin := 1; bin <= 1024; bin++ {
		freq := float64(bin) * 44100 / 2048

		pos := mapper.Position(freq)
		if pos <= prev {
			t.Fatalf("bin %d: position %f not above %f", bin, pos, prev)
		}

		prev = pos
	}
}

func TestLogBinRowNeverDecreases(t *testing.T) {
	t.Parallel()

	// More rows than bins exercises carry-forward, fewer exercises aggregation.
	for _, cfg := range []freqaxis.Config{
		{Scale: freqaxis.Log, Rows: 1024, SampleRate: 44100, FrameSize: 512},
		{Scale: freqaxis.Log, Rows: 200, SampleRate: 44100, FrameSize: 8192},
		{Scale: freqaxis.Log, Rows: 300, SampleRate: 96000, FrameSize: 2048, MinFrequency: 50},
	} {
		mapper := newMapper(t, cfg)
		prev := 0

		for bin := range cfg.FrameSize/2 + 1 {
			row := mapper.BinRow(bin)
			if row < prev {
				t.Fatalf("%+v: bin %d maps to row %d below row %d of bin %d", cfg, bin, row, prev, bin-1)
			}

			if row < 0 || row >= cfg.Rows {
				t.Fatalf("%+v: bin %d maps to row %d outside [0, %d)", cfg, bin, row, cfg.Rows)
			}

			prev = row
		}

		if last := mapper.BinRow(cfg.FrameSize / 2); last != cfg.Rows-1 {
			t.Errorf("%+v: Nyquist bin on row %d, want %d", cfg, last, cfg.Rows-1)
		}
	}
}

func TestLogBelowFloorClampsToBottom(t *testing.T) {
	t.Parallel()

	mapper := newMapper(t, freqaxis.Config{Scale: freqaxis.Log, Rows: 512, SampleRate: 48000, FrameSize: 4096})

	for _, freq := range []float64{0, 5, 19.99, 20} {
		if got := mapper.Row(freq); got != 0 {
			t.Errorf("Row(%f) = %d, want 0", freq, got)
		}
	}

	if got := mapper.Row(24000); got != 511 {
		t.Errorf("Row(nyquist) = %d, want 511", got)
	}
}

func TestLinearBinRowIsProportional(t *testing.T) {
	t.Parallel()

	mapper := newMapper(t, freqaxis.Config{Scale: freqaxis.Linear, Rows: 512, SampleRate: 44100, FrameSize: 2048})

	for _, tc := range []struct{ bin, row int }{{0, 0}, {2, 1}, {512, 256}, {1023, 511}, {1024, 511}} {
		if got := mapper.BinRow(tc.bin); got != tc.row {
			t.Errorf("BinRow(%d) = %d, want %d", tc.bin, got, tc.row)
		}
	}
}

func TestFrequencyInvertsPosition(t *testing.T) {
	t.Parallel()

	for _, scale := range []freqaxis.Scale{freqaxis.Linear, freqaxis.Log} {
		mapper := newMapper(t, freqaxis.Config{Scale: scale, Rows: 800, SampleRate: 44100, FrameSize: 2048})

		for _, freq := range []float64{100, 1000, 10000} {
			got := mapper.Frequency(mapper.Position(freq))
			if got < freq*0.999 || got > freq*1.001 {
				t.Errorf("%s: Frequency(Position(%f)) = %f", scale, freq, got)
			}
		}
	}
}

func TestMapFrameAggregatesMax(t *testing.T) {
	t.Parallel()

	// 8 rows over 17 bins: two bins per row, plus nyquist folding into the top row.
	mapper := newMapper(t, freqaxis.Config{Scale: freqaxis.Linear, Rows: 8, SampleRate: 3200, FrameSize: 32})

	spectrum := make([]float64, 17)
	spectrum[2] = 1
	spectrum[3] = 5
	spectrum[16] = 9

	dst := make([]float64, 8)
	mapper.MapFrame(dst, spectrum)

	if dst[1] != 5 {
		t.Errorf("row 1 = %f, want 5", dst[1])
	}

	if dst[7] != 9 {
		t.Errorf("row 7 = %f, want 9", dst[7])
	}
}

func TestMapFrameAggregatesMean(t *testing.T) {
	t.Parallel()

	mapper := newMapper(t, freqaxis.Config{
		Scale: freqaxis.Linear, Rows: 8, SampleRate: 3200, FrameSize: 32, Aggregation: freqaxis.Mean,
	})

	spectrum := make([]float64, 17)
	spectrum[2] = 1
	spectrum[3] = 5

	dst := make([]float64, 8)
	mapper.MapFrame(dst, spectrum)

	if dst[1] != 3 {
		t.Errorf("row 1 = %f, want 3", dst[1])
	}
}

func TestMapFrameCarriesForward(t *testing.T) {
	t.Parallel()

	// More rows than bins: most rows receive nothing and repeat the row below.
	mapper := newMapper(t, freqaxis.Config{Scale: freqaxis.Linear, Rows: 64, SampleRate: 1600, FrameSize: 16})

	spectrum := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}

	dst := make([]float64, 64)
	for i := range dst {
		dst[i] = -1
	}

	mapper.MapFrame(dst, spectrum)

	for r, v := range dst {
		if v < 1 {
			t.Fatalf("row %d = %f, want a carried value", r, v)
		}

		if r > 0 && v < dst[r-1] {
			t.Fatalf("row %d = %f below row %d = %f", r, v, r-1, dst[r-1])
		}
	}
}

func TestMapShape(t *testing.T) {
	t.Parallel()

	spec := types.NewSpectrogram(10, 1025, 44100, 2048, 512)
	for i := range spec.Data {
		spec.Data[i] = 1
	}

	mapper := newMapper(t, freqaxis.Config{Scale: freqaxis.Log, Rows: 300, SampleRate: 44100, FrameSize: 2048})

	out := mapper.Map(spec)
	if out.Frames != 10 || out.Rows != 300 {
		t.Fatalf("shape = %dx%d, want 10x300", out.Frames, out.Rows)
	}

	for i, v := range out.Data {
		if v != 1 {
			t.Fatalf("cell %d = %f, want 1", i, v)
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	if s, err := freqaxis.ParseScale("linear"); err != nil || s != freqaxis.Linear {
		t.Errorf("ParseScale(linear) = %v, %v", s, err)
	}

	if _, err := freqaxis.ParseScale("mel"); err == nil {
		t.Error("ParseScale(mel) succeeded")
	}

	if a, err := freqaxis.ParseAggregation("mean"); err != nil || a != freqaxis.Mean {
		t.Errorf("ParseAggregation(mean) = %v, %v", a, err)
	}
}
