// Package freqaxis maps spectrum bins onto a fixed number of pixel rows, on a linear or logarithmic frequency scale.
package freqaxis

import (
	"errors"
	"fmt"
	"math"

	"github.com/farcloser/sonogram/internal/types"
)

// DefaultMinFrequency is the floor of the logarithmic scale, in Hz.
const DefaultMinFrequency = 20.0

var ErrInvalidConfig = errors.New("invalid frequency axis")

// Scale is the frequency scale of the vertical axis.
type Scale int

const (
	Log Scale = iota
	Linear
)

func (s Scale) String() string {
	switch s {
	case Log:
		return "log"
	case Linear:
		return "linear"
	}

	return "unknown"
}

// ParseScale converts a string to a Scale value.
func ParseScale(s string) (Scale, error) {
	switch s {
	case "log", "logarithmic", "":
		return Log, nil
	case "linear", "lin":
		return Linear, nil
	default:
		return 0, fmt.Errorf("unknown scale %q (valid: linear, log)", s)
	}
}

// Aggregation decides how bins collapsing into one row are combined.
type Aggregation int

const (
	Max Aggregation = iota
	Mean
)

func (a Aggregation) String() string {
	switch a {
	case Max:
		return "max"
	case Mean:
		return "mean"
	}

	return "unknown"
}

// ParseAggregation converts a string to an Aggregation value.
func ParseAggregation(s string) (Aggregation, error) {
	switch s {
	case "max", "":
		return Max, nil
	case "mean", "average":
		return Mean, nil
	default:
		return 0, fmt.Errorf("unknown aggregation %q (valid: max, mean)", s)
	}
}

type Config struct {
	Scale        Scale
	Rows         int
	SampleRate   int
	FrameSize    int
	MinFrequency float64 // log floor; default 20 Hz
	Aggregation  Aggregation
}

// Mapper holds the precomputed bin ranges of every row.
type Mapper struct {
	cfg     Config
	nyquist float64
	bins    int
	// rows[r] is the half-open bin range [start, end) landing on row r; empty when start == end.
	rows [][2]int
}

func New(cfg Config) (*Mapper, error) {
	if cfg.MinFrequency == 0 {
		cfg.MinFrequency = DefaultMinFrequency
	}

	if cfg.Rows <= 0 || cfg.SampleRate <= 0 || cfg.FrameSize < 2 {
		return nil, fmt.Errorf("%w: rows %d, sample rate %d, frame size %d",
			ErrInvalidConfig, cfg.Rows, cfg.SampleRate, cfg.FrameSize)
	}

	nyquist := float64(cfg.SampleRate) / 2
	if cfg.Scale == Log && (cfg.MinFrequency < 0 || cfg.MinFrequency >= nyquist) {
		return nil, fmt.Errorf("%w: minimum frequency %.1f Hz outside (0, %.1f)",
			ErrInvalidConfig, cfg.MinFrequency, nyquist)
	}

	mapper := &Mapper{
		cfg:     cfg,
		nyquist: nyquist,
		bins:    cfg.FrameSize/2 + 1,
		rows:    make([][2]int, cfg.Rows),
	}

	// Rows are non-decreasing in bin index, so every row owns a contiguous range.
	for bin := range mapper.bins {
		r := mapper.BinRow(bin)
		if mapper.rows[r][1] == 0 {
			mapper.rows[r][0] = bin
		}

		mapper.rows[r][1] = bin + 1
	}

	return mapper, nil
}

// Rows returns the number of output rows.
func (m *Mapper) Rows() int {
	return m.cfg.Rows
}

// Scale returns the configured scale.
func (m *Mapper) Scale() Scale {
	return m.cfg.Scale
}

// Nyquist returns the top of the axis in Hz.
func (m *Mapper) Nyquist() float64 {
	return m.nyquist
}

// MinFrequency returns the bottom of the logarithmic axis in Hz.
func (m *Mapper) MinFrequency() float64 {
	return m.cfg.MinFrequency
}

// Position maps a frequency to a continuous row coordinate in [0, Rows], 0 being the bottom edge.
// On the logarithmic scale, frequencies below the floor sit at 0.
func (m *Mapper) Position(freq float64) float64 {
	rows := float64(m.cfg.Rows)

	var pos float64

	switch m.cfg.Scale {
	case Linear:
		pos = freq / m.nyquist * rows
	case Log:
		f := math.Max(freq, m.cfg.MinFrequency)
		pos = math.Log(f/m.cfg.MinFrequency) / math.Log(m.nyquist/m.cfg.MinFrequency) * rows
	}

	return math.Min(math.Max(pos, 0), rows)
}

// Frequency is the inverse of Position.
func (m *Mapper) Frequency(pos float64) float64 {
	ratio := pos / float64(m.cfg.Rows)

	if m.cfg.Scale == Linear {
		return ratio * m.nyquist
	}

	return m.cfg.MinFrequency * math.Pow(m.nyquist/m.cfg.MinFrequency, ratio)
}

// Row returns the row index in [0, Rows) a frequency lands on.
func (m *Mapper) Row(freq float64) int {
	return min(int(m.Position(freq)), m.cfg.Rows-1)
}

// BinRow returns the row a spectrum bin lands on.
func (m *Mapper) BinRow(bin int) int {
	return m.Row(float64(bin) * float64(m.cfg.SampleRate) / float64(m.cfg.FrameSize))
}

// MapFrame aggregates one frame's bins into dst, which must hold Rows values.
// A row that receives no bin repeats the value of the row below it.
func (m *Mapper) MapFrame(dst, spectrum []float64) {
	for r, span := range m.rows {
		start, end := span[0], min(span[1], len(spectrum))
		if start >= end {
			if r > 0 {
				dst[r] = dst[r-1]
			} else {
				dst[r] = 0
			}

			continue
		}

		switch m.cfg.Aggregation {
		case Mean:
			var sum float64
			for _, v := range spectrum[start:end] {
				sum += v
			}

			dst[r] = sum / float64(end-start)
		default:
			peak := spectrum[start]
			for _, v := range spectrum[start+1 : end] {
				peak = math.Max(peak, v)
			}

			dst[r] = peak
		}
	}
}

// Map applies MapFrame to every frame of spec.
func (m *Mapper) Map(spec *types.Spectrogram) *types.RowMatrix {
	out := types.NewRowMatrix(spec.Frames, m.cfg.Rows)

	for i := range spec.Frames {
		m.MapFrame(out.Frame(i), spec.Frame(i))
	}

	return out
}
