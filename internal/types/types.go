//nolint:staticcheck // too dumb on Db vs. DB
package types

import (
	"slices"
)

type BitDepth uint

const (
	Depth8  BitDepth = 8
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes raw interleaved little-endian signed PCM, as produced by ffmpeg extraction.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// SampleBuffer is the decoded signal, downmixed to mono, normalized to [-1, 1].
// It is immutable once decoding returns and may be read concurrently.
type SampleBuffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b *SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}

	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// AudioMetadata describes the source file, before downmix.
type AudioMetadata struct {
	Path          string
	Codec         string
	SampleRate    int
	Channels      int
	ChannelLayout string
	BitsPerSample int     // 0 for lossy codecs
	BitRate       int64   // bits per second; 0 when unknown
	Duration      float64 // seconds
	Frames        uint64  // samples per channel

	// Only set for integer sources (FLAC, PCM WAV).
	BitDepth *BitDepthAuthenticity
}

// BitDepthAuthenticity contains results returned by the bitdepth analyzer.
type BitDepthAuthenticity struct {
	Claimed   BitDepth // what the file says it is
	Effective BitDepth // what it actually is
	IsPadded  bool     // Effective < Claimed
	Samples   uint64   // total samples analyzed
}

// Spectrogram is a (frame, bin) matrix of linear magnitudes stored in a single arena, frame-major.
// Every frame holds exactly Bins values.
type Spectrogram struct {
	Data       []float64
	Frames     int
	Bins       int
	SampleRate int
	FrameSize  int
	HopSize    int
}

// NewSpectrogram allocates the arena for frames x bins values.
func NewSpectrogram(frames, bins, sampleRate, frameSize, hopSize int) *Spectrogram {
	return &Spectrogram{
		Data:       make([]float64, frames*bins),
		Frames:     frames,
		Bins:       bins,
		SampleRate: sampleRate,
		FrameSize:  frameSize,
		HopSize:    hopSize,
	}
}

// Frame returns the magnitudes of frame i. The slice aliases the arena.
func (s *Spectrogram) Frame(i int) []float64 {
	return s.Data[i*s.Bins : (i+1)*s.Bins : (i+1)*s.Bins]
}

// At returns the magnitude at (frame, bin).
func (s *Spectrogram) At(frame, bin int) float64 {
	return s.Data[frame*s.Bins+bin]
}

// BinFrequency converts a bin index to Hz.
func (s *Spectrogram) BinFrequency(bin int) float64 {
	return float64(bin) * float64(s.SampleRate) / float64(s.FrameSize)
}

// BinHz is the width of one bin in Hz.
func (s *Spectrogram) BinHz() float64 {
	return float64(s.SampleRate) / float64(s.FrameSize)
}

// Nyquist is half the sample rate.
func (s *Spectrogram) Nyquist() float64 {
	return float64(s.SampleRate) / 2
}

// RowMatrix is a (frame, row) matrix of magnitudes after frequency-axis mapping.
// Row 0 is the lowest frequency.
type RowMatrix struct {
	Data   []float64
	Frames int
	Rows   int
}

// NewRowMatrix allocates the arena for frames x rows values.
func NewRowMatrix(frames, rows int) *RowMatrix {
	return &RowMatrix{
		Data:   make([]float64, frames*rows),
		Frames: frames,
		Rows:   rows,
	}
}

// Frame returns the rows of frame i. The slice aliases the arena.
func (m *RowMatrix) Frame(i int) []float64 {
	return m.Data[i*m.Rows : (i+1)*m.Rows : (i+1)*m.Rows]
}

// At returns the magnitude at (frame, row).
func (m *RowMatrix) At(frame, row int) float64 {
	return m.Data[frame*m.Rows+row]
}

// RolloffPoint is the rolloff frequency of one frame.
type RolloffPoint struct {
	Frame     int
	Frequency float64 // Hz
}

// RolloffCurve holds one point per frame, ordered by frame index.
type RolloffCurve []RolloffPoint

// Frequencies returns the frequency values in frame order.
func (c RolloffCurve) Frequencies() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Frequency
	}

	return out
}

// Median returns the median rolloff frequency, 0 for an empty curve.
func (c RolloffCurve) Median() float64 {
	if len(c) == 0 {
		return 0
	}

	freqs := c.Frequencies()
	slices.Sort(freqs)

	mid := len(freqs) / 2
	if len(freqs)%2 == 0 {
		return (freqs[mid-1] + freqs[mid]) / 2
	}

	return freqs[mid]
}

// TranscodeResult contains the brick-wall analysis of the averaged spectrum.
type TranscodeResult struct {
	// Sample rate authenticity
	ClaimedRate       int
	EffectiveRate     int // detected original rate; 0 = genuine
	IsUpsampled       bool
	UpsampleCutoff    float64 // Hz where brick wall detected
	UpsampleSharpness float64 // dB/octave at cutoff

	// Lossy transcode detection
	IsTranscode        bool
	TranscodeCutoff    float64 // Hz; 0 if not detected
	TranscodeSharpness float64
	LikelyCodec        string // "MP3 128", "MP3 320", "AAC 128", etc.

	// Tonal character
	SpectralCentroid float64 // Hz; higher = brighter
	MedianRolloff    float64 // Hz

	Frames int
}
