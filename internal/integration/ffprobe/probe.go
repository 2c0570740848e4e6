//nolint:tagliatelle
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/sonogram/internal/integration/binary"
)

var ErrNoAudio = errors.New("no audio stream")

// Result is the subset of ffprobe's json output sonogram reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes one stream of the container.
// bits_per_raw_sample is the reliable depth for FLAC and ALAC, bits_per_sample for PCM containers; lossy codecs
// carry neither.
type Stream struct {
	Index            int    `json:"index"`
	CodecName        string `json:"codec_name"`
	CodecType        string `json:"codec_type"`
	SampleFmt        string `json:"sample_fmt,omitempty"`
	SampleRate       string `json:"sample_rate,omitempty"`
	Channels         int    `json:"channels,omitempty"`
	ChannelLayout    string `json:"channel_layout,omitempty"`
	Duration         string `json:"duration,omitempty"`
	DurationTS       int64  `json:"duration_ts,omitempty"`
	BitRate          string `json:"bit_rate,omitempty"`
	BitsPerSample    int    `json:"bits_per_sample,omitempty"`
	BitsPerRawSample string `json:"bits_per_raw_sample,omitempty"`
}

// Format is container-level information.
type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration,omitempty"`
	BitRate    string `json:"bit_rate,omitempty"`
}

// Probe runs ffprobe on the given file path and returns parsed metadata.
// It requires ffprobe to be available in the system PATH.
func Probe(ctx context.Context, filePath string) (*Result, error) {
	slog.Debug("ffprobe.Probe", "file path", filePath)

	ffprobePath, err := binary.Require(name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // filePath is intentionally user-provided input for probing media files
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return Parse(output)
}

// Parse decodes ffprobe json output.
func Parse(output []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}

// Audio returns the first audio stream.
func (r *Result) Audio() (*Stream, error) {
	for i := range r.Streams {
		if r.Streams[i].CodecType == "audio" {
			return &r.Streams[i], nil
		}
	}

	return nil, ErrNoAudio
}

// Rate parses the sample rate, 0 when absent.
func (s *Stream) Rate() int {
	v, _ := strconv.Atoi(s.SampleRate)

	return v
}

// Bits returns the source bit depth, 0 for lossy codecs.
func (s *Stream) Bits() int {
	if v, err := strconv.Atoi(s.BitsPerRawSample); err == nil && v > 0 {
		return v
	}

	return s.BitsPerSample
}

// Seconds returns the stream duration, falling back to the container's.
func (r *Result) Seconds(s *Stream) float64 {
	if v, err := strconv.ParseFloat(s.Duration, 64); err == nil {
		return v
	}

	v, _ := strconv.ParseFloat(r.Format.Duration, 64)

	return v
}

// BitRate returns the stream bit rate, falling back to the container's.
func (r *Result) BitRate(s *Stream) int64 {
	if v, err := strconv.ParseInt(s.BitRate, 10, 64); err == nil {
		return v
	}

	v, _ := strconv.ParseInt(r.Format.BitRate, 10, 64)

	return v
}
