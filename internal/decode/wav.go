package decode

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/sonogram/internal/audit/bitdepth"
	"github.com/farcloser/sonogram/internal/progress"
	"github.com/farcloser/sonogram/internal/types"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xfffe
	wavChunkFrames      = 4096
)

func decodeWAV(path string, prog *progress.Progress) (*types.SampleBuffer, *types.AudioMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, nil, fmt.Errorf("%w: not a valid wav file", ErrCorrupt)
	}

	if decoder.WavAudioFormat != wavFormatPCM && decoder.WavAudioFormat != wavFormatExtensible {
		return nil, nil, fmt.Errorf("%w: wav format tag %#x", ErrUnsupported, decoder.WavAudioFormat)
	}

	channels := int(decoder.NumChans)
	rate := int(decoder.SampleRate)
	depth := int(decoder.BitDepth)

	var divisor float64

	switch depth {
	case 8, 16, 24, 32:
		divisor = float64(int64(1) << (depth - 1))
	default:
		return nil, nil, fmt.Errorf("%w: %d-bit wav", ErrUnsupported, depth)
	}

	if channels == 0 || rate == 0 {
		return nil, nil, fmt.Errorf("%w: %d channels at %d Hz", ErrCorrupt, channels, rate)
	}

	var total int64
	if duration, err := decoder.Duration(); err == nil {
		total = int64(duration.Seconds() * float64(rate))
	}

	tracker := bitdepth.NewTracker(types.BitDepth(depth))
	bar := prog.Frames("decode", total)
	samples := make([]float64, 0, total)

	buf := &audio.IntBuffer{
		Data:   make([]int, wavChunkFrames*channels),
		Format: &audio.Format{NumChannels: channels, SampleRate: rate},
	}

	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			bar.Abort()

			return nil, nil, fmt.Errorf("%w: wav: %w", ErrCorrupt, err)
		}

		if n == 0 {
			break
		}

		data := buf.Data[:n-n%channels]

		for i := 0; i < len(data); i += channels {
			var sum float64

			for _, v := range data[i : i+channels] {
				// 8-bit wav is unsigned
				if depth == 8 {
					v -= 128
				}

				//nolint:gosec // samples fit the declared depth
				tracker.Observe(int32(v))
				sum += float64(v)
			}

			samples = append(samples, sum/float64(channels)/divisor)
		}

		bar.Add(len(data) / channels)
	}

	bar.Done()

	out := &types.SampleBuffer{Samples: samples, SampleRate: rate}

	return out, &types.AudioMetadata{
		Codec:         fmt.Sprintf("pcm_s%dle", depth),
		SampleRate:    rate,
		Channels:      channels,
		ChannelLayout: layout(channels),
		BitsPerSample: depth,
		BitRate:       int64(rate * channels * depth),
		BitDepth:      tracker.Result(),
	}, nil
}
