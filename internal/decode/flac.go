package decode

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mewkiz/flac"

	"github.com/farcloser/sonogram/internal/audit/bitdepth"
	"github.com/farcloser/sonogram/internal/progress"
	"github.com/farcloser/sonogram/internal/types"
)

func decodeFLAC(path string, prog *progress.Progress) (*types.SampleBuffer, *types.AudioMetadata, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: flac: %w", ErrCorrupt, err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)

	if channels == 0 || info.SampleRate == 0 || info.BitsPerSample == 0 {
		return nil, nil, fmt.Errorf("%w: flac stream info %+v", ErrCorrupt, info)
	}

	divisor := math.Exp2(float64(info.BitsPerSample) - 1)
	tracker := bitdepth.NewTracker(types.BitDepth(info.BitsPerSample))
	bar := prog.Frames("decode", int64(info.NSamples))
	samples := make([]float64, 0, info.NSamples)

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			bar.Abort()

			return nil, nil, fmt.Errorf("%w: flac frame: %w", ErrCorrupt, err)
		}

		n := frame.Subframes[0].NSamples

		for i := range n {
			var sum float64

			for ch := range channels {
				s := frame.Subframes[ch].Samples[i]
				tracker.Observe(s)
				sum += float64(s)
			}

			samples = append(samples, sum/float64(channels)/divisor)
		}

		bar.Add(n)
	}

	bar.Done()

	rate := int(info.SampleRate)
	buf := &types.SampleBuffer{Samples: samples, SampleRate: rate}

	return buf, &types.AudioMetadata{
		Codec:         "flac",
		SampleRate:    rate,
		Channels:      channels,
		ChannelLayout: layout(channels),
		BitsPerSample: int(info.BitsPerSample),
		BitRate:       fileBitRate(path, buf.Duration()),
		BitDepth:      tracker.Result(),
	}, nil
}
