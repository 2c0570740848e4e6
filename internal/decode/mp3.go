package decode

import (
	"fmt"
	"os"

	"github.com/faiface/beep/mp3"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/sonogram/internal/progress"
	"github.com/farcloser/sonogram/internal/types"
)

const mp3ChunkFrames = 4096

// decodeMP3 mixes beep's stereo frames down; mono sources come out duplicated on both sides.
func decodeMP3(path string, prog *progress.Progress) (*types.SampleBuffer, *types.AudioMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		_ = f.Close()

		return nil, nil, fmt.Errorf("%w: mp3: %w", ErrCorrupt, err)
	}
	defer streamer.Close()

	total := streamer.Len()
	bar := prog.Frames("decode", int64(total))
	samples := make([]float64, 0, total)
	chunk := make([][2]float64, mp3ChunkFrames)

	for {
		n, ok := streamer.Stream(chunk)

		for _, frame := range chunk[:n] {
			samples = append(samples, (frame[0]+frame[1])/2)
		}

		bar.Add(n)

		if !ok {
			break
		}
	}

	if err := streamer.Err(); err != nil {
		bar.Abort()

		return nil, nil, fmt.Errorf("%w: mp3: %w", ErrCorrupt, err)
	}

	bar.Done()

	rate := int(format.SampleRate)
	buf := &types.SampleBuffer{Samples: samples, SampleRate: rate}

	return buf, &types.AudioMetadata{
		Codec:         "mp3",
		SampleRate:    rate,
		Channels:      format.NumChannels,
		ChannelLayout: layout(format.NumChannels),
		BitRate:       fileBitRate(path, buf.Duration()),
	}, nil
}
