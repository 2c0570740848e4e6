package decode

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/farcloser/sonogram/internal/audit/bitdepth"
	"github.com/farcloser/sonogram/internal/integration/ffmpeg"
	"github.com/farcloser/sonogram/internal/integration/ffprobe"
	"github.com/farcloser/sonogram/internal/pcm"
	"github.com/farcloser/sonogram/internal/progress"
	"github.com/farcloser/sonogram/internal/types"
)

// extractionDepth picks the narrowest PCM width holding the source; lossy sources use 32 bits.
func extractionDepth(bits int) types.BitDepth {
	switch {
	case bits > 0 && bits <= 16:
		return types.Depth16
	case bits > 16 && bits <= 24:
		return types.Depth24
	default:
		return types.Depth32
	}
}

func decodeFFmpeg(ctx context.Context, path string, prog *progress.Progress) (*types.SampleBuffer, *types.AudioMetadata, error) {
	probed, err := ffprobe.Probe(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	stream, err := probed.Audio()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	bits := stream.Bits()
	//nolint:gosec // channel counts are small
	format := types.PCMFormat{
		SampleRate: stream.Rate(),
		BitDepth:   extractionDepth(bits),
		Channels:   uint(stream.Channels),
	}

	if format.SampleRate == 0 || format.Channels == 0 {
		return nil, nil, fmt.Errorf("%w: %s stream without rate or channels", ErrUnsupported, stream.CodecName)
	}

	seconds := probed.Seconds(stream)
	bar := prog.Bytes("decode", int64(seconds*float64(format.SampleRate))*int64(format.Channels)*int64(format.BitDepth/8))

	var tracker *bitdepth.Tracker

	reader, writer := io.Pipe()

	var (
		group   errgroup.Group
		samples []float64
	)

	group.Go(func() error {
		err := ffmpeg.Extract(ctx, path, writer, 0, format)
		writer.CloseWithError(err)

		return err
	})

	group.Go(func() error {
		var source io.Reader = bar.Reader(reader)

		// Only integer sources have a bit depth to audit.
		if bits > 0 {
			tracker = bitdepth.NewTracker(format.BitDepth)
			source = io.TeeReader(source, tracker)
		}

		var err error

		samples, err = pcm.ReadMonoMixed(source, format)
		// Unblock ffmpeg if reading stopped early.
		reader.CloseWithError(err)

		return err
	})

	if err := group.Wait(); err != nil {
		bar.Abort()

		return nil, nil, err
	}

	bar.Done()

	meta := &types.AudioMetadata{
		Codec:         stream.CodecName,
		SampleRate:    format.SampleRate,
		Channels:      stream.Channels,
		ChannelLayout: stream.ChannelLayout,
		BitsPerSample: bits,
		BitRate:       probed.BitRate(stream),
	}

	if meta.ChannelLayout == "" {
		meta.ChannelLayout = layout(stream.Channels)
	}

	if tracker != nil {
		meta.BitDepth = tracker.Result()
	}

	return &types.SampleBuffer{Samples: samples, SampleRate: format.SampleRate}, meta, nil
}
