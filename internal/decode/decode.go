// Package decode turns an audio file into a mono sample buffer plus a description of the source.
// FLAC, WAV and MP3 are decoded natively; everything else goes through ffmpeg.
package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/sonogram/internal/progress"
	"github.com/farcloser/sonogram/internal/types"
)

var (
	ErrUnsupported = errors.New("unsupported audio format")
	ErrCorrupt     = errors.New("corrupt audio stream")
)

// Container is the sniffed file type.
type Container int

const (
	Unknown Container = iota
	FLAC
	WAV
	MP3
)

func (c Container) String() string {
	switch c {
	case FLAC:
		return "flac"
	case WAV:
		return "wav"
	case MP3:
		return "mp3"
	case Unknown:
	}

	return "unknown"
}

type Options struct {
	// Nil disables progress reporting.
	Progress *progress.Progress
	// Native forbids the ffmpeg fallback.
	Native bool
}

// Sniff identifies a container from its first bytes.
func Sniff(header []byte) Container {
	switch {
	case bytes.HasPrefix(header, []byte("fLaC")):
		return FLAC
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return WAV
	case bytes.HasPrefix(header, []byte("ID3")):
		return MP3
	case len(header) >= 2 && header[0] == 0xff && header[1]&0xe0 == 0xe0 && header[1]&0x06 != 0:
		// MPEG audio frame sync, any layer
		return MP3
	}

	return Unknown
}

// File decodes path.
func File(ctx context.Context, path string, opts Options) (*types.SampleBuffer, *types.AudioMetadata, error) {
	slog.Debug("decode.File", "path", path, "stage", "start")

	container, err := sniffFile(path)
	if err != nil {
		return nil, nil, err
	}

	var (
		buf  *types.SampleBuffer
		meta *types.AudioMetadata
	)

	switch container {
	case FLAC:
		buf, meta, err = decodeFLAC(path, opts.Progress)
	case WAV:
		buf, meta, err = decodeWAV(path, opts.Progress)
		if errors.Is(err, ErrUnsupported) && !opts.Native {
			slog.Debug("decode.File", "path", path, "stage", "wav variant unsupported, using ffmpeg", "error", err)
			buf, meta, err = decodeFFmpeg(ctx, path, opts.Progress)
		}
	case MP3:
		buf, meta, err = decodeMP3(path, opts.Progress)
	default:
		if opts.Native {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
		}

		buf, meta, err = decodeFFmpeg(ctx, path, opts.Progress)
	}

	if err != nil {
		return nil, nil, err
	}

	meta.Path = path
	meta.Frames = uint64(len(buf.Samples))
	meta.Duration = buf.Duration()

	slog.Debug("decode.File", "path", path, "stage", "done", "codec", meta.Codec, "frames", meta.Frames)

	return buf, meta, nil
}

func sniffFile(path string) (Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer f.Close()

	header := make([]byte, 12)

	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return Unknown, fmt.Errorf("%w: %s is empty", ErrUnsupported, filepath.Base(path))
		}

		return Unknown, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	return Sniff(header[:n]), nil
}

// layout names the common channel counts the way ffprobe does.
func layout(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	}

	return fmt.Sprintf("%d channels", channels)
}

// fileBitRate estimates the average bit rate from the file size.
func fileBitRate(path string, seconds float64) int64 {
	info, err := os.Stat(path)
	if err != nil || seconds <= 0 {
		return 0
	}

	return int64(float64(info.Size()) * 8 / seconds)
}
