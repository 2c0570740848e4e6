//nolint:gosec // bit depth and channel count are small constants
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/sonogram/internal/types"
)

const (
	MaxValue8  = 128.0        // 2^7
	MaxValue16 = 32768.0      // 2^15, 16-bit signed PCM normalization divisor
	MaxValue24 = 8388608.0    // 2^23, 24-bit signed PCM normalization divisor
	MaxValue32 = 2147483648.0 // 2^31, 32-bit signed PCM normalization divisor
)

var errUnsupportedDepth = errors.New("unsupported bit depth")

// Divisor returns the normalization divisor for a bit depth, or 0 when unsupported.
func Divisor(depth types.BitDepth) float64 {
	switch depth {
	case types.Depth8:
		return MaxValue8
	case types.Depth16:
		return MaxValue16
	case types.Depth24:
		return MaxValue24
	case types.Depth32:
		return MaxValue32
	default:
		return 0
	}
}

// ReadMonoMixed reads interleaved little-endian signed PCM until EOF and averages the channels of every frame.
// A trailing partial frame is dropped.
func ReadMonoMixed(r io.Reader, format types.PCMFormat) ([]float64, error) {
	maxVal := Divisor(format.BitDepth)
	if maxVal == 0 || format.BitDepth == types.Depth8 {
		return nil, fmt.Errorf("%w: %d", errUnsupportedDepth, format.BitDepth)
	}

	if format.Channels == 0 {
		return nil, fmt.Errorf("%w: zero channels", fault.ErrReadFailure)
	}

	bytesPerSample := int(format.BitDepth / 8)
	numChannels := int(format.Channels)
	frameSize := bytesPerSample * numChannels

	readBuf := make([]byte, frameSize*4096)
	pending := 0

	var samples []float64

	for {
		n, err := r.Read(readBuf[pending:])
		n += pending

		completeFrames := (n / frameSize) * frameSize
		data := readBuf[:completeFrames]

		for i := 0; i < len(data); i += frameSize {
			var sum float64

			for ch := range numChannels {
				offset := i + ch*bytesPerSample

				switch format.BitDepth {
				case types.Depth16:
					sum += float64(int16(binary.LittleEndian.Uint16(data[offset:]))) / maxVal
				case types.Depth24:
					raw := int32(data[offset]) | int32(data[offset+1])<<8 | int32(data[offset+2])<<16
					if raw&0x800000 != 0 {
						raw |= ^0xFFFFFF
					}

					sum += float64(raw) / maxVal
				default:
					sum += float64(int32(binary.LittleEndian.Uint32(data[offset:]))) / maxVal
				}
			}

			samples = append(samples, sum/float64(numChannels))
		}

		// Keep the bytes of an incomplete frame for the next read.
		pending = copy(readBuf, readBuf[completeFrames:n])

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	return samples, nil
}
