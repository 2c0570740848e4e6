// Package bitdepth detects integer audio zero-padded to a higher bit depth.
// A "24-bit" file that's really 16-bit will have lower 8 bits always zero.
package bitdepth

import (
	"encoding/binary"

	"github.com/farcloser/sonogram/internal/types"
)

const (
	genuineMask24 = 0xFF
	genuineMask32 = 0xFFFF
)

// Tracker accumulates the bits used by every sample it sees. It is also an io.Writer of raw little-endian samples,
// so it can sit behind an io.TeeReader on a PCM stream.
type Tracker struct {
	claimed        types.BitDepth
	bytesPerSample int
	genuineMask    uint32
	usedBits       uint32
	samples        uint64
	pending        []byte
	genuine        bool
}

func NewTracker(claimed types.BitDepth) *Tracker {
	tracker := &Tracker{claimed: claimed, bytesPerSample: int(claimed / 8)}

	switch claimed {
	case types.Depth24:
		tracker.genuineMask = genuineMask24
	case types.Depth32:
		tracker.genuineMask = genuineMask32
	default:
		// Nothing narrower than 16 bits is worth padding; other widths are taken at face value.
		tracker.genuine = true
	}

	return tracker
}

// Observe records one sample.
func (t *Tracker) Observe(sample int32) {
	t.samples++

	if t.genuine {
		return
	}

	//nolint:gosec // two's complement bits are what we look at
	t.usedBits |= uint32(sample)
	t.genuine = t.usedBits&t.genuineMask == t.genuineMask
}

// Write parses interleaved little-endian samples of the claimed width. It never fails.
func (t *Tracker) Write(p []byte) (int, error) {
	if t.bytesPerSample == 0 {
		return len(p), nil
	}

	data := append(t.pending, p...)
	complete := (len(data) / t.bytesPerSample) * t.bytesPerSample

	for i := 0; i < complete; i += t.bytesPerSample {
		switch t.claimed {
		case types.Depth24:
			t.Observe(int32(uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16))
		case types.Depth32:
			//nolint:gosec // reinterpretation of the sample bits
			t.Observe(int32(binary.LittleEndian.Uint32(data[i:])))
		default:
			t.samples++
		}
	}

	t.pending = append(t.pending[:0], data[complete:]...)

	return len(p), nil
}

// Result reports the claimed and effective depth.
func (t *Tracker) Result() *types.BitDepthAuthenticity {
	effective := t.claimed
	if !t.genuine && t.samples > 0 {
		effective = effectiveBitDepth(t.usedBits, t.claimed)
	}

	return &types.BitDepthAuthenticity{
		Claimed:   t.claimed,
		Effective: effective,
		IsPadded:  effective < t.claimed,
		Samples:   t.samples,
	}
}

func effectiveBitDepth(usedBits uint32, claimed types.BitDepth) types.BitDepth {
	switch claimed {
	case types.Depth24:
		if usedBits&genuineMask24 == 0 {
			return types.Depth16
		}
	case types.Depth32:
		if usedBits&genuineMask32 == 0 {
			return types.Depth16
		}

		if usedBits&genuineMask24 == 0 {
			return types.Depth24
		}
	default:
	}

	return claimed
}
