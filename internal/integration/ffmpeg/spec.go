package ffmpeg

import (
	"strconv"

	"github.com/farcloser/sonogram/internal/types"
)

// sampleFormat returns the raw output format and codec for a bit depth, s32le/pcm_s32le for 32.
func sampleFormat(bitDepth types.BitDepth) (string, string) {
	//nolint:gosec // we fine, gosec
	spec := "s" + strconv.Itoa(int(bitDepth)) + "le"

	return spec, "pcm_" + spec
}
