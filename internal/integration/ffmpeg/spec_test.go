package ffmpeg

import (
	"testing"

	"github.com/farcloser/sonogram/internal/types"
)

func TestSampleFormat(t *testing.T) {
	t.Parallel()

	for depth, want := range map[types.BitDepth][2]string{
		types.Depth16: {"s16le", "pcm_s16le"},
		types.Depth24: {"s24le", "pcm_s24le"},
		types.Depth32: {"s32le", "pcm_s32le"},
	} {
		spec, codec := sampleFormat(depth)
		if spec != want[0] || codec != want[1] {
			t.Errorf("sampleFormat(%d) = %s, %s", depth, spec, codec)
		}
	}
}
