// Package ffmpeg extracts raw PCM from anything ffmpeg can read.
package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Decoding a long file to PCM is bounded by disk and cpu; keep generous.
	timeout = 10 * time.Minute
)
