package ffprobe_test

import (
	"errors"
	"testing"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/sonogram/internal/integration/ffprobe"
)

const sample = `{
  "streams": [
    {"index": 0, "codec_name": "mjpeg", "codec_type": "video"},
    {"index": 1, "codec_name": "alac", "codec_type": "audio", "sample_rate": "96000", "channels": 2,
     "channel_layout": "stereo", "bits_per_raw_sample": "24", "duration": "12.500000"}
  ],
  "format": {"filename": "a.m4a", "format_name": "mov,mp4,m4a", "duration": "12.6", "bit_rate": "2200000"}
}`

func TestParse(t *testing.T) {
	t.Parallel()

	result, err := ffprobe.Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	stream, err := result.Audio()
	if err != nil {
		t.Fatalf("Audio: %v", err)
	}

	if stream.Index != 1 || stream.Rate() != 96000 || stream.Bits() != 24 {
		t.Errorf("stream = %+v", stream)
	}

	if got := result.Seconds(stream); got != 12.5 {
		t.Errorf("Seconds = %v, want 12.5", got)
	}

	if got := result.BitRate(stream); got != 2200000 {
		t.Errorf("BitRate = %v, want container rate", got)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	if _, err := ffprobe.Parse([]byte("{")); !errors.Is(err, fault.ErrInvalidJSON) {
		t.Errorf("error = %v, want ErrInvalidJSON", err)
	}

	result, err := ffprobe.Parse([]byte(`{"streams": [{"codec_type": "video"}]}`))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := result.Audio(); !errors.Is(err, ffprobe.ErrNoAudio) {
		t.Errorf("error = %v, want ErrNoAudio", err)
	}
}
